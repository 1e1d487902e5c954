package placemarkscmd

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-placemarks/internal/notices"
	"github.com/goliatone/go-placemarks/internal/settings"
)

const (
	savePlacemarkMessageType   = "placemarks.placemark.save"
	deletePlacemarkMessageType = "placemarks.placemark.delete"
	saveSettingsMessageType    = "placemarks.settings.save"
	upgradeMessageType         = "placemarks.upgrade"
)

// SavePlacemarkCommand creates or updates a placemark. Notices raised while
// saving are merged into Notices when it is set.
type SavePlacemarkCommand struct {
	ID         int64    `json:"id,omitempty"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug,omitempty"`
	Details    string   `json:"details,omitempty"`
	Address    string   `json:"address,omitempty"`
	Icon       string   `json:"icon,omitempty"`
	ZIndex     string   `json:"zindex,omitempty"`
	Categories []string `json:"categories,omitempty"`

	Notices *notices.Collector `json:"-"`
	// SavedID receives the stored placemark ID.
	SavedID *int64 `json:"-"`
}

// Type implements command.Message.
func (SavePlacemarkCommand) Type() string { return savePlacemarkMessageType }

// Validate checks the fields the store cannot do without.
func (cmd SavePlacemarkCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Title, validation.Required, validation.By(notBlank(
			"placemarks.placemark.save.title_required", "title is required"))),
		validation.Field(&cmd.ID, validation.Min(int64(0))),
	)
}

// DeletePlacemarkCommand removes a placemark.
type DeletePlacemarkCommand struct {
	ID int64 `json:"id"`
}

// Type implements command.Message.
func (DeletePlacemarkCommand) Type() string { return deletePlacemarkMessageType }

// Validate requires a positive id.
func (cmd DeletePlacemarkCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ID, validation.Required, validation.Min(int64(1))),
	)
}

// SaveSettingsCommand persists the site wide map settings.
type SaveSettingsCommand struct {
	Settings settings.Settings `json:"settings"`

	Notices *notices.Collector `json:"-"`
}

// Type implements command.Message.
func (SaveSettingsCommand) Type() string { return saveSettingsMessageType }

// Validate delegates to the settings rules.
func (cmd SaveSettingsCommand) Validate() error {
	return cmd.Settings.Validate()
}

// UpgradeCommand runs the legacy data upgrade.
type UpgradeCommand struct {
	Notices *notices.Collector `json:"-"`
}

// Type implements command.Message.
func (UpgradeCommand) Type() string { return upgradeMessageType }

// Validate implements command.Message validation; the command has no input.
func (UpgradeCommand) Validate() error { return nil }

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
