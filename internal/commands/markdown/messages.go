package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-placemarks/internal/notices"
)

const importDirectoryMessageType = "placemarks.markdown.import_directory"

// ImportDirectoryCommand imports the Markdown files found under Directory as
// placemarks.
type ImportDirectoryCommand struct {
	// Directory is resolved relative to the importer's base path.
	Directory string `json:"directory"`
	// Strict fails the command when any single file could not be imported.
	Strict bool `json:"strict,omitempty"`

	Notices *notices.Collector `json:"-"`
}

// Type implements command.Message.
func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("placemarks.markdown.import_directory.directory_required", "directory is required")
			}
			return nil
		})),
	)
}
