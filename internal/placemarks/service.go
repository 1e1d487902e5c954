package placemarks

import (
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-placemarks/internal/coordinates"
	"github.com/goliatone/go-placemarks/internal/geocoding"
	"github.com/goliatone/go-placemarks/internal/identity"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/internal/notices"
	"github.com/goliatone/go-placemarks/internal/shortcode"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	"github.com/goliatone/go-slug"
)

// ErrZIndexNotInteger is the notice raised when the stacking order is not an integer.
const ErrZIndexNotInteger = "The stacking order has to be an integer."

const defaultMarkerPath = "images/" + DefaultMarkerIcon

// DetailsRenderer converts the stored details markup into HTML.
type DetailsRenderer interface {
	RenderDetails(ctx context.Context, source string) (template.HTML, error)
}

// SaveRequest carries the editable fields of a placemark. ID zero creates a
// new placemark. ZIndex is the raw form value; an empty one means the field
// was not submitted and stores 0 without a notice.
type SaveRequest struct {
	ID         int64
	Title      string
	Slug       string
	Details    string
	Address    string
	Icon       string
	ZIndex     string
	Categories []string
}

// Service manages placemarks and answers the lookups used while rendering.
type Service struct {
	placemarks PlacemarkRepository
	categories CategoryRepository
	geocoder   interfaces.Geocoder
	details    DetailsRenderer
	versions   VersionStore
	logger     interfaces.Logger
	now        func() time.Time
	assetBase  string
	plugin     string
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithGeocoder sets the geocoder used on save and during upgrades.
func WithGeocoder(geocoder interfaces.Geocoder) ServiceOption {
	return func(s *Service) {
		s.geocoder = geocoder
	}
}

// WithDetailsRenderer sets the renderer applied to marker details.
func WithDetailsRenderer(renderer DetailsRenderer) ServiceOption {
	return func(s *Service) {
		s.details = renderer
	}
}

// WithVersionStore sets where the schema version is tracked for upgrades.
func WithVersionStore(store VersionStore) ServiceOption {
	return func(s *Service) {
		s.versions = store
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAssetBase sets the base URL icons are resolved against.
func WithAssetBase(base string) ServiceOption {
	return func(s *Service) {
		s.assetBase = base
	}
}

// WithPluginName overrides the prefix used in notices.
func WithPluginName(name string) ServiceOption {
	return func(s *Service) {
		if strings.TrimSpace(name) != "" {
			s.plugin = name
		}
	}
}

// NewService wires the placemark service.
func NewService(placemarks PlacemarkRepository, categories CategoryRepository, opts ...ServiceOption) *Service {
	s := &Service{
		placemarks: placemarks,
		categories: categories,
		logger:     logging.NoOp(),
		now:        func() time.Time { return time.Now().UTC() },
		plugin:     shortcode.DefaultPluginName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save creates or updates a placemark. Geocoding and stacking order problems
// are reported as notices; the placemark is still stored.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*Placemark, notices.List, error) {
	collector := notices.NewCollector()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, nil, goerrors.New("placemark title is required", goerrors.CategoryValidation).
			WithTextCode("PLACEMARK_TITLE_REQUIRED")
	}

	record := &Placemark{}
	if req.ID != 0 {
		existing, err := s.placemarks.GetByID(ctx, req.ID)
		if err != nil {
			return nil, nil, err
		}
		record = existing
	}

	record.Title = title
	record.Details = req.Details
	record.Icon = strings.TrimSpace(req.Icon)
	record.Slug = s.slugFor(req.Slug, title)
	record.Address = strings.TrimSpace(req.Address)
	record.Latitude, record.Longitude = "", ""
	if record.Address != "" {
		if coords, ok := s.geocode(ctx, record.Address, collector); ok {
			record.Latitude = coordinates.FormatNumber(coords.Latitude)
			record.Longitude = coordinates.FormatNumber(coords.Longitude)
		}
	}

	record.ZIndex = 0
	if raw := strings.TrimSpace(req.ZIndex); raw != "" {
		if v, ok := stackingOrder(raw); ok {
			record.ZIndex = v
		} else {
			collector.AddError(ErrZIndexNotInteger)
		}
	}

	categories, err := s.ensureCategories(ctx, req.Categories)
	if err != nil {
		return nil, nil, err
	}
	record.Categories = categories

	now := s.now()
	record.UpdatedAt = now
	var saved *Placemark
	if record.ID == 0 {
		record.CreatedAt = now
		saved, err = s.placemarks.Create(ctx, record)
	} else {
		saved, err = s.placemarks.Update(ctx, record)
	}
	if err != nil {
		return nil, nil, err
	}

	logging.WithFields(logging.WithPlacemarkContext(s.logger.WithContext(ctx), saved.ID, "", "save"), map[string]any{
		"located": saved.Latitude != "",
		"notices": len(collector.List()),
	}).Info("placemarks.saved")
	return saved, collector.List(), nil
}

func (s *Service) slugFor(requested, title string) string {
	source := strings.TrimSpace(requested)
	if source == "" {
		source = title
	}
	if normalized, err := slug.Normalize(source); err == nil && normalized != "" {
		return normalized
	}
	return strings.ToLower(strings.Join(strings.Fields(source), "-"))
}

func (s *Service) geocode(ctx context.Context, address string, collector *notices.Collector) (interfaces.Coordinates, bool) {
	if s.geocoder == nil {
		if coords, ok := coordinates.Validate(address); ok {
			return coords, true
		}
		return interfaces.Coordinates{}, false
	}
	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		collector.AddError(geocoding.Notice(s.plugin, err))
		return interfaces.Coordinates{}, false
	}
	return coords, true
}

// Get returns the placemark with id.
func (s *Service) Get(ctx context.Context, id int64) (*Placemark, error) {
	return s.placemarks.GetByID(ctx, id)
}

// List returns placemarks ordered by title, filtered by category slugs.
func (s *Service) List(ctx context.Context, categories []string) ([]*Placemark, error) {
	return s.placemarks.List(ctx, ListOptions{Categories: categorySlugs(categories)})
}

// stackingOrder parses a strict integer: an optional sign and no leading
// zeros, so "007" and "1e3" are rejected.
func stackingOrder(raw string) (int, bool) {
	digits := raw
	if digits != "" && (digits[0] == '+' || digits[0] == '-') {
		digits = digits[1:]
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

// categorySlugs maps names to slugs. Names without a slug are kept so they
// match nothing instead of widening the filter.
func categorySlugs(names []string) []string {
	if len(names) == 0 {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if key, err := slug.Normalize(name); err == nil {
			name = key
		}
		out = append(out, name)
	}
	return out
}

// Delete removes a placemark.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.placemarks.Delete(ctx, id)
}

// FindBySlug returns the placemark whose slug matches the normalized form of
// raw.
func (s *Service) FindBySlug(ctx context.Context, raw string) (*Placemark, error) {
	key := s.slugFor(raw, raw)
	records, err := s.placemarks.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.Slug == key {
			return record, nil
		}
	}
	return nil, &NotFoundError{Resource: "placemark", Key: key}
}

// Exists reports whether a placemark with id is stored.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.placemarks.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PlacemarkCoordinates returns the stored coordinates of placemark id. ok is
// false when it does not exist or has none.
func (s *Service) PlacemarkCoordinates(ctx context.Context, id int64) (interfaces.Coordinates, bool, error) {
	record, err := s.placemarks.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return interfaces.Coordinates{}, false, nil
		}
		return interfaces.Coordinates{}, false, err
	}
	coords, ok := record.Coordinates()
	return coords, ok, nil
}

// EnsureCategory returns the category for name, creating it when missing.
func (s *Service) EnsureCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	key, err := slug.Normalize(name)
	if err != nil || key == "" {
		return nil, goerrors.New(fmt.Sprintf("category %q has no usable slug", name), goerrors.CategoryValidation).
			WithTextCode("CATEGORY_INVALID")
	}

	existing, err := s.categories.GetBySlug(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	now := s.now()
	return s.categories.Create(ctx, &Category{
		ID:        identity.CategoryUUID(key),
		Slug:      key,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) ensureCategories(ctx context.Context, names []string) ([]string, error) {
	var slugs []string
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		category, err := s.EnsureCategory(ctx, name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[category.Slug]; dup {
			continue
		}
		seen[category.Slug] = struct{}{}
		slugs = append(slugs, category.Slug)
	}
	return slugs, nil
}

// CategoryExists reports whether a category is stored under the slug of name.
// Both names and slugs are accepted.
func (s *Service) CategoryExists(ctx context.Context, name string) (bool, error) {
	key, err := slug.Normalize(name)
	if err != nil {
		return false, nil
	}
	_, err = s.categories.GetBySlug(ctx, key)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Categories lists every stored category.
func (s *Service) Categories(ctx context.Context) ([]*Category, error) {
	return s.categories.List(ctx)
}

// ListMarkers returns the marker list for a map. Placemarks without valid
// coordinates are skipped.
func (s *Service) ListMarkers(ctx context.Context, filter mapoptions.MarkerFilter) ([]mapoptions.Marker, error) {
	records, err := s.selectPlacemarks(ctx, filter)
	if err != nil {
		return nil, err
	}

	markers := make([]mapoptions.Marker, 0, len(records))
	for _, record := range records {
		coords, ok := record.Coordinates()
		if !ok {
			continue
		}
		details, err := s.renderDetails(ctx, record)
		if err != nil {
			return nil, err
		}
		markers = append(markers, mapoptions.Marker{
			ID:         record.ID,
			Title:      record.Title,
			Latitude:   coords.Latitude,
			Longitude:  coords.Longitude,
			Details:    string(details),
			Categories: append([]string{}, record.Categories...),
			Icon:       s.iconURL(record.Icon),
			ZIndex:     record.ZIndex,
		})
	}
	return markers, nil
}

func (s *Service) selectPlacemarks(ctx context.Context, filter mapoptions.MarkerFilter) ([]*Placemark, error) {
	categories := categorySlugs(filter.Categories)
	if filter.PlacemarkID == nil {
		return s.placemarks.List(ctx, ListOptions{Categories: categories})
	}
	record, err := s.placemarks.GetByID(ctx, *filter.PlacemarkID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !record.InCategories(categories) {
		return nil, nil
	}
	return []*Placemark{record}, nil
}

// ListItems returns the rows of the placemark list.
func (s *Service) ListItems(ctx context.Context, categories []string) ([]shortcode.ListItem, error) {
	records, err := s.placemarks.List(ctx, ListOptions{Categories: categorySlugs(categories)})
	if err != nil {
		return nil, err
	}
	items := make([]shortcode.ListItem, 0, len(records))
	for _, record := range records {
		details, err := s.renderDetails(ctx, record)
		if err != nil {
			return nil, err
		}
		items = append(items, shortcode.ListItem{
			ID:      record.ID,
			Title:   record.Title,
			Details: details,
			Address: record.Address,
		})
	}
	return items, nil
}

func (s *Service) renderDetails(ctx context.Context, record *Placemark) (template.HTML, error) {
	if s.details == nil {
		return template.HTML(template.HTMLEscapeString(record.Details)), nil
	}
	html, err := s.details.RenderDetails(ctx, record.Details)
	if err != nil {
		return "", fmt.Errorf("placemarks: render details of %d: %w", record.ID, err)
	}
	return html, nil
}

func (s *Service) iconURL(icon string) string {
	icon = strings.TrimSpace(icon)
	if icon == "" {
		return mapoptions.AssetURL(s.assetBase, defaultMarkerPath)
	}
	if strings.Contains(icon, "://") || strings.HasPrefix(icon, "/") {
		return icon
	}
	return mapoptions.AssetURL(s.assetBase, icon)
}

var (
	_ shortcode.PlacemarkLookup = (*Service)(nil)
	_ shortcode.CategoryLookup  = (*Service)(nil)
	_ shortcode.MarkerSource    = (*Service)(nil)
	_ shortcode.ListSource      = (*Service)(nil)
)
