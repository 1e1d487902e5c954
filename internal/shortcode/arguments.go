package shortcode

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-placemarks/internal/geocoding"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	"github.com/goliatone/go-slug"
)

// DefaultPluginName prefixes every diagnostic emitted while cleaning attributes.
const DefaultPluginName = "Basic Google Maps Placemarks"

// RawAttributes holds the map shortcode attributes exactly as the author typed
// them. Categories accepts a comma separated string or a list.
type RawAttributes struct {
	Placemark  *string
	Categories any
	Width      *string
	Height     *string
	Center     *string
	Zoom       *string
	Type       *string
}

// RawAttributesFromParams lifts parsed shortcode params into RawAttributes.
// Unknown keys are ignored.
func RawAttributesFromParams(params map[string]any) RawAttributes {
	var raw RawAttributes
	for key, value := range params {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "placemark":
			raw.Placemark = stringAttr(value)
		case "categories":
			raw.Categories = value
		case "width":
			raw.Width = stringAttr(value)
		case "height":
			raw.Height = stringAttr(value)
		case "center":
			raw.Center = stringAttr(value)
		case "zoom":
			raw.Zoom = stringAttr(value)
		case "type":
			raw.Type = stringAttr(value)
		}
	}
	return raw
}

func stringAttr(value any) *string {
	if value == nil {
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprintf("%v", v)
	}
	return &s
}

// Diagnostics are the author facing messages produced while cleaning attributes.
type Diagnostics []string

// PlacemarkLookup resolves placemark existence and stored coordinates.
type PlacemarkLookup interface {
	mapoptions.PlacemarkLocator
	Exists(ctx context.Context, id int64) (bool, error)
}

// CategoryLookup reports whether a category slug exists. Names are normalized
// to slugs before the lookup.
type CategoryLookup interface {
	CategoryExists(ctx context.Context, name string) (bool, error)
}

// ArgumentProcessor turns RawAttributes into a validated map request. Each
// attribute is checked independently and invalid ones are dropped.
type ArgumentProcessor struct {
	plugin     string
	placemarks PlacemarkLookup
	categories CategoryLookup
	geocoder   interfaces.Geocoder
	logger     interfaces.Logger
}

// ArgumentOption configures an ArgumentProcessor.
type ArgumentOption func(*ArgumentProcessor)

// WithPluginName overrides the diagnostic prefix.
func WithPluginName(name string) ArgumentOption {
	return func(p *ArgumentProcessor) {
		if strings.TrimSpace(name) != "" {
			p.plugin = name
		}
	}
}

// WithArgumentLogger attaches a logger for lookup failures.
func WithArgumentLogger(logger interfaces.Logger) ArgumentOption {
	return func(p *ArgumentProcessor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewArgumentProcessor wires the lookups used during validation. Any of them
// may be nil, in which case the attributes that need it are rejected.
func NewArgumentProcessor(placemarks PlacemarkLookup, categories CategoryLookup, geocoder interfaces.Geocoder, opts ...ArgumentOption) *ArgumentProcessor {
	p := &ArgumentProcessor{
		plugin:     DefaultPluginName,
		placemarks: placemarks,
		categories: categories,
		geocoder:   geocoder,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates raw and never fails: problems are reported as diagnostics
// and the offending attribute is left out of the request.
func (p *ArgumentProcessor) Process(ctx context.Context, raw RawAttributes) (mapoptions.Request, Diagnostics) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		req   mapoptions.Request
		diags Diagnostics
	)
	report := func(format string, args ...any) {
		diags = append(diags, fmt.Sprintf("%s shortcode error: ", p.plugin)+fmt.Sprintf(format, args...))
	}

	if raw.Placemark != nil {
		original := *raw.Placemark
		id, err := strconv.ParseInt(strings.TrimSpace(original), 10, 64)
		switch {
		case err != nil || id <= 0 || !p.placemarkExists(ctx, id):
			report("%s is not a valid placemark ID.", original)
		case !p.placemarkLocated(ctx, id):
			report("%s does not have a valid address.", original)
		default:
			req.PlacemarkID = &id
		}
	}

	if raw.Categories != nil {
		if names, ok := categoryNames(raw.Categories); ok {
			var kept []string
			for _, name := range names {
				if name == "" {
					continue
				}
				key, err := slug.Normalize(name)
				if err != nil || !p.categoryExists(ctx, key) {
					report("%s is not a valid category.", name)
					continue
				}
				if !slices.Contains(kept, key) {
					kept = append(kept, key)
				}
			}
			if len(kept) > 0 {
				req.Categories = kept
			}
		}
	}

	if raw.Width != nil {
		if v, ok := positiveDimension(*raw.Width); ok {
			req.MapWidth = &v
		} else {
			report("%s is not a valid width.", *raw.Width)
		}
	}

	if raw.Height != nil {
		if v, ok := positiveDimension(*raw.Height); ok {
			req.MapHeight = &v
		} else {
			report("%s is not a valid height.", *raw.Height)
		}
	}

	if raw.Center != nil {
		if center, ok := p.geocodeCenter(ctx, *raw.Center, &diags); ok {
			req.Center = &center
		}
	}

	if raw.Zoom != nil {
		v, ok := parseNumeric(*raw.Zoom)
		if ok && v == math.Trunc(v) && v >= mapoptions.MinZoom && v <= mapoptions.MaxZoom {
			zoom := int(v)
			req.Zoom = &zoom
		} else {
			report("%s is not a valid zoom level.", *raw.Zoom)
		}
	}

	if raw.Type != nil {
		if mapType, ok := mapoptions.ParseMapType(*raw.Type); ok {
			req.MapType = &mapType
		} else {
			report("%s is not a valid map type.", strings.ToUpper(strings.TrimSpace(*raw.Type)))
		}
	}

	return req, diags
}

func (p *ArgumentProcessor) placemarkExists(ctx context.Context, id int64) bool {
	if p.placemarks == nil {
		return false
	}
	ok, err := p.placemarks.Exists(ctx, id)
	if err != nil {
		p.lookupFailed(ctx, "placemark", id, err)
		return false
	}
	return ok
}

func (p *ArgumentProcessor) placemarkLocated(ctx context.Context, id int64) bool {
	_, ok, err := p.placemarks.PlacemarkCoordinates(ctx, id)
	if err != nil {
		p.lookupFailed(ctx, "placemark", id, err)
		return false
	}
	return ok
}

func (p *ArgumentProcessor) categoryExists(ctx context.Context, key string) bool {
	if p.categories == nil {
		return false
	}
	ok, err := p.categories.CategoryExists(ctx, key)
	if err != nil {
		p.lookupFailed(ctx, "category", key, err)
		return false
	}
	return ok
}

func (p *ArgumentProcessor) geocodeCenter(ctx context.Context, address string, diags *Diagnostics) (interfaces.Coordinates, bool) {
	if p.geocoder == nil {
		return interfaces.Coordinates{}, false
	}
	coords, err := p.geocoder.Geocode(ctx, address)
	if err != nil {
		*diags = append(*diags, geocoding.Notice(p.plugin, err))
		return interfaces.Coordinates{}, false
	}
	return coords, true
}

func (p *ArgumentProcessor) lookupFailed(ctx context.Context, subject string, key any, err error) {
	logging.WithFields(p.logger.WithContext(ctx), map[string]any{
		"subject": subject,
		"key":     key,
		"error":   err,
	}).Warn("shortcode.arguments.lookup_failed")
}

// categoryNames accepts a comma separated string or a non-empty list.
func categoryNames(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return splitCategories(v), true
	case []string:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]string, 0, len(v))
		for _, name := range v {
			out = append(out, strings.TrimSpace(name))
		}
		return out, true
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strings.TrimSpace(fmt.Sprintf("%v", item)))
		}
		return out, true
	default:
		return nil, false
	}
}

func splitCategories(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

func parseNumeric(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// maxDimension bounds width and height so the int conversion cannot overflow.
const maxDimension = math.MaxInt32

// positiveDimension truncates fractional pixel sizes toward zero.
func positiveDimension(raw string) (int, bool) {
	v, ok := parseNumeric(raw)
	if !ok || v < 1 || v > maxDimension {
		return 0, false
	}
	return int(v), true
}
