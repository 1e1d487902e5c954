package interfaces

import (
	"context"
	"html/template"
	"time"
)

// ShortcodeRegistry stores the shortcodes a site can expand. Implementations
// must be safe for concurrent use.
type ShortcodeRegistry interface {
	// Register fails when the name is taken or the definition is malformed.
	Register(definition ShortcodeDefinition) error
	Get(name string) (ShortcodeDefinition, bool)
	// List returns definitions ordered by name.
	List() []ShortcodeDefinition
	// Remove is a no-op for unknown names.
	Remove(name string)
}

// ShortcodeRenderer expands a single shortcode invocation.
type ShortcodeRenderer interface {
	Render(ctx ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error)
}

// ShortcodeParser finds shortcode invocations in content. Extract replaces
// each invocation with a numbered placeholder.
type ShortcodeParser interface {
	Parse(content string) ([]ParsedShortcode, error)
	Extract(content string) (placeholders string, shortcodes []ParsedShortcode, err error)
}

// ShortcodeSanitizer cleans rendered markup before it reaches the page.
type ShortcodeSanitizer interface {
	Sanitize(html string) (string, error)
}

// ShortcodeDefinition binds a shortcode name to its attribute schema and handler.
// A positive CacheTTL opts the output into the render cache when one is
// available; the cache decides expiry.
type ShortcodeDefinition struct {
	Name        string
	Description string
	CacheTTL    time.Duration
	Schema      ShortcodeSchema
	Handler     ShortcodeHandler
}

// ShortcodeSchema lists the attributes a shortcode accepts. AllowUnknown
// drops undeclared attributes instead of rejecting the call.
type ShortcodeSchema struct {
	Params       []ShortcodeParam
	AllowUnknown bool
}

// ShortcodeParam describes one attribute.
type ShortcodeParam struct {
	Name     string
	Type     ShortcodeParamType
	Required bool
	Default  any
	Validate ShortcodeValidator
}

// ShortcodeParamType selects how a raw attribute value is converted.
type ShortcodeParamType string

const (
	ShortcodeParamString ShortcodeParamType = "string"
	ShortcodeParamInt    ShortcodeParamType = "int"
	ShortcodeParamBool   ShortcodeParamType = "bool"
	// ShortcodeParamList splits comma separated values into a []string.
	ShortcodeParamList ShortcodeParamType = "list"
	ShortcodeParamURL  ShortcodeParamType = "url"
)

type ShortcodeValidator func(value any) error

type ShortcodeHandler func(ctx ShortcodeContext, params map[string]any, inner string) (template.HTML, error)

// ShortcodeContext carries request scoped collaborators into handlers.
// Notices receives author-facing diagnostics; it may be nil.
type ShortcodeContext struct {
	Context   context.Context
	Locale    string
	Cache     CacheProvider
	Sanitizer ShortcodeSanitizer
	Notices   NoticeSink
}

// ParsedShortcode is one invocation found by a parser.
type ParsedShortcode struct {
	Name   string
	Params map[string]any
	Inner  string
}

// ShortcodeProcessOptions tunes a single Process call. Zero values fall back
// to the service defaults.
type ShortcodeProcessOptions struct {
	Locale          string
	EnableWordPress bool
	Cache           CacheProvider
	Sanitizer       ShortcodeSanitizer
	Notices         NoticeSink
}

// ShortcodeService expands every shortcode found in a content string.
type ShortcodeService interface {
	Process(ctx context.Context, content string, opts ShortcodeProcessOptions) (string, error)
	Render(ctx ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error)
}

// ShortcodeMetrics records rendering telemetry.
type ShortcodeMetrics interface {
	ObserveRenderDuration(shortcode string, duration time.Duration)
	IncrementRenderError(shortcode string)
	IncrementCacheHit(shortcode string)
}
