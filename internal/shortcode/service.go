package shortcode

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/goliatone/go-placemarks/internal/adapters/noop"
	"github.com/goliatone/go-placemarks/internal/logging"
	parserpkg "github.com/goliatone/go-placemarks/internal/shortcode/parser"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// ErrServiceNotReady is returned when the service was built without a renderer or parser.
var ErrServiceNotReady = errors.New("shortcode: service not initialised")

// Service expands shortcodes in page content. A shortcode that fails to
// render is replaced by an empty string and reported through the notice
// sink, so one bad invocation never blanks the page.
type Service struct {
	registry     interfaces.ShortcodeRegistry
	renderer     interfaces.ShortcodeRenderer
	parser       interfaces.ShortcodeParser
	wordpress    *parserpkg.WordPressPreprocessor
	sanitizer    interfaces.ShortcodeSanitizer
	cache        interfaces.CacheProvider
	logger       interfaces.Logger
	metrics      interfaces.ShortcodeMetrics
	bracketsOn   bool
	noticePrefix string
}

type ServiceOption func(*Service)

// WithWordPressSyntax enables [name attr="x"] invocations for every Process call.
func WithWordPressSyntax(enabled bool) ServiceOption {
	return func(s *Service) {
		s.bracketsOn = enabled
	}
}

func WithSanitizer(sanitizer interfaces.ShortcodeSanitizer) ServiceOption {
	return func(s *Service) {
		if sanitizer != nil {
			s.sanitizer = sanitizer
		}
	}
}

// WithDefaultCache is used when ShortcodeProcessOptions.Cache is nil.
func WithDefaultCache(cache interfaces.CacheProvider) ServiceOption {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(metrics interfaces.ShortcodeMetrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

func WithParser(parser interfaces.ShortcodeParser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithNoticePrefix changes the label put in front of render failure notices.
func WithNoticePrefix(prefix string) ServiceOption {
	return func(s *Service) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			s.noticePrefix = prefix
		}
	}
}

func NewService(registry interfaces.ShortcodeRegistry, renderer interfaces.ShortcodeRenderer, opts ...ServiceOption) *Service {
	s := &Service{
		registry:     registry,
		renderer:     renderer,
		parser:       parserpkg.NewHugoParser(),
		wordpress:    parserpkg.NewWordPressPreprocessor(),
		sanitizer:    NewSanitizer(),
		logger:       logging.NoOp(),
		metrics:      noop.ShortcodeMetrics(),
		noticePrefix: DefaultPluginName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process returns content with every registered shortcode expanded. The
// error is reserved for malformed shortcode syntax and an unusable service.
func (s *Service) Process(ctx context.Context, content string, opts interfaces.ShortcodeProcessOptions) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, nil
	}
	if s.renderer == nil || s.parser == nil {
		return "", ErrServiceNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := s.logger.WithContext(ctx)

	source := content
	if s.bracketsOn || opts.EnableWordPress {
		source = s.wordpress.ProcessRegistered(source, s.registered)
	}

	marked, found, err := s.parser.Extract(source)
	if err != nil {
		logger.Error("shortcode.process.parse_failed", "error", err)
		return "", err
	}
	if len(found) == 0 {
		return marked, nil
	}

	sc := s.callContext(interfaces.ShortcodeContext{
		Context:   ctx,
		Locale:    opts.Locale,
		Cache:     opts.Cache,
		Sanitizer: opts.Sanitizer,
		Notices:   opts.Notices,
	})

	pairs := make([]string, 0, len(found)*2)
	failed := 0
	for idx, invocation := range found {
		markup, err := s.render(sc, invocation.Name, invocation.Params, invocation.Inner)
		if err != nil {
			failed++
			markup = ""
			if sc.Notices != nil {
				sc.Notices.AddError(fmt.Sprintf("%s shortcode error: %s", s.noticePrefix, err))
			}
		}
		pairs = append(pairs, fmt.Sprintf(parserpkg.Placeholder, idx), string(markup))
	}

	logging.WithFields(logger, map[string]any{
		"shortcodes": len(found),
		"failed":     failed,
	}).Debug("shortcode.process.completed")
	return strings.NewReplacer(pairs...).Replace(marked), nil
}

// Render expands a single invocation and surfaces its error to the caller.
func (s *Service) Render(sc interfaces.ShortcodeContext, name string, params map[string]any, inner string) (template.HTML, error) {
	if s.renderer == nil {
		return "", ErrServiceNotReady
	}
	return s.render(s.callContext(sc), name, params, inner)
}

// Registry exposes the definitions this service can expand.
func (s *Service) Registry() interfaces.ShortcodeRegistry {
	return s.registry
}

func (s *Service) render(sc interfaces.ShortcodeContext, name string, params map[string]any, inner string) (template.HTML, error) {
	start := time.Now()
	out, err := s.renderer.Render(sc, name, params, inner)
	elapsed := time.Since(start)
	s.metrics.ObserveRenderDuration(name, elapsed)

	logger := logging.WithFields(s.logger.WithContext(sc.Context), map[string]any{
		"shortcode":   name,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		s.metrics.IncrementRenderError(name)
		logger.Warn("shortcode.render.failed", "error", err)
		return "", err
	}
	logger.Debug("shortcode.render.succeeded")
	return out, nil
}

func (s *Service) callContext(sc interfaces.ShortcodeContext) interfaces.ShortcodeContext {
	if sc.Context == nil {
		sc.Context = context.Background()
	}
	if sc.Sanitizer == nil {
		sc.Sanitizer = s.sanitizer
	}
	if sc.Cache == nil {
		sc.Cache = s.cache
	}
	return sc
}

// registered keeps bracketed prose like markdown link text out of the parser.
func (s *Service) registered(name string) bool {
	if s.registry == nil {
		return true
	}
	_, ok := s.registry.Get(name)
	return ok
}

var _ interfaces.ShortcodeService = (*Service)(nil)
