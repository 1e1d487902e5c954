package shortcode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"slices"
	"strings"

	"github.com/goliatone/go-placemarks/internal/adapters/noop"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// CacheKeyPrefix starts every render cache key.
const CacheKeyPrefix = "placemarks:shortcode:"

// Renderer binds attributes, runs the definition handler and cleans the
// output. Definitions with a positive CacheTTL are served through the cache;
// entries then live for the cache's own TTL.
type Renderer struct {
	registry  interfaces.ShortcodeRegistry
	validator *Validator
	sanitizer interfaces.ShortcodeSanitizer
	cache     interfaces.CacheProvider
	metrics   interfaces.ShortcodeMetrics
}

var _ interfaces.ShortcodeRenderer = (*Renderer)(nil)

type RendererOption func(*Renderer)

func WithRendererSanitizer(s interfaces.ShortcodeSanitizer) RendererOption {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// WithRendererCache sets the cache used when the call context has none.
func WithRendererCache(cache interfaces.CacheProvider) RendererOption {
	return func(r *Renderer) {
		r.cache = cache
	}
}

func WithRendererMetrics(metrics interfaces.ShortcodeMetrics) RendererOption {
	return func(r *Renderer) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

func NewRenderer(registry interfaces.ShortcodeRegistry, validator *Validator, opts ...RendererOption) *Renderer {
	if validator == nil {
		validator = NewValidator()
	}
	r := &Renderer{
		registry:  registry,
		validator: validator,
		sanitizer: NewSanitizer(),
		metrics:   noop.ShortcodeMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Render(sc interfaces.ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error) {
	def, ok := r.registry.Get(shortcode)
	if !ok {
		return "", fmt.Errorf("shortcode: %s is not registered", shortcode)
	}
	bound, err := r.validator.Bind(def, params)
	if err != nil {
		return "", err
	}

	ctx := sc.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cache := sc.Cache
	if cache == nil {
		cache = r.cache
	}
	sanitizer := sc.Sanitizer
	if sanitizer == nil {
		sanitizer = r.sanitizer
	}

	render := func(context.Context) (string, error) {
		out, err := def.Handler(sc, bound, inner)
		if err != nil {
			return "", err
		}
		if sanitizer == nil {
			return string(out), nil
		}
		return sanitizer.Sanitize(string(out))
	}

	if cache == nil || def.CacheTTL <= 0 {
		markup, err := render(ctx)
		if err != nil {
			return "", err
		}
		return template.HTML(markup), nil
	}

	fetched := false
	markup, err := cache.GetOrFetch(ctx, cacheKey(sc.Locale, def.Name, bound, inner), func(ctx context.Context) (string, error) {
		fetched = true
		return render(ctx)
	})
	if err != nil {
		return "", err
	}
	if !fetched {
		r.metrics.IncrementCacheHit(def.Name)
	}
	return template.HTML(markup), nil
}

// cacheKey is stable across attribute order.
func cacheKey(locale, name string, params map[string]any, inner string) string {
	names := make([]string, 0, len(params))
	for param := range params {
		names = append(names, param)
	}
	slices.Sort(names)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", locale, name)
	for _, param := range names {
		fmt.Fprintf(h, "%s=%v\x00", param, params[param])
	}
	h.Write([]byte(inner))
	return CacheKeyPrefix + strings.ToLower(name) + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}
