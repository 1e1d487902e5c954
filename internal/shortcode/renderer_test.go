package shortcode

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"testing"
	"time"

	cacheadapter "github.com/goliatone/go-placemarks/internal/adapters/cache"
	parserpkg "github.com/goliatone/go-placemarks/internal/shortcode/parser"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

type memoryCache struct {
	store map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string]string{}}
}

func (c *memoryCache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (string, error)) (string, error) {
	if markup, ok := c.store[key]; ok {
		return markup, nil
	}
	markup, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	c.store[key] = markup
	return markup, nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *memoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	for key := range c.store {
		if strings.HasPrefix(key, prefix) {
			delete(c.store, key)
		}
	}
	return nil
}

func noteDefinition() interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name: "note",
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{Name: "kind", Type: interfaces.ShortcodeParamString, Default: "info"},
			},
		},
		Handler: func(_ interfaces.ShortcodeContext, params map[string]any, inner string) (template.HTML, error) {
			return template.HTML(fmt.Sprintf(`<aside class="bgmp_note bgmp_note-%s">%s</aside>`,
				params["kind"], template.HTMLEscapeString(inner))), nil
		},
	}
}

func TestRendererBindsAttributesBeforeHandler(t *testing.T) {
	registry := NewRegistry(NewValidator())
	if err := registry.Register(noteDefinition()); err != nil {
		t.Fatalf("register: %v", err)
	}
	renderer := NewRenderer(registry, NewValidator())

	html, err := renderer.Render(interfaces.ShortcodeContext{Locale: "en"}, "NOTE", map[string]any{"kind": "tip"}, "Bring a coat")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(html) != `<aside class="bgmp_note bgmp_note-tip">Bring a coat</aside>` {
		t.Fatalf("unexpected markup %s", html)
	}

	html, err = renderer.Render(interfaces.ShortcodeContext{}, "note", nil, "")
	if err != nil {
		t.Fatalf("Render() default error: %v", err)
	}
	if !strings.Contains(string(html), "bgmp_note-info") {
		t.Fatalf("expected default kind, got %s", html)
	}
}

func TestRendererRejectsUnknownShortcode(t *testing.T) {
	renderer := NewRenderer(NewRegistry(NewValidator()), nil)
	if _, err := renderer.Render(interfaces.ShortcodeContext{}, "missing", nil, ""); err == nil {
		t.Fatal("expected error for unregistered shortcode")
	}
}

func TestRendererStripsActiveContent(t *testing.T) {
	registry := NewRegistry(NewValidator())
	malicious := interfaces.ShortcodeDefinition{
		Name: "bad",
		Handler: func(interfaces.ShortcodeContext, map[string]any, string) (template.HTML, error) {
			return `<div class="bgmp_note"><script>alert('xss')</script>safe</div>`, nil
		},
	}
	if err := registry.Register(malicious); err != nil {
		t.Fatalf("register: %v", err)
	}

	renderer := NewRenderer(registry, NewValidator())
	html, err := renderer.Render(interfaces.ShortcodeContext{}, "bad", nil, "")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(string(html), "<script") || !strings.Contains(string(html), "safe") {
		t.Fatalf("expected script removed, got %s", html)
	}
}

func TestCacheKeyIgnoresAttributeOrder(t *testing.T) {
	a := cacheKey("en", "bgmp-list", map[string]any{"a": 1, "b": "two"}, "")
	b := cacheKey("en", "bgmp-list", map[string]any{"b": "two", "a": 1}, "")
	if a != b {
		t.Fatalf("expected stable key, got %s and %s", a, b)
	}
	if a == cacheKey("fr", "bgmp-list", map[string]any{"a": 1, "b": "two"}, "") {
		t.Fatal("expected locale to change the key")
	}
	if !strings.HasPrefix(a, CacheKeyPrefix+"bgmp-list:") {
		t.Fatalf("unexpected key %s", a)
	}
}

func TestRenderer_CacheHit(t *testing.T) {
	registry := NewRegistry(NewValidator())
	list := &listSourceStub{items: fixtureListItems()}
	deps := fixtureDependencies(nil, list)
	deps.ListCacheTTL = time.Hour
	if err := RegisterBuiltIns(registry, deps, []string{ListShortcodeName}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cache := newMemoryCache()
	metrics := newMetricsStub()
	renderer := NewRenderer(registry, NewValidator(), WithRendererCache(cache), WithRendererMetrics(metrics))

	ctx := interfaces.ShortcodeContext{Locale: "en"}
	first, err := renderer.Render(ctx, ListShortcodeName, nil, "")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	list.items = nil
	second, err := renderer.Render(ctx, ListShortcodeName, nil, "")
	if err != nil {
		t.Fatalf("Render() second call error: %v", err)
	}

	if first != second {
		t.Fatal("expected cached list markup on second render")
	}
	if len(cache.store) != 1 {
		t.Fatalf("expected cache to store 1 item, got %d", len(cache.store))
	}
	if got := metrics.cacheHitCount(ListShortcodeName); got != 1 {
		t.Fatalf("expected 1 cache hit, got %d", got)
	}
}

func TestRenderer_EndToEnd(t *testing.T) {
	registry := NewRegistry(NewValidator())
	markers := &markerSourceStub{}
	list := &listSourceStub{items: fixtureListItems()}
	if err := RegisterBuiltIns(registry, fixtureDependencies(markers, list), nil); err != nil {
		t.Fatalf("register built-ins: %v", err)
	}

	renderer := NewRenderer(registry, NewValidator())
	parser := parserpkg.NewHugoParser()

	content := `Before {{< bgmp-map type="satellite" >}} Middle {{< bgmp-list viewonmap="true" >}} After`
	transformed, parsed, err := parser.Extract(content)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	ctx := interfaces.ShortcodeContext{Locale: "en"}
	output := transformed
	for idx, sc := range parsed {
		html, err := renderer.Render(ctx, sc.Name, sc.Params, sc.Inner)
		if err != nil {
			t.Fatalf("Render shortcode %s: %v", sc.Name, err)
		}
		placeholder := fmt.Sprintf("<!-- shortcode:%d -->", idx)
		output = strings.ReplaceAll(output, placeholder, string(html))
	}

	if !strings.Contains(output, "bgmp_map-canvas") {
		t.Fatalf("expected map markup, got %s", output)
	}
	if !strings.Contains(output, "bgmp_view-on-map") {
		t.Fatalf("expected list markup in output")
	}
	if strings.Contains(output, "<!-- shortcode:") {
		t.Fatalf("expected every placeholder to be replaced")
	}
}

func TestRendererReadsThroughRenderCache(t *testing.T) {
	renders := 0
	fail := true
	registry := NewRegistry(NewValidator())
	if err := registry.Register(interfaces.ShortcodeDefinition{
		Name:     "counter",
		CacheTTL: time.Minute,
		Handler: func(interfaces.ShortcodeContext, map[string]any, string) (template.HTML, error) {
			renders++
			if fail {
				return "", fmt.Errorf("source offline")
			}
			return `<p onclick="steal()">count</p>`, nil
		},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	renderCache, err := cacheadapter.NewWithTTL(time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	metrics := newMetricsStub()
	renderer := NewRenderer(registry, nil, WithRendererCache(renderCache), WithRendererMetrics(metrics))
	sc := interfaces.ShortcodeContext{Context: context.Background()}

	if _, err := renderer.Render(sc, "counter", nil, ""); err == nil {
		t.Fatal("expected handler error")
	}
	fail = false
	for range 2 {
		html, err := renderer.Render(sc, "counter", nil, "")
		if err != nil {
			t.Fatalf("Render() error: %v", err)
		}
		if strings.Contains(string(html), "onclick") || !strings.Contains(string(html), "count") {
			t.Fatalf("expected sanitized markup, got %s", html)
		}
	}
	if renders != 2 {
		t.Fatalf("expected the failed render to be retried once then cached, got %d renders", renders)
	}
	if got := metrics.cacheHitCount("counter"); got != 1 {
		t.Fatalf("expected 1 cache hit, got %d", got)
	}

	if err := renderCache.DeleteByPrefix(context.Background(), CacheKeyPrefix); err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}
	if _, err := renderer.Render(sc, "counter", nil, ""); err != nil || renders != 3 {
		t.Fatalf("expected render after invalidation, renders=%d err=%v", renders, err)
	}
}
