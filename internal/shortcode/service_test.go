package shortcode

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/notices"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

func TestServiceProcessRecordsMetrics(t *testing.T) {
	metrics := newMetricsStub()
	renderer := &stubRenderer{result: template.HTML("<div>ok</div>")}
	parser := stubParser{
		transformed: "prefix <!-- shortcode:0 --> suffix",
		shortcodes: []interfaces.ParsedShortcode{
			{Name: "bgmp-list"},
		},
	}

	service := NewService(nil, renderer,
		WithParser(parser),
		WithMetrics(metrics),
		WithLogger(logging.NoOp()),
	)

	output, err := service.Process(context.Background(), "[bgmp-list]", interfaces.ShortcodeProcessOptions{})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if output != "prefix <div>ok</div> suffix" {
		t.Fatalf("unexpected output: %s", output)
	}

	if got := metrics.durationCount("bgmp-list"); got != 1 {
		t.Fatalf("expected 1 duration record, got %d", got)
	}
	if got := metrics.errorCount("bgmp-list"); got != 0 {
		t.Fatalf("expected 0 render errors, got %d", got)
	}
}

func TestServiceProcessDegradesFailedShortcode(t *testing.T) {
	metrics := newMetricsStub()
	renderer := &stubRenderer{err: errors.New("render failed")}
	parser := stubParser{
		transformed: "prefix <!-- shortcode:0 --> suffix",
		shortcodes: []interfaces.ParsedShortcode{
			{Name: "bgmp-list"},
		},
	}
	collector := notices.NewCollector()

	service := NewService(nil, renderer,
		WithParser(parser),
		WithMetrics(metrics),
		WithNoticePrefix("Atlas"),
	)

	out, err := service.Process(context.Background(), "[bgmp-list]", interfaces.ShortcodeProcessOptions{Notices: collector})
	if err != nil {
		t.Fatalf("expected failure to degrade, got %v", err)
	}
	if out != "prefix  suffix" {
		t.Fatalf("expected empty replacement, got %q", out)
	}
	errs := collector.List().Errors()
	if len(errs) != 1 || errs[0] != "Atlas shortcode error: render failed" {
		t.Fatalf("unexpected notices %v", errs)
	}
	if got := metrics.durationCount("bgmp-list"); got != 1 {
		t.Fatalf("expected duration recorded even on error, got %d", got)
	}
	if got := metrics.errorCount("bgmp-list"); got != 1 {
		t.Fatalf("expected 1 render error, got %d", got)
	}
}

func TestServiceProcessReturnsParseErrors(t *testing.T) {
	wantErr := errors.New("unclosed shortcode")
	service := NewService(nil, &stubRenderer{}, WithParser(stubParser{err: wantErr}))

	if _, err := service.Process(context.Background(), "{{< bgmp-map", interfaces.ShortcodeProcessOptions{}); !errors.Is(err, wantErr) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestServiceWithoutRendererIsNotReady(t *testing.T) {
	service := NewService(nil, nil)
	if _, err := service.Process(context.Background(), "text", interfaces.ShortcodeProcessOptions{}); !errors.Is(err, ErrServiceNotReady) {
		t.Fatalf("expected ErrServiceNotReady, got %v", err)
	}
	if out, err := service.Process(context.Background(), "  ", interfaces.ShortcodeProcessOptions{}); err != nil || out != "  " {
		t.Fatalf("expected blank content to pass through, got %q %v", out, err)
	}
}

func TestServiceRenderRecordsMetrics(t *testing.T) {
	metrics := newMetricsStub()
	renderer := &stubRenderer{result: template.HTML("<span/>")}

	service := NewService(nil, renderer,
		WithMetrics(metrics),
		WithLogger(logging.NoOp()),
	)

	_, err := service.Render(interfaces.ShortcodeContext{}, "bgmp-list", nil, "")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	if got := metrics.durationCount("bgmp-list"); got != 1 {
		t.Fatalf("expected duration recorded for render, got %d", got)
	}
	if got := metrics.errorCount("bgmp-list"); got != 0 {
		t.Fatalf("expected no render errors, got %d", got)
	}
}

func TestServiceProcessCollectsNotices(t *testing.T) {
	registry := NewRegistry(NewValidator())
	if err := RegisterBuiltIns(registry, fixtureDependencies(&markerSourceStub{}, &listSourceStub{}), nil); err != nil {
		t.Fatalf("register built-ins: %v", err)
	}
	service := NewService(registry, NewRenderer(registry, NewValidator()), WithWordPressSyntax(true))
	collector := notices.NewCollector()

	content := `<p>See [our map](https://example.com)</p>
[bgmp-map zoom="25" center="47.6,-122.3" type='terrain']
[bgmp-list]`
	out, err := service.Process(context.Background(), content, interfaces.ShortcodeProcessOptions{Notices: collector})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if !strings.Contains(out, "[our map](https://example.com)") {
		t.Fatalf("expected prose brackets to survive, got %s", out)
	}
	if !strings.Contains(out, "bgmp_map-canvas") || !strings.Contains(out, "No Placemarks found") {
		t.Fatalf("expected both shortcodes rendered, got %s", out)
	}
	errs := collector.List().Errors()
	if len(errs) != 1 || errs[0] != "Basic Google Maps Placemarks shortcode error: 25 is not a valid zoom level." {
		t.Fatalf("unexpected notices %v", errs)
	}
}

type stubRenderer struct {
	result template.HTML
	err    error
}

func (r *stubRenderer) Render(_ interfaces.ShortcodeContext, _ string, _ map[string]any, _ string) (template.HTML, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.result, nil
}

type stubParser struct {
	transformed string
	shortcodes  []interfaces.ParsedShortcode
	err         error
}

func (p stubParser) Parse(string) ([]interfaces.ParsedShortcode, error) {
	return p.shortcodes, p.err
}

func (p stubParser) Extract(string) (string, []interfaces.ParsedShortcode, error) {
	return p.transformed, p.shortcodes, p.err
}

type metricsStub struct {
	mu        sync.Mutex
	durations map[string][]time.Duration
	errors    map[string]int
	cacheHits map[string]int
}

func newMetricsStub() *metricsStub {
	return &metricsStub{
		durations: map[string][]time.Duration{},
		errors:    map[string]int{},
		cacheHits: map[string]int{},
	}
}

func (m *metricsStub) ObserveRenderDuration(shortcode string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[shortcode] = append(m.durations[shortcode], duration)
}

func (m *metricsStub) IncrementRenderError(shortcode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[shortcode]++
}

func (m *metricsStub) IncrementCacheHit(shortcode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits[shortcode]++
}

func (m *metricsStub) durationCount(shortcode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.durations[shortcode])
}

func (m *metricsStub) errorCount(shortcode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[shortcode]
}

func (m *metricsStub) cacheHitCount(shortcode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits[shortcode]
}
