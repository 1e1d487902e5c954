package telemetry

import (
	"testing"
	"time"

	"github.com/goliatone/go-placemarks/internal/commands"
	"github.com/goliatone/go-placemarks/internal/geocoding"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	_ geocoding.Metrics           = (*Metrics)(nil)
	_ interfaces.ShortcodeMetrics = (*Metrics)(nil)
	_ commands.OutcomeRecorder    = (*Metrics)(nil)
)

func TestMetricsRecordGeocoding(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "")

	m.ObserveRequest("geocode", "ok", 120*time.Millisecond)
	m.ObserveRequest("geocode", "http_error", time.Second)
	m.ObserveRequest("geocode", "ok", 80*time.Millisecond)
	m.IncrementBypass()

	if got := testutil.ToFloat64(m.geocodeRequests.WithLabelValues("geocode", "ok")); got != 2 {
		t.Fatalf("expected 2 ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.geocodeBypass); got != 1 {
		t.Fatalf("expected 1 bypass, got %v", got)
	}
	if got := testutil.CollectAndCount(m.geocodeDuration); got != 1 {
		t.Fatalf("expected one duration series, got %d", got)
	}
}

func TestMetricsRecordShortcodes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "atlas")

	m.ObserveRenderDuration("bgmp-map", 5*time.Millisecond)
	m.IncrementRenderError("bgmp-map")
	m.IncrementCacheHit("bgmp-list")
	m.IncrementCacheHit("bgmp-list")

	if got := testutil.ToFloat64(m.renderErrors.WithLabelValues("bgmp-map")); got != 1 {
		t.Fatalf("expected 1 render error, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheHits.WithLabelValues("bgmp-list")); got != 2 {
		t.Fatalf("expected 2 cache hits, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "atlas_shortcode_cache_hits_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected namespaced cache hit metric")
	}
}

func TestMetricsRecordCommands(t *testing.T) {
	m := New(prometheus.NewRegistry(), "")

	m.ObserveCommand("placemarks.save", "succeeded", 10*time.Millisecond)
	m.ObserveCommand("placemarks.save", "failed", 20*time.Millisecond)
	m.ObserveCommand("placemarks.save", "succeeded", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.commandRuns.WithLabelValues("placemarks.save", "succeeded")); got != 2 {
		t.Fatalf("expected 2 successful runs, got %v", got)
	}
	if got := testutil.CollectAndCount(m.commandDuration); got != 1 {
		t.Fatalf("expected one duration series, got %d", got)
	}
}
