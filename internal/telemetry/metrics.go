package telemetry

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "placemarks"

// Metrics holds the collectors for geocoding, shortcode rendering and command
// execution. It satisfies geocoding.Metrics, interfaces.ShortcodeMetrics and
// commands.OutcomeRecorder.
type Metrics struct {
	geocodeRequests *prometheus.CounterVec
	geocodeDuration *prometheus.HistogramVec
	geocodeBypass   prometheus.Counter

	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec

	commandRuns     *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		geocodeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocoding",
			Name:      "requests_total",
			Help:      "Geocoding API requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		geocodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "geocoding",
			Name:      "request_duration_seconds",
			Help:      "Geocoding API latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		geocodeBypass: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocoding",
			Name:      "bypass_total",
			Help:      "Inputs resolved locally because they already were coordinates",
		}),
		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "shortcode",
			Name:      "render_duration_seconds",
			Help:      "Shortcode render latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"shortcode"}),
		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shortcode",
			Name:      "render_errors_total",
			Help:      "Shortcode renders that failed",
		}, []string{"shortcode"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shortcode",
			Name:      "cache_hits_total",
			Help:      "Shortcode renders served from cache",
		}, []string{"shortcode"}),
		commandRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "executions_total",
			Help:      "Command executions by message type and status",
		}, []string{"command", "status"}),
		commandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "duration_seconds",
			Help:      "Command execution time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

func (m *Metrics) ObserveRequest(operation, outcome string, d time.Duration) {
	m.geocodeRequests.WithLabelValues(operation, outcome).Inc()
	m.geocodeDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) IncrementBypass() {
	m.geocodeBypass.Inc()
}

func (m *Metrics) ObserveRenderDuration(shortcode string, d time.Duration) {
	m.renderDuration.WithLabelValues(shortcode).Observe(d.Seconds())
}

func (m *Metrics) IncrementRenderError(shortcode string) {
	m.renderErrors.WithLabelValues(shortcode).Inc()
}

func (m *Metrics) IncrementCacheHit(shortcode string) {
	m.cacheHits.WithLabelValues(shortcode).Inc()
}

func (m *Metrics) ObserveCommand(command, status string, d time.Duration) {
	m.commandRuns.WithLabelValues(command, status).Inc()
	m.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}
