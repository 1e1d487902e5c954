package geocoding

import "time"

// Metrics records geocoder activity. Outcome is "ok" or a failure Kind.
type Metrics interface {
	ObserveRequest(operation, outcome string, duration time.Duration)
	IncrementBypass()
}

// NoOpMetrics returns a recorder that drops every observation.
func NoOpMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveRequest(string, string, time.Duration) {}

func (noopMetrics) IncrementBypass() {}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := KindOf(err); kind != KindNone {
		return string(kind)
	}
	return "error"
}
