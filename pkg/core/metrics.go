package core

// Metrics is the abstract counters/latency sink the core reports to. Like
// Logger, it is an interface only — Prometheus/StatsD/JSON exporters are
// host-side collaborators, not part of the core (spec §1).
type Metrics interface {
	// IncrCounter increments a named counter by delta.
	IncrCounter(name string, delta int64, tags ...string)
	// ObserveLatency records a duration, in milliseconds, for a named
	// operation.
	ObserveLatency(name string, ms float64, tags ...string)
	// SetGauge records the current value of a named gauge.
	SetGauge(name string, value float64, tags ...string)
}

type nopMetrics struct{}

func (nopMetrics) IncrCounter(string, int64, ...string)    {}
func (nopMetrics) ObserveLatency(string, float64, ...string) {}
func (nopMetrics) SetGauge(string, float64, ...string)     {}

// NopMetrics returns a Metrics sink that discards everything; the
// VectorStore default.
func NopMetrics() Metrics { return nopMetrics{} }
