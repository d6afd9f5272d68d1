package flow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus-compatible instrumentation for a Flow,
// parallel to how the design this package is modeled on wires its own
// execution metrics: an in-flight gauge, a per-node latency histogram
// labelled by outcome, a retry counter, and a trace-event counter.
//
// Attach with WithMetrics; a Flow constructed without it records nothing.
type Metrics struct {
	inflightNodes prometheus.Gauge
	nodeLatency   *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	traceEvents   prometheus.Counter
}

// NewMetrics registers the flow's metric set with registry and returns
// the collector. Pass prometheus.DefaultRegisterer for the global
// registry, or a fresh prometheus.NewRegistry() for test isolation.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		inflightNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentflow",
			Name:      "inflight_nodes",
			Help:      "Current number of node invocations in flight, including both branches of a parallel operator.",
		}),
		nodeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentflow",
			Name:      "node_duration_seconds",
			Help:      "Per-node execution latency in seconds, labelled by node and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"node", "outcome"}), // outcome: ok, timeout, err
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentflow",
			Name:      "node_retries_total",
			Help:      "Retry attempts, labelled by node and the reason for the prior attempt's failure.",
		}, []string{"node", "reason"}),
		traceEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agentflow",
			Name:      "trace_events_total",
			Help:      "Trace records emitted across all runs.",
		}),
	}
}

func (m *Metrics) nodeStarted() {
	if m == nil {
		return
	}
	m.inflightNodes.Inc()
}

func (m *Metrics) nodeFinished(node, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.inflightNodes.Dec()
	m.nodeLatency.WithLabelValues(node, outcome).Observe(seconds)
}

func (m *Metrics) retried(node, reason string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(node, reason).Inc()
}

func (m *Metrics) traceEmitted() {
	if m == nil {
		return
	}
	m.traceEvents.Inc()
}
