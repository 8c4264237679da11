package smpp

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a Session or SessionGroup reports
// through. Callers that want the series exposed on their own registry build
// one with NewMetrics and pass it via Config.Metrics; the unregistered
// instance newNoopMetrics builds is safe to use standalone and simply isn't
// scraped.
type Metrics struct {
	queueDepth     prometheus.Gauge
	pendingSize    prometheus.Gauge
	throttled      prometheus.Counter
	transitions    *prometheus.CounterVec
	enquireLinkRTT prometheus.Histogram
}

// NewMetrics builds and registers a Metrics instance under reg, labeling
// every series with the given session (or group) id.
func NewMetrics(reg prometheus.Registerer, id string) *Metrics {
	m := buildMetrics(id)
	reg.MustRegister(
		m.queueDepth,
		m.pendingSize,
		m.throttled,
		m.transitions,
		m.enquireLinkRTT,
	)
	return m
}

func newNoopMetrics() *Metrics {
	return buildMetrics("unregistered")
}

func buildMetrics(id string) *Metrics {
	labels := prometheus.Labels{"session": id}
	return &Metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "smpp",
			Subsystem:   "session",
			Name:        "processor_queue_depth",
			Help:        "Number of PDUs currently queued in the processor pool.",
			ConstLabels: labels,
		}),
		pendingSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "smpp",
			Subsystem:   "session",
			Name:        "pending_responses",
			Help:        "Number of outbound requests awaiting a correlated response.",
			ConstLabels: labels,
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "smpp",
			Subsystem:   "session",
			Name:        "throttled_total",
			Help:        "Number of request PDUs rejected with ESME_RTHROTTLED due to a full processor queue.",
			ConstLabels: labels,
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "smpp",
			Subsystem:   "session",
			Name:        "state_transitions_total",
			Help:        "Number of session state transitions, labeled by resulting state.",
			ConstLabels: labels,
		}, []string{"state"}),
		enquireLinkRTT: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "smpp",
			Subsystem:   "session",
			Name:        "enquire_link_rtt_seconds",
			Help:        "Round-trip time of enquire_link keepalive probes.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) setPendingSize(n int) {
	if m == nil {
		return
	}
	m.pendingSize.Set(float64(n))
}

func (m *Metrics) incThrottled() {
	if m == nil {
		return
	}
	m.throttled.Inc()
}

func (m *Metrics) observeTransition(state SessionState) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state.String()).Inc()
}

func (m *Metrics) observeEnquireLinkRTT(seconds float64) {
	if m == nil {
		return
	}
	m.enquireLinkRTT.Observe(seconds)
}
