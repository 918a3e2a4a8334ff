package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions        *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	UpstreamCircuit  prometheus.Gauge
	FetchRetries     prometheus.Counter
	MemoryWrites     *prometheus.CounterVec
	MemoryPurged     prometheus.Counter
}

// New registers the consent metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_decisions_total",
			Help: "Consent challenges resolved, by outcome and source",
		}, []string{"outcome", "source"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_authserver_requests_total",
			Help: "Authorization server admin calls, by operation and outcome",
		}, []string{"operation", "outcome"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consentd_authserver_request_duration_seconds",
			Help:    "Latency of authorization server admin calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		UpstreamCircuit: factory.NewGauge(prometheus.GaugeOpts{
			Name: "consentd_authserver_circuit_open",
			Help: "1 while the authorization server is considered unhealthy",
		}),
		FetchRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "consentd_challenge_fetch_retries_total",
			Help: "Challenge fetches retried after a transient failure",
		}),
		MemoryWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consentd_memory_writes_total",
			Help: "Remembered decision writes, by result",
		}, []string{"result"}),
		MemoryPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "consentd_memory_purged_total",
			Help: "Expired remembered decisions removed by the sweeper",
		}),
	}
}

func (m *Metrics) ObserveDecision(outcome, source string) {
	m.Decisions.WithLabelValues(outcome, source).Inc()
}

// ObserveUpstream implements the authserver client observer.
func (m *Metrics) ObserveUpstream(op, outcome string, d time.Duration) {
	m.UpstreamRequests.WithLabelValues(op, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) SetUpstreamCircuitOpen(open bool) {
	if open {
		m.UpstreamCircuit.Set(1)
		return
	}
	m.UpstreamCircuit.Set(0)
}

func (m *Metrics) IncrementFetchRetries() {
	m.FetchRetries.Inc()
}

func (m *Metrics) ObserveMemoryWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.MemoryWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) AddPurged(n int) {
	m.MemoryPurged.Add(float64(n))
}
