// Package metrics holds the Prometheus collectors shared by the pipe and the
// counter pool.
//
// Every method is safe on a nil *Metrics so components can run without
// instrumentation.
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "trainings"

// Send failure reasons.
const (
	ReasonDisconnected = "disconnected"
	ReasonClosed       = "closed"
	ReasonCancelled    = "cancelled"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Pipe metrics
	MessagesSent     prometheus.Counter
	MessagesReceived prometheus.Counter
	SendFailures     *prometheus.CounterVec

	// Counter pool metrics
	Increments     prometheus.Counter
	WorkerFailures prometheus.Counter
	WorkersActive  prometheus.Gauge
	GuardWait      prometheus.Histogram
}

// New registers the collectors on reg. Use a fresh prometheus.NewRegistry()
// per run; registering twice on the same registry panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MessagesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipe",
				Name:      "messages_sent_total",
				Help:      "Messages accepted by the pipe",
			},
		),
		MessagesReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipe",
				Name:      "messages_received_total",
				Help:      "Messages delivered to the receiver",
			},
		),
		SendFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipe",
				Name:      "send_failures_total",
				Help:      "Sends that did not enqueue a message, by reason",
			},
			[]string{"reason"},
		),
		Increments: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "counter",
				Name:      "increments_total",
				Help:      "Completed guarded increments",
			},
		),
		WorkerFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "counter",
				Name:      "worker_failures_total",
				Help:      "Workers that terminated abnormally",
			},
		),
		WorkersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "counter",
				Name:      "workers_active",
				Help:      "Workers spawned and not yet finished",
			},
		),
		GuardWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "counter",
				Name:      "guard_wait_seconds",
				Help:      "Time a worker waited to acquire the counter guard",
				Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
			},
		),
	}
}

// MessageSent counts one message accepted by the pipe.
func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.MessagesSent.Inc()
}

// MessageReceived counts one message taken off the pipe.
func (m *Metrics) MessageReceived() {
	if m == nil {
		return
	}
	m.MessagesReceived.Inc()
}

// SendFailed counts a rejected send under reason.
func (m *Metrics) SendFailed(reason string) {
	if m == nil {
		return
	}
	m.SendFailures.WithLabelValues(reason).Inc()
}

// WorkerStarted marks one more worker as running.
func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.WorkersActive.Inc()
}

// WorkerFinished records a worker exit; failed marks an abnormal one.
func (m *Metrics) WorkerFinished(failed bool) {
	if m == nil {
		return
	}
	m.WorkersActive.Dec()
	if failed {
		m.WorkerFailures.Inc()
	}
}

// Incremented counts one counter increment.
func (m *Metrics) Incremented() {
	if m == nil {
		return
	}
	m.Increments.Inc()
}

// ObserveGuardWait records seconds spent waiting for the counter guard.
func (m *Metrics) ObserveGuardWait(seconds float64) {
	if m == nil {
		return
	}
	m.GuardWait.Observe(seconds)
}

// Sample is one flattened metric value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers g and flattens counters and gauges into samples sorted by
// name. Histograms contribute their sample count under "<name>_count".
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: labels(m)}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				s.Name += "_count"
				s.Value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func labels(m *dto.Metric) map[string]string {
	if len(m.GetLabel()) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}
