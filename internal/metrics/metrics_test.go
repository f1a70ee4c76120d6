package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.MessageSent()
		m.MessageReceived()
		m.SendFailed(ReasonClosed)
		m.WorkerStarted()
		m.WorkerFinished(true)
		m.Incremented()
		m.ObserveGuardWait(0.5)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.MessageSent()
	m.MessageSent()
	m.MessageReceived()
	m.SendFailed(ReasonDisconnected)
	m.WorkerStarted()
	m.WorkerStarted()
	m.WorkerFinished(false)
	m.WorkerFinished(true)
	m.Incremented()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendFailures.WithLabelValues(ReasonDisconnected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.WorkersActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkerFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Increments))
}

func TestSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Incremented()
	m.Incremented()
	m.ObserveGuardWait(0.001)
	m.SendFailed(ReasonCancelled)

	samples, err := Snapshot(reg)
	require.NoError(t, err)

	byName := make(map[string]Sample, len(samples))
	for _, s := range samples {
		byName[s.Name] = s
	}

	assert.Equal(t, 2.0, byName["trainings_counter_increments_total"].Value)
	assert.Equal(t, 1.0, byName["trainings_counter_guard_wait_seconds_count"].Value)
	assert.Equal(t, map[string]string{"reason": ReasonCancelled},
		byName["trainings_pipe_send_failures_total"].Labels)

	for i := 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i-1].Name, samples[i].Name)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
