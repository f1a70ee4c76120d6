package counter_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/marcodamonte/trainings/internal/counter"
	"github.com/marcodamonte/trainings/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// joinWithin fails the test if JoinAll does not return in time, which would
// mean a worker left the guard held.
func joinWithin(t *testing.T, handles []*counter.Handle, d time.Duration) error {
	t.Helper()

	errc := make(chan error, 1)
	go func() { errc <- counter.JoinAll(handles) }()

	select {
	case err := <-errc:
		return err
	case <-time.After(d):
		t.Fatalf("JoinAll did not return within %s", d)
		return nil
	}
}

// ── Scenarios ────────────────────────────────────────────────────────────────

func TestSpawnJoinRead(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 5, 64} {
		c := counter.New()
		handles := counter.SpawnIncrementWorkers(c, n)
		require.Len(t, handles, n)

		require.NoError(t, counter.JoinAll(handles))

		got, err := c.Read()
		require.NoError(t, err)
		assert.Equal(t, n, got, "workers=%d", n)
	}
}

func TestNegativeWorkersSpawnsNothing(t *testing.T) {
	t.Parallel()

	c := counter.New()
	assert.Empty(t, counter.SpawnIncrementWorkers(c, -3))

	got, err := c.Read()
	require.NoError(t, err)
	assert.Zero(t, got)
}

// TestNoLostUpdates repeats the reference run many times; every interleaving
// must end at exactly n.
func TestNoLostUpdates(t *testing.T) {
	t.Parallel()

	const runs = 200
	const n = 5

	for i := 0; i < runs; i++ {
		got, err := counter.Run(n)
		require.NoError(t, err, "run %d", i)
		require.Equal(t, n, got, "run %d", i)
	}
}

// ── Read precondition ────────────────────────────────────────────────────────

// TestReadBeforeJoin holds every worker inside the critical section and
// checks that Read refuses to answer until all handles are joined.
func TestReadBeforeJoin(t *testing.T) {
	t.Parallel()

	const n = 3
	release := make(chan struct{})

	c := counter.New()
	handles := counter.SpawnIncrementWorkers(c, n, counter.WithHook(func(int) { <-release }))

	_, err := c.Read()
	assert.ErrorIs(t, err, counter.ErrNotJoined)

	close(release)

	// Joining only some handles is still not enough.
	require.NoError(t, handles[0].Join())
	_, err = c.Read()
	assert.ErrorIs(t, err, counter.ErrNotJoined)

	require.NoError(t, counter.JoinAll(handles[1:]))
	got, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestJoinTwice(t *testing.T) {
	t.Parallel()

	c := counter.New()
	handles := counter.SpawnIncrementWorkers(c, 2)
	require.NoError(t, counter.JoinAll(handles))

	err := handles[1].Join()
	assert.ErrorIs(t, err, counter.ErrAlreadyJoined)

	var we *counter.WorkerError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, 2, we.Worker)

	// A duplicate join does not disturb the bookkeeping.
	got, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestHandleIDs(t *testing.T) {
	t.Parallel()

	handles := counter.SpawnIncrementWorkers(counter.New(), 4)
	defer counter.JoinAll(handles)

	for i, h := range handles {
		assert.Equal(t, i+1, h.ID())
	}
}

// ── Mutual exclusion ─────────────────────────────────────────────────────────

// TestCriticalSectionIsExclusive records the peak number of workers inside
// the critical section at once.
func TestCriticalSectionIsExclusive(t *testing.T) {
	t.Parallel()

	var inside, peak int64
	hook := func(int) {
		cur := atomic.AddInt64(&inside, 1)
		for {
			prev := atomic.LoadInt64(&peak)
			if cur <= prev || atomic.CompareAndSwapInt64(&peak, prev, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&inside, -1)
	}

	got, err := counter.Run(20, counter.WithHook(hook))
	require.NoError(t, err)
	assert.Equal(t, 20, got)
	assert.Equal(t, int64(1), atomic.LoadInt64(&peak))
}

// ── Abnormal termination ─────────────────────────────────────────────────────

// TestPanicInsideGuardPoisons checks that a panicking worker releases the
// guard (nobody deadlocks), is named in the error, and poisons the counter.
func TestPanicInsideGuardPoisons(t *testing.T) {
	t.Parallel()

	const n = 5
	const culprit = 3

	c := counter.New()
	handles := counter.SpawnIncrementWorkers(c, n,
		counter.WithLogger(zaptest.NewLogger(t)),
		counter.WithHook(func(worker int) {
			if worker == culprit {
				panic("boom")
			}
		}),
	)

	err := joinWithin(t, handles, 2*time.Second)
	require.Error(t, err)

	var (
		panicked []int
		poisoned int
	)
	for _, e := range multierr.Errors(err) {
		var we *counter.WorkerError
		require.True(t, errors.As(e, &we), "unexpected error %v", e)

		var pe *counter.PanicError
		switch {
		case errors.As(e, &pe):
			panicked = append(panicked, we.Worker)
			assert.Equal(t, "boom", pe.Value)
		case errors.Is(e, counter.ErrPoisoned):
			poisoned++
		default:
			t.Errorf("unexpected worker error %v", e)
		}
	}
	assert.Equal(t, []int{culprit}, panicked)
	assert.Contains(t, err.Error(), "worker 3: panic: boom")

	_, err = c.Read()
	assert.ErrorIs(t, err, counter.ErrPoisoned)
}

func TestRunPropagatesFailure(t *testing.T) {
	t.Parallel()

	got, err := counter.Run(1, counter.WithHook(func(int) { panic("abort") }))
	assert.Zero(t, got)

	var we *counter.WorkerError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, 1, we.Worker)
}

// ── Metrics ──────────────────────────────────────────────────────────────────

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	got, err := counter.Run(5, counter.WithMetrics(m))
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Increments))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.WorkersActive))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.WorkerFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GuardWait))

	_, err = counter.Run(2, counter.WithMetrics(m), counter.WithHook(func(w int) {
		if w == 1 || w == 2 {
			panic("x")
		}
	}))
	require.Error(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WorkerFailures))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Increments))
}
