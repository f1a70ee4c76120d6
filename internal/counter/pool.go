package counter

import (
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/marcodamonte/trainings/internal/metrics"
)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	hook    func(worker int)
}

// Option configures SpawnIncrementWorkers.
type Option func(*options)

// WithLogger sets the logger used for worker lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records increments, failures and guard wait times on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithHook runs fn inside the critical section of every worker, after the
// read and before the write. A panic in fn aborts that worker while it holds
// the guard.
func WithHook(fn func(worker int)) Option {
	return func(o *options) { o.hook = fn }
}

// Handle represents one spawned worker. It must be joined exactly once.
type Handle struct {
	id      int
	counter *Counter
	done    chan struct{}
	err     error // written before done is closed

	mu     sync.Mutex
	joined bool
}

// ID returns the worker's index, starting at 1.
func (h *Handle) ID() int { return h.id }

// Join blocks until the worker has terminated and returns its failure, if
// any. A second Join returns ErrAlreadyJoined without blocking.
func (h *Handle) Join() error {
	h.mu.Lock()
	if h.joined {
		h.mu.Unlock()
		return &WorkerError{Worker: h.id, Err: ErrAlreadyJoined}
	}
	h.joined = true
	h.mu.Unlock()

	<-h.done
	h.counter.untrack()
	return h.err
}

// SpawnIncrementWorkers starts n goroutines, each incrementing c exactly
// once under its guard. It returns one handle per worker; n <= 0 spawns
// nothing.
func SpawnIncrementWorkers(c *Counter, n int, opts ...Option) []*Handle {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if n <= 0 {
		return nil
	}

	// Track before starting so Read can never observe a gap.
	c.track(n)

	handles := make([]*Handle, n)
	for i := range handles {
		h := &Handle{id: i + 1, counter: c, done: make(chan struct{})}
		handles[i] = h
		o.metrics.WorkerStarted()
		go runWorker(h, o)
	}

	o.logger.Debug("workers spawned", zap.Int("workers", n))
	return handles
}

// runWorker is the goroutine body for one worker. A panic is recovered here,
// in the goroutine that raised it, and turned into the handle's error.
func runWorker(h *Handle, o options) {
	defer close(h.done)
	defer func() {
		if r := recover(); r != nil {
			h.err = &WorkerError{Worker: h.id, Err: &PanicError{Value: r}}
		}
		if h.err != nil {
			o.logger.Error("worker failed", zap.Int("worker", h.id), zap.Error(h.err))
		}
		o.metrics.WorkerFinished(h.err != nil)
	}()

	start := time.Now()
	err := h.counter.update(func(v int) int {
		o.metrics.ObserveGuardWait(time.Since(start).Seconds())
		if o.hook != nil {
			o.hook(h.id)
		}
		return v + 1
	})
	if err != nil {
		h.err = &WorkerError{Worker: h.id, Err: err}
		return
	}

	o.metrics.Incremented()
	o.logger.Debug("worker incremented", zap.Int("worker", h.id))
}

// JoinAll joins every handle, including after a failure, and returns all
// worker failures combined. The combined error lists each failing worker.
func JoinAll(handles []*Handle) error {
	var err error
	for _, h := range handles {
		err = multierr.Append(err, h.Join())
	}
	return err
}

// Run spawns n workers on a fresh counter, joins them and reads the result.
func Run(n int, opts ...Option) (int, error) {
	c := New()
	if err := JoinAll(SpawnIncrementWorkers(c, n, opts...)); err != nil {
		return 0, err
	}
	return c.Read()
}
