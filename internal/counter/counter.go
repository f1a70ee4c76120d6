// Package counter demonstrates safe concurrent mutation of one shared value
// by many goroutines with no lost updates.
//
// Lifecycle:
//
//	c := counter.New()
//	handles := counter.SpawnIncrementWorkers(c, 5)
//	err := counter.JoinAll(handles) // mandatory before Read
//	v, err := c.Read()              // 5
//
// The value is reachable only through the guard. Read refuses to answer
// while any spawned worker is still unjoined, and a worker that panics while
// holding the guard poisons the counter for good.
package counter

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Sentinel errors returned by the counter.
var (
	// ErrNotJoined is returned by Read while spawned workers are unjoined.
	ErrNotJoined = errors.New("counter: read before all workers were joined")

	// ErrPoisoned reports that a worker panicked while holding the guard, so
	// the value can no longer be trusted.
	ErrPoisoned = errors.New("counter: poisoned by a worker that panicked inside the critical section")

	// ErrAlreadyJoined is returned when a handle is joined a second time.
	ErrAlreadyJoined = errors.New("counter: worker already joined")
)

// WorkerError identifies the worker that terminated abnormally.
type WorkerError struct {
	Worker int
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.Worker, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *WorkerError) Unwrap() error { return e.Err }

// PanicError carries the value a worker panicked with.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Counter is an integer guarded by a mutex. The zero value is not usable;
// create one with New.
type Counter struct {
	mu       sync.Mutex
	value    int
	poisoned bool

	// pending counts spawned handles not yet joined. It lives outside the
	// guard so Read can refuse early while a worker holds the lock.
	pending atomic.Int64
}

// New returns a counter starting at 0.
func New() *Counter {
	return &Counter{}
}

// Read returns the final value. It is valid only after every handle returned
// by SpawnIncrementWorkers has been joined.
func (c *Counter) Read() (int, error) {
	if n := c.pending.Load(); n > 0 {
		return 0, fmt.Errorf("%w (%d outstanding)", ErrNotJoined, n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return 0, ErrPoisoned
	}
	return c.value, nil
}

// update runs fn on the value while holding the guard. The guard is released
// on every exit path; if fn panics the counter is marked poisoned before the
// panic continues to unwind.
func (c *Counter) update(fn func(v int) int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return ErrPoisoned
	}

	completed := false
	defer func() {
		if !completed {
			c.poisoned = true
		}
	}()

	c.value = fn(c.value)
	completed = true
	return nil
}

func (c *Counter) track(n int) { c.pending.Add(int64(n)) }

func (c *Counter) untrack() { c.pending.Add(-1) }
