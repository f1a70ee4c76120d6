// Package pipe connects one slow producer to one consumer that must observe
// every produced value, in order, without polling.
//
// The pipe is a Go channel with an explicit capacity wrapped in two
// single-owner ends:
//
//	tx, rx := pipe.Open(1)
//	go pipe.Produce(ctx, tx, pipe.ProducerConfig{First: 1, Last: 4, Delay: d})
//	report, err := pipe.Drain(ctx, rx, func(m pipe.Message) { ... })
//
// Backpressure: when the buffer is full Send blocks the producer until the
// consumer catches up, the receive end is closed, or the context ends.
// Messages are never dropped while the receiver is reachable.
package pipe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/marcodamonte/trainings/internal/metrics"
)

// Message is one produced value.
type Message int

// Sentinel errors returned by the pipe.
var (
	// ErrClosed reports that the sender is closed and every queued message
	// has been received. It is the normal end of the stream.
	ErrClosed = errors.New("pipe: closed")

	// ErrDisconnected reports a send after the receive end was closed.
	ErrDisconnected = errors.New("pipe: receiver disconnected")

	// ErrSenderClosed reports a send after the sender itself was closed.
	ErrSenderClosed = errors.New("pipe: send on closed sender")
)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records sends, receives and send failures on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Sender is the send end of a pipe. It must have a single owner.
type Sender struct {
	ch   chan Message
	gone <-chan struct{} // closed by Receiver.Close

	// mu orders Close after in-flight sends so a send never hits a closed
	// channel.
	mu     sync.RWMutex
	closed bool

	opts options
}

// Receiver is the receive end of a pipe. It must have a single owner.
type Receiver struct {
	ch       <-chan Message
	gone     chan struct{}
	goneOnce sync.Once

	opts options
}

// Open creates a pipe with the given buffer capacity. A capacity of 0 makes
// every send wait for a matching receive; negative values are treated as 0.
func Open(capacity int, opts ...Option) (*Sender, *Receiver) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 0 {
		capacity = 0
	}

	ch := make(chan Message, capacity)
	gone := make(chan struct{})

	o.logger.Debug("pipe opened", zap.Int("capacity", capacity))

	return &Sender{ch: ch, gone: gone, opts: o},
		&Receiver{ch: ch, gone: gone, opts: o}
}

// Send enqueues v, blocking while the buffer is full.
//
// It returns ErrDisconnected if the receiver is closed before v is
// enqueued, ErrSenderClosed after Close, or the context error if ctx ends
// first. Sending never panics.
func (s *Sender) Send(ctx context.Context, v Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.opts.metrics.SendFailed(metrics.ReasonClosed)
		return ErrSenderClosed
	}

	// Prefer reporting a gone receiver over filling a buffer nobody reads.
	select {
	case <-s.gone:
		s.opts.metrics.SendFailed(metrics.ReasonDisconnected)
		return ErrDisconnected
	default:
	}

	select {
	case s.ch <- v:
		s.opts.metrics.MessageSent()
		return nil
	case <-s.gone:
		s.opts.metrics.SendFailed(metrics.ReasonDisconnected)
		return ErrDisconnected
	case <-ctx.Done():
		s.opts.metrics.SendFailed(metrics.ReasonCancelled)
		return fmt.Errorf("send %d: %w", v, ctx.Err())
	}
}

// Close marks the end of the stream. Messages already queued are still
// delivered. Close is idempotent.
func (s *Sender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	s.opts.logger.Debug("pipe sender closed")
}

// Receive blocks until a message is available or the stream ends.
// It returns ErrClosed once the sender is closed and the buffer is drained,
// and also after the receiver itself has been closed.
func (r *Receiver) Receive(ctx context.Context) (Message, error) {
	select {
	case <-r.gone:
		return 0, ErrClosed
	default:
	}

	select {
	case v, ok := <-r.ch:
		if !ok {
			return 0, ErrClosed
		}
		r.opts.metrics.MessageReceived()
		return v, nil
	case <-ctx.Done():
		return 0, fmt.Errorf("receive: %w", ctx.Err())
	}
}

// Close drops the receive end. Pending and future sends report
// ErrDisconnected. Close is idempotent.
func (r *Receiver) Close() {
	r.goneOnce.Do(func() {
		close(r.gone)
		r.opts.logger.Debug("pipe receiver closed")
	})
}
