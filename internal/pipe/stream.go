package pipe

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat"
)

// All returns the remaining messages as a lazy sequence. The sequence ends
// when the stream is closed or ctx ends; it cannot be restarted, since every
// value it yields has been consumed from the pipe.
func (r *Receiver) All(ctx context.Context) iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			v, err := r.Receive(ctx)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// ProducerConfig describes the sequence a producer emits.
type ProducerConfig struct {
	First, Last Message
	// Delay is the pause between two consecutive emissions. Zero disables
	// pacing.
	Delay  time.Duration
	Logger *zap.Logger
}

// Produce sends First..Last in order, waiting Delay between emissions, and
// closes tx on every return path. A context deadline shorter than Delay does
// not end the stream early: the producer sleeps until the deadline passes
// and then returns the context error.
func Produce(ctx context.Context, tx *Sender, cfg ProducerConfig) error {
	defer tx.Close()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Burst 1: the first emission is immediate, the next ones wait Delay.
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	pacer := rate.NewLimiter(limit, 1)

	if cfg.First > cfg.Last {
		return nil
	}
	// Stop on v == Last rather than v > Last so Last == MaxInt cannot wrap.
	for v := cfg.First; ; v++ {
		if err := pace(ctx, pacer); err != nil {
			logger.Warn("producer stopped", zap.Int("message", int(v)), zap.Error(err))
			return err
		}
		if err := tx.Send(ctx, v); err != nil {
			logger.Warn("producer stopped", zap.Int("message", int(v)), zap.Error(err))
			return err
		}
		logger.Debug("message sent", zap.Int("message", int(v)))
		if v == cfg.Last {
			return nil
		}
	}
}

// pace waits for the next token. Unlike rate.Limiter.Wait it never fails up
// front on a deadline; it sleeps until the token is due or ctx ends.
func pace(ctx context.Context, pacer *rate.Limiter) error {
	r := pacer.Reserve()
	d := r.Delay()
	if d == 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Report summarizes one drained stream.
type Report struct {
	Values []Message
	// Gaps holds the time between consecutive arrivals; len(Gaps) is
	// len(Values)-1 when at least one value arrived.
	Gaps []time.Duration
}

// MeanGap returns the mean inter-arrival time, or 0 with fewer than two
// values.
func (r Report) MeanGap() time.Duration {
	if len(r.Gaps) == 0 {
		return 0
	}
	return time.Duration(stat.Mean(r.gapSeconds(), nil) * float64(time.Second))
}

// GapStdDev returns the sample standard deviation of the inter-arrival
// times, or 0 with fewer than three values.
func (r Report) GapStdDev() time.Duration {
	if len(r.Gaps) < 2 {
		return 0
	}
	return time.Duration(stat.StdDev(r.gapSeconds(), nil) * float64(time.Second))
}

func (r Report) gapSeconds() []float64 {
	out := make([]float64, len(r.Gaps))
	for i, g := range r.Gaps {
		out[i] = g.Seconds()
	}
	return out
}

// Drain receives until the stream is closed, calling fn for each message in
// arrival order. Reaching the end of the stream is not an error.
func Drain(ctx context.Context, rx *Receiver, fn func(Message)) (Report, error) {
	var (
		report Report
		last   time.Time
	)

	for {
		v, err := rx.Receive(ctx)
		if errors.Is(err, ErrClosed) {
			return report, nil
		}
		if err != nil {
			return report, err
		}

		now := time.Now()
		if !last.IsZero() {
			report.Gaps = append(report.Gaps, now.Sub(last))
		}
		last = now

		report.Values = append(report.Values, v)
		if fn != nil {
			fn(v)
		}
	}
}
