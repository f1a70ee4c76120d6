// Package tour runs the training samples in order and prints their output.
package tour

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcodamonte/trainings/internal/basics"
	"github.com/marcodamonte/trainings/internal/config"
	"github.com/marcodamonte/trainings/internal/counter"
	"github.com/marcodamonte/trainings/internal/fridge"
	"github.com/marcodamonte/trainings/internal/metrics"
	"github.com/marcodamonte/trainings/internal/pipe"
)

// Tour prints every sample to one writer. Only the calling goroutine writes
// to it, so the output order is the call order.
type Tour struct {
	cfg     config.Config
	out     io.Writer
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a tour. A nil logger disables logging; nil metrics disable
// instrumentation. Every tour gets its own run_id log field.
func New(cfg config.Config, out io.Writer, logger *zap.Logger, m *metrics.Metrics) *Tour {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tour{
		cfg:     cfg,
		out:     out,
		logger:  logger.With(zap.String("run_id", uuid.NewString())),
		metrics: m,
	}
}

// Concurrency runs the pipe and then the counter pool.
func (t *Tour) Concurrency(ctx context.Context) error {
	if _, err := t.Pipe(ctx); err != nil {
		return err
	}
	_, err := t.Counter()
	return err
}

// Pipe starts one producer, drains the pipe and prints every message.
func (t *Tour) Pipe(ctx context.Context) (pipe.Report, error) {
	cfg := t.cfg.Pipe
	logger := t.logger.Named("pipe")

	tx, rx := pipe.Open(cfg.Capacity, pipe.WithLogger(logger), pipe.WithMetrics(t.metrics))
	defer rx.Close()

	errc := make(chan error, 1)
	go func() {
		errc <- pipe.Produce(ctx, tx, pipe.ProducerConfig{
			First:  pipe.Message(cfg.First),
			Last:   pipe.Message(cfg.Last),
			Delay:  cfg.Delay,
			Logger: logger,
		})
	}()

	report, err := pipe.Drain(ctx, rx, func(m pipe.Message) {
		fmt.Fprintf(t.out, "Received: %d\n", m)
	})
	if err != nil {
		// Unblock the producer before waiting for it.
		rx.Close()
		<-errc
		return report, fmt.Errorf("pipe consumer: %w", err)
	}
	if err := <-errc; err != nil {
		return report, fmt.Errorf("pipe producer: %w", err)
	}

	logger.Info("pipe drained",
		zap.Int("messages", len(report.Values)),
		zap.Duration("mean_gap", report.MeanGap()),
		zap.Duration("gap_stddev", report.GapStdDev()),
	)
	return report, nil
}

// Counter spawns the increment workers, joins them and prints the final
// value. Any worker failure is returned and nothing is printed.
func (t *Tour) Counter() (int, error) {
	cfg := t.cfg.Counter
	logger := t.logger.Named("counter")

	opts := []counter.Option{
		counter.WithLogger(logger),
		counter.WithMetrics(t.metrics),
	}
	if cfg.PanicWorker >= 0 {
		culprit := cfg.PanicWorker
		opts = append(opts, counter.WithHook(func(worker int) {
			if worker == culprit {
				panic(fmt.Sprintf("injected failure in worker %d", worker))
			}
		}))
	}

	c := counter.New()
	handles := counter.SpawnIncrementWorkers(c, cfg.Workers, opts...)
	if err := counter.JoinAll(handles); err != nil {
		return 0, fmt.Errorf("counter pool: %w", err)
	}

	v, err := c.Read()
	if err != nil {
		return 0, fmt.Errorf("counter pool: %w", err)
	}

	fmt.Fprintf(t.out, "Final counter value: %d\n", v)
	logger.Info("counter joined", zap.Int("workers", cfg.Workers), zap.Int("value", v))
	return v, nil
}

// Helloworld runs every sample, one section each, ending with the
// concurrency pair.
func (t *Tour) Helloworld(ctx context.Context) error {
	t.section("Foundations")
	basics.Foundations(t.out)

	t.section("Core concepts")
	basics.CoreConcepts(t.out)

	t.section("Values and pointers")
	basics.ValuesAndPointers(t.out)
	fmt.Fprintln(t.out, "Longer string:", basics.Longer("short", "longer"))
	basics.HolderExample(t.out)

	t.section("Enums")
	basics.Enums(t.out)

	t.section("Math")
	fmt.Fprintln(t.out, "Sum:", basics.Add(5, 10))

	t.section("Errors")
	if err := basics.ErrorsAndResults(t.out); err != nil {
		fmt.Fprintln(t.out, "Error:", err)
	}

	t.section("Iterators")
	basics.Iterators(t.out)

	t.section("Generics")
	var p basics.Printable = basics.NewPoint(3, 4)
	p.Print(t.out)

	t.section("Structs")
	basics.Structs(t.out)

	t.section("Interfaces")
	basics.Traits(t.out)
	basics.AdvancedTraits(t.out)

	t.section("Generic arithmetic")
	basics.Calculate(t.out, 10, 5, basics.Plus)
	basics.Calculate(t.out, 10, 5, basics.Times)

	t.section("Comma-ok lookups")
	for _, hour := range []uint16{9, 22, 25} {
		if scoops, ok := fridge.MaybeIcecream(hour); ok {
			fmt.Fprintf(t.out, "Icecream at %02d:00: %d scoops\n", hour, scoops)
		} else {
			fmt.Fprintf(t.out, "Icecream at %02d:00: not a valid hour\n", hour)
		}
	}

	t.section("Async")
	if err := basics.AsyncExample(ctx, t.out, t.cfg.Async.Delay); err != nil {
		return err
	}

	t.section("Channels")
	if _, err := t.Pipe(ctx); err != nil {
		return err
	}

	t.section("Mutex")
	_, err := t.Counter()
	return err
}

func (t *Tour) section(title string) {
	fmt.Fprintf(t.out, "\n━━━ %s ━━━\n", title)
}
