package tour

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/marcodamonte/trainings/internal/config"
	"github.com/marcodamonte/trainings/internal/logging"
	"github.com/marcodamonte/trainings/internal/metrics"
)

// Exit codes returned by Run.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitConfig = 2
)

// Run wires configuration, logging, metrics and signal handling around fn
// and returns the process exit code. Samples print to stdout; diagnostics go
// to stderr.
func Run(stdout, stderr io.Writer, fn func(context.Context, *Tour) error) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return ExitConfig
	}

	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintln(stderr, "logging:", err)
		return ExitConfig
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	t := New(*cfg, stdout, logger, metrics.New(reg))

	runErr := fn(ctx, t)
	logSummary(t.logger, reg)

	if runErr != nil {
		t.logger.Error("run failed", zap.Error(runErr))
		fmt.Fprintln(stderr, "error:", runErr)
		return ExitFailed
	}
	return ExitOK
}

func logSummary(logger *zap.Logger, g prometheus.Gatherer) {
	samples, err := metrics.Snapshot(g)
	if err != nil {
		logger.Warn("metrics gather failed", zap.Error(err))
		return
	}

	fields := make([]zap.Field, 0, len(samples))
	for _, s := range samples {
		key := s.Name
		for _, v := range s.Labels {
			key += "." + v
		}
		fields = append(fields, zap.Float64(key, s.Value))
	}
	logger.Info("metrics", fields...)
}
