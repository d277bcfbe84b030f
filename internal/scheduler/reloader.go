package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/metrics"
	"github.com/hamed0406/statuspage/internal/targets"
)

// Reloader refreshes the registry from the services file. A failed load
// leaves the registry untouched.
type Reloader struct {
	Logger  *zap.Logger
	Targets *targets.Registry
	Metrics *metrics.Metrics
	Load    func() ([]domain.Target, error)
}

func NewReloader(logger *zap.Logger, reg *targets.Registry, m *metrics.Metrics, path string) *Reloader {
	return &Reloader{
		Logger:  logger,
		Targets: reg,
		Metrics: m,
		Load:    func() ([]domain.Target, error) { return targets.LoadFile(path) },
	}
}

func (r *Reloader) Reload(ctx context.Context) error {
	ts, err := r.Load()
	if err != nil {
		r.Metrics.Reloads.WithLabelValues("error").Inc()
		r.Logger.Error("targets_reload_failed",
			zap.Int("kept_targets", r.Targets.Len()),
			zap.Error(err),
		)
		return err
	}
	r.Targets.Replace(ts)
	r.Metrics.Reloads.WithLabelValues("ok").Inc()
	r.Metrics.Targets.Set(float64(len(ts)))
	r.Logger.Info("targets_reloaded", zap.Int("targets", len(ts)))
	return nil
}
