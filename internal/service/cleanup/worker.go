package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pruner deletes stored tournaments older than the given number of days.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type Worker struct {
	pruner     Pruner
	interval   time.Duration
	daysToKeep int
	logger     *zap.Logger
}

func NewWorker(p Pruner, interval time.Duration, daysToKeep int, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{pruner: p, interval: interval, daysToKeep: daysToKeep, logger: logger}
}

// Start runs one cleanup right away and then every interval until ctx ends.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		w.RunOnce(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("cleanup worker stopped")
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
	w.logger.Info("cleanup worker started", zap.Duration("interval", w.interval), zap.Int("days_to_keep", w.daysToKeep))
}

func (w *Worker) RunOnce(ctx context.Context) int64 {
	deleted, err := w.pruner.DeleteOlderThan(ctx, w.daysToKeep)
	if err != nil {
		w.logger.Error("failed to prune tournaments", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		w.logger.Info("pruned old tournaments", zap.Int64("deleted", deleted))
	}
	return deleted
}
