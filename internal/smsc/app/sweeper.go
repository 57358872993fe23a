package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SweepRunner is the redelivery entry point driven by the Sweeper.
type SweepRunner interface {
	Sweep(ctx context.Context) SweepResult
}

// Sweeper triggers redelivery sweeps at a fixed interval.
type Sweeper struct {
	runner   SweepRunner
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper ticking every interval. The interval must be
// positive.
func NewSweeper(runner SweepRunner, interval time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	return &Sweeper{
		runner:   runner,
		interval: interval,
		logger:   logger.With("component", "sweeper"),
	}, nil
}

// Run sweeps on every tick until ctx is done. A sweep in progress always
// runs to completion. Run returns ctx.Err().
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting redelivery sweeper", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			result := s.runner.Sweep(context.WithoutCancel(ctx))
			if result.Attempted > 0 {
				s.logger.DebugContext(ctx, "Sweep tick", "attempted", result.Attempted, "delivered", result.Delivered, "remaining", result.Remaining)
			}
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Redelivery sweeper stopping", "error", ctx.Err())
			return ctx.Err()
		}
	}
}
