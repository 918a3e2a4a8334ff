package service

import (
	"context"
	"time"
)

// Sweeper actively removes expired remembered decisions. Lookups already
// ignore them; sweeping only reclaims space.
type Sweeper struct {
	store MemoryStore
	options
}

func NewSweeper(store MemoryStore, opts ...Option) *Sweeper {
	return &Sweeper{store: store, options: newOptions(opts)}
}

// SweepOnce purges expired records and returns how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	n, err := s.store.Purge(ctx)
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.AddPurged(n)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "purged expired consent memory", "count", n)
	}
	return n, nil
}

// StartCleanup sweeps on every tick until ctx is done. A failed sweep is
// logged and retried on the next tick.
func (s *Sweeper) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.WarnContext(ctx, "consent memory sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
