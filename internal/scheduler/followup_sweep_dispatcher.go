package scheduler

import (
	"context"
	"time"

	"calltrack_backend/platform/config"
	"calltrack_backend/platform/logger"
)

// FollowupSweepDispatcher enqueues a sweep task on a fixed interval. The
// sweep itself is a single idempotent update, so an extra enqueue from an
// overlapping dispatcher replica is harmless.
type FollowupSweepDispatcher struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

func NewFollowupSweepDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*FollowupSweepDispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetFollowupSweepInterval()
	if interval <= 0 {
		interval = time.Minute
	}

	return &FollowupSweepDispatcher{
		client:   client,
		interval: interval,
		log:      log,
	}, nil
}

func (d *FollowupSweepDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *FollowupSweepDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := d.client.EnqueueFollowupSweep(ctx, FollowupSweepPayload{RequestedAt: time.Now()})
		if err != nil {
			d.log.Warn("followup sweep enqueue failed", "error", err)
		}
	}
}
