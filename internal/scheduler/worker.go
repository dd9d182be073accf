package scheduler

import (
	"context"
	"fmt"

	followuptransport "calltrack_backend/internal/followups/transport"
	"calltrack_backend/platform/config"
	"calltrack_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Sweeper runs one missed-followup sweep.
type Sweeper interface {
	SweepMissed(ctx context.Context) (*followuptransport.SweepResult, error)
}

// Worker consumes background tasks off the queue.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper Sweeper
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper Sweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		sweeper: sweeper,
		log:     log,
	}

	mux.HandleFunc(TaskFollowupSweep, w.handleFollowupSweep)

	return w, nil
}

func (w *Worker) handleFollowupSweep(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseFollowupSweepPayload(task); err != nil {
		return err
	}

	result, err := w.sweeper.SweepMissed(ctx)
	if err != nil {
		return err
	}

	w.log.FollowupSweep(result.Marked)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
