package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type WorkerConfig struct {
	RedisOpt    asynq.RedisClientOpt
	Concurrency int
	// ScanCron registers TaskLowStockScan on the scheduler when not empty.
	ScanCron string
	LowStock *LowStockHandler
}

// Worker wraps the asynq server and its optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.LowStock == nil {
		return nil, errors.New("jobs: low stock handler is required")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	srv := asynq.NewServer(cfg.RedisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueDefault: 1},
		Logger:      zap.S(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			zap.L().Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLowStockAlert, cfg.LowStock.HandleAlert)
	mux.HandleFunc(TaskLowStockScan, cfg.LowStock.HandleScan)

	var scheduler *asynq.Scheduler
	if cfg.ScanCron != "" {
		scheduler = asynq.NewScheduler(cfg.RedisOpt, &asynq.SchedulerOpts{Location: time.UTC, Logger: zap.S()})
		if _, err := scheduler.Register(cfg.ScanCron, NewLowStockScanTask()); err != nil {
			return nil, fmt.Errorf("scheduler.Register -> %w", err)
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler}, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("w.scheduler.Start -> %w", err)
		}
		defer w.scheduler.Shutdown()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return nil
	case err := <-errCh:
		return err
	}
}
