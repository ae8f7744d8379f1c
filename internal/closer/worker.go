package closer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/domain"
)

// JobRunner executes one close job to completion or failure.
type JobRunner interface {
	Run(ctx context.Context, job domain.CloseJob) error
}

// Worker is the queue's single consumer. Exactly one job is in flight
// at any instant for the whole process; a failed job is logged and
// dropped, never retried, and never stops the loop.
type Worker struct {
	queue  *Queue
	runner JobRunner
	pause  time.Duration
	logger *zap.Logger

	startOnce sync.Once
}

// NewWorker creates the worker. pause throttles the remote store
// between jobs.
func NewWorker(queue *Queue, runner JobRunner, pause time.Duration, logger *zap.Logger) *Worker {
	return &Worker{queue: queue, runner: runner, pause: pause, logger: logger}
}

// Start launches the consumer goroutine once; later calls are no-ops.
func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		go w.loop(ctx)
	})
}

func (w *Worker) loop(ctx context.Context) {
	go func() {
		<-ctx.Done()
		w.queue.wake()
	}()
	w.logger.Info("close worker started")

	for {
		job, ok := w.queue.Dequeue(ctx.Done())
		if !ok {
			w.logger.Info("close worker stopped")
			return
		}
		w.process(ctx, job)

		select {
		case <-ctx.Done():
			w.logger.Info("close worker stopped")
			return
		case <-time.After(w.pause):
		}
	}
}

// process isolates one job: any error or panic is logged and the
// worker proceeds to the next job.
func (w *Worker) process(ctx context.Context, job domain.CloseJob) {
	defer w.queue.Finish()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("close job panicked",
				zap.String("job_id", job.ID),
				zap.String("channel", job.ChannelName),
				zap.Any("panic", r))
		}
	}()

	w.logger.Info("processing close job",
		zap.String("job_id", job.ID),
		zap.String("channel", job.ChannelName),
		zap.Int("remaining", w.queue.Len()))

	if err := w.runner.Run(ctx, job); err != nil {
		w.logger.Error("close job failed",
			zap.String("job_id", job.ID),
			zap.String("channel", job.ChannelName),
			zap.Error(err))
	}
}
