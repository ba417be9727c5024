package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
	"github.com/joseph-ayodele/label-approvals/internal/common"
	"github.com/joseph-ayodele/label-approvals/internal/entity"
)

// Analyzer is the job service entry point the workers call.
type Analyzer interface {
	Analyze(ctx context.Context, id uuid.UUID, override *constants.AnalysisMode) (*entity.Job, error)
}

// AnalysisQueue runs job analyses on a fixed pool of workers fed by a bounded channel.
type AnalysisQueue struct {
	analyzer Analyzer
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan Task
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*AnalysisQueue)

func WithWorkers(n int) Option {
	return func(q *AnalysisQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *AnalysisQueue) {
		if n > 0 {
			q.ch = make(chan Task, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *AnalysisQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewAnalysisQueue(analyzer Analyzer, logger *slog.Logger, opts ...Option) *AnalysisQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &AnalysisQueue{
		analyzer: analyzer,
		logger:   logger,
		workers:  4,
		timeout:  3 * time.Minute,
		ch:       make(chan Task, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *AnalysisQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *AnalysisQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Info("worker started", "worker_id", workerID)

	for task := range q.ch {
		queueDepth.Dec()
		queueActive.Inc()
		start := time.Now()

		base := common.WithJobID(context.Background(), task.JobID.String())
		if task.TraceID != "" {
			base = common.WithRequestID(base, task.TraceID)
		}
		ctx, cancel := context.WithTimeout(base, q.timeout)
		job, err := q.analyzer.Analyze(ctx, task.JobID, task.Mode)
		cancel()
		queueActive.Dec()

		if err != nil {
			tasksProcessed.WithLabelValues("failed").Inc()
			q.logger.Error("analysis task failed", "worker_id", workerID, "job_id", task.JobID, "error", err)
			continue
		}
		analyzed := len(job.Metadata.LabelImages) > 0 && job.Metadata.LabelImages[0].AnalysisResult != nil
		tasksProcessed.WithLabelValues("ok").Inc()
		q.logger.Info("analysis task done",
			"worker_id", workerID,
			"job_id", task.JobID,
			"analyzed", analyzed,
			"wait_ms", start.Sub(task.SubmittedAt).Milliseconds(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}

	q.logger.Info("worker stopped", "worker_id", workerID)
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *AnalysisQueue) Enqueue(ctx context.Context, task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", task.JobID)
		tasksRejected.Inc()
		return ErrQueueClosed
	}
	if task.SubmittedAt.IsZero() {
		task.SubmittedAt = time.Now()
	}
	queueDepth.Inc()
	select {
	case q.ch <- task:
	default:
		q.logger.Warn("queue full, applying backpressure", "job_id", task.JobID)
		select {
		case q.ch <- task:
		case <-ctx.Done():
			queueDepth.Dec()
			tasksRejected.Inc()
			return ctx.Err()
		}
	}
	q.logger.Info("queued job for analysis", "job_id", task.JobID, "mode", task.Mode)
	return nil
}

// Schedule lets the queue stand in as the job service's scheduler.
func (q *AnalysisQueue) Schedule(ctx context.Context, jobID uuid.UUID, mode *constants.AnalysisMode) error {
	return q.Enqueue(ctx, Task{JobID: jobID, Mode: mode, TraceID: common.RequestIDFromContext(ctx)})
}

// Shutdown stops accepting tasks and waits for queued ones to finish or ctx to end.
func (q *AnalysisQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
