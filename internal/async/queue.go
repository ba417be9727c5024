package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-approvals/constants"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("analysis queue is shutting down")

// Task asks for one job to be analyzed. A nil Mode keeps the job's stored mode.
// TraceID carries the submitting request id into the worker's logs.
type Task struct {
	JobID       uuid.UUID
	Mode        *constants.AnalysisMode
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Shutdown(ctx context.Context)
}
