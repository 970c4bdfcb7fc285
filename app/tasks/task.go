package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeCollectEvents      TaskType = "collect_events"
	TaskTypeRefilterEvents     TaskType = "refilter_events"
	TaskTypeSyncProviderConfig TaskType = "sync_provider_config"
)

// DefaultMaxAttempts is the first run plus three retries.
const DefaultMaxAttempts = 4

// TaskInterface is a unit of work for the scheduler. Meta exposes the
// bookkeeping embedded through Task.
type TaskInterface interface {
	Execute(ctx context.Context) error
	Meta() *Task
}

type Task struct {
	ID           string
	Type         TaskType
	ProviderName string
	Attempts     int
	MaxAttempts  int
	startedAt    time.Time
}

func NewTask(taskType TaskType, providerName string) Task {
	return Task{
		ID:           uuid.NewString(),
		Type:         taskType,
		ProviderName: providerName,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

func (t *Task) Meta() *Task {
	return t
}

// begin counts a new attempt and restarts the elapsed clock.
func (t *Task) begin() {
	t.Attempts++
	t.startedAt = time.Now()
}

// Elapsed is the time spent in the current attempt.
func (t *Task) Elapsed() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	return time.Since(t.startedAt)
}

func (t *Task) retryable() bool {
	return t.Attempts < t.MaxAttempts
}

// logAttrs identifies the task in log lines.
func (t *Task) logAttrs() []any {
	return []any{"type", string(t.Type), "provider", t.ProviderName, "id", t.ID, "attempt", t.Attempts}
}
