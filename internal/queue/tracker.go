package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"ragbase/internal/model"
	"ragbase/internal/repository"
)

const statusMirrorTTL = 24 * time.Hour

// Tracker maintains task status in MySQL and mirrors it into Redis. Redis
// failures only cost the fast path, so they are logged and swallowed.
type Tracker struct {
	tasks *repository.TaskRepository
	rdb   *redis.Client
}

func NewTracker(tasks *repository.TaskRepository, rdb *redis.Client) *Tracker {
	return &Tracker{tasks: tasks, rdb: rdb}
}

func (t *Tracker) MarkProcessing(ctx context.Context, taskID string) {
	t.set(ctx, taskID, model.TaskStatusProcessing, "")
}

func (t *Tracker) MarkDone(ctx context.Context, taskID string) {
	t.set(ctx, taskID, model.TaskStatusDone, "")
}

func (t *Tracker) MarkFailed(ctx context.Context, taskID, reason string) {
	t.set(ctx, taskID, model.TaskStatusFailed, reason)
}

// BumpRetry increments the task's retry counter and reports whether another
// attempt is still allowed.
func (t *Tracker) BumpRetry(ctx context.Context, taskID string) (bool, error) {
	if err := t.tasks.IncrementRetry(taskID); err != nil {
		return false, err
	}
	task, err := t.tasks.GetByID(taskID)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, fmt.Errorf("task %s not found", taskID)
	}
	return task.RetryCount < task.MaxRetries, nil
}

func (t *Tracker) Status(ctx context.Context, taskID string) (*model.ProcessingTask, error) {
	task, err := t.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}
	if t.rdb != nil {
		if status, err := t.rdb.Get(ctx, statusKey(taskID)).Result(); err == nil && status != "" {
			task.Status = status
		}
	}
	return task, nil
}

func (t *Tracker) set(ctx context.Context, taskID, status, reason string) {
	if err := t.tasks.SetStatus(taskID, status, reason); err != nil {
		log.Printf("set task %s status failed: %v", taskID, err)
	}
	t.mirror(ctx, taskID, status)
}

func (t *Tracker) mirror(ctx context.Context, taskID, status string) {
	if t.rdb == nil {
		return
	}
	if err := t.rdb.Set(ctx, statusKey(taskID), status, statusMirrorTTL).Err(); err != nil {
		log.Printf("mirror task %s status failed: %v", taskID, err)
	}
}

func statusKey(taskID string) string {
	return "task:status:" + taskID
}
