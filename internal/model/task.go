package model

import "time"

// Processing task statuses. Retry is the queue's concern: the core only
// produces tasks and records the retry counter the worker maintains.
const (
	TaskStatusQueued     = "queued"
	TaskStatusProcessing = "processing"
	TaskStatusDone       = "done"
	TaskStatusFailed     = "failed"
)

const TaskTypeDocumentIngest = "document_ingest"

// ProcessingTask is one queued unit of background work, keyed by a uuid so the
// id can be handed back to API callers for status polling.
type ProcessingTask struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Type       string    `gorm:"size:32;not null;index" json:"type"`
	Status     string    `gorm:"size:16;not null;index" json:"status"`
	Priority   int       `gorm:"not null;default:5" json:"priority"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries int       `gorm:"not null;default:3" json:"max_retries"`
	Payload    string    `gorm:"type:text" json:"-"`
	LastError  string    `gorm:"size:512" json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
