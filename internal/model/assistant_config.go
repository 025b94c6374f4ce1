package model

import "time"

// AssistantConfig is the persisted retrieval configuration row. At most one
// row exists per assistant; saves are upserts and only happen after the
// configuration validated cleanly. Config holds the RAG configuration JSON
// wire shape.
type AssistantConfig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AssistantID uint      `gorm:"not null;uniqueIndex" json:"assistant_id"`
	Config      string    `gorm:"type:text;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
