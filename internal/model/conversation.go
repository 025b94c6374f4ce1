package model

import "time"

// Conversation is an ordered exchange between a visitor and one assistant.
// PublicID is the opaque id callers supply to continue a conversation.
type Conversation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AssistantID uint      `gorm:"not null;index" json:"assistant_id"`
	PublicID    string    `gorm:"size:36;not null;uniqueIndex" json:"public_id"`
	VisitorID   string    `gorm:"size:64" json:"visitor_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
