package model

import "time"

// Assistant is one configured knowledge-base/chat instance scoped to a tenant.
// PublicID is the opaque identifier exposed to embedding widgets; the internal
// ID is the canonical scoping key tagged onto every chunk.
type Assistant struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TenantID     uint      `gorm:"not null;index" json:"tenant_id"`
	PublicID     string    `gorm:"size:36;not null;uniqueIndex" json:"public_id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	SystemPrompt string    `gorm:"type:text" json:"system_prompt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
