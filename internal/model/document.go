package model

import (
	"encoding/json"
	"time"
)

// Document lifecycle statuses. A document never stays in processing: each
// ingestion run terminates in indexed or error.
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusIndexed    = "indexed"
	DocumentStatusError      = "error"
)

// Document is a tenant+assistant scoped source file. MetadataMap carries
// bookkeeping such as chunk count and the chunking strategy used; ErrorMessage
// holds only a sanitized failure description.
type Document struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TenantID     uint      `gorm:"not null;index" json:"tenant_id"`
	AssistantID  uint      `gorm:"not null;index" json:"assistant_id"`
	Filename     string    `gorm:"size:256;not null" json:"filename"`
	Status       string    `gorm:"size:16;not null;index" json:"status"`
	MetadataMap  string    `gorm:"type:text" json:"-"`
	ErrorMessage string    `gorm:"size:512" json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Metadata returns the parsed metadata map; empty map on parse error.
func (d *Document) Metadata() map[string]any {
	m := map[string]any{}
	if d.MetadataMap != "" {
		_ = json.Unmarshal([]byte(d.MetadataMap), &m)
	}
	return m
}

// SetMetadata stores the metadata map as JSON.
func (d *Document) SetMetadata(m map[string]any) {
	if len(m) == 0 {
		d.MetadataMap = "{}"
		return
	}
	b, _ := json.Marshal(m)
	d.MetadataMap = string(b)
}
