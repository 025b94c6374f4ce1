package model

import (
	"encoding/json"
	"time"
)

// Chunk stores a text fragment and its embedding for retrieval. Every chunk
// carries exactly one assistant id; that column backs the isolation filter
// applied on every query. Embedding and Metadata are stored as JSON text for
// portability across MySQL versions.
type Chunk struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AssistantID uint      `gorm:"not null;index" json:"assistant_id"`
	DocumentID  uint      `gorm:"not null;index" json:"document_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Embedding   string    `gorm:"type:text" json:"-"`
	Metadata    string    `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; nil on parse error.
func (c *Chunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *Chunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}

// MetadataMap returns the parsed metadata; empty map on parse error.
func (c *Chunk) MetadataMap() map[string]string {
	m := map[string]string{}
	if c.Metadata != "" {
		_ = json.Unmarshal([]byte(c.Metadata), &m)
	}
	return m
}

// SetMetadataMap stores the metadata map as JSON.
func (c *Chunk) SetMetadataMap(m map[string]string) {
	if len(m) == 0 {
		c.Metadata = "{}"
		return
	}
	b, _ := json.Marshal(m)
	c.Metadata = string(b)
}
