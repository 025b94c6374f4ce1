package model

import (
	"encoding/json"
	"time"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// MessageSource is one cited chunk on an assistant message: a token-bounded
// snippet plus the retrieval relevance score.
type MessageSource struct {
	DocumentID uint    `json:"document_id"`
	Filename   string  `json:"filename"`
	Snippet    string  `json:"snippet"`
	Score      float32 `json:"score"`
}

// Message is one turn in a conversation. Sources is populated only on
// assistant-authored messages and stored as JSON text.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	Role           string    `gorm:"size:16;not null;index" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Sources        string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// SourceList returns the parsed citation list; nil on parse error.
func (m *Message) SourceList() []MessageSource {
	if m.Sources == "" {
		return nil
	}
	var sources []MessageSource
	_ = json.Unmarshal([]byte(m.Sources), &sources)
	return sources
}

// SetSourceList stores the citation list as JSON.
func (m *Message) SetSourceList(sources []MessageSource) {
	if len(sources) == 0 {
		m.Sources = "[]"
		return
	}
	b, _ := json.Marshal(sources)
	m.Sources = string(b)
}
