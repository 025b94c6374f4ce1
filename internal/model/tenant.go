package model

import "time"

// Tenant is the top-level isolation and billing boundary. Provider credentials
// are sealed at rest and only ever checked for presence outside the provider
// clients themselves.
type Tenant struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:128;not null" json:"name"`
	Email           string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash    string    `gorm:"size:255;not null" json:"-"`
	SealedParseKey  string    `gorm:"type:text" json:"-"`
	SealedOpenAIKey string    `gorm:"type:text" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasParseKey reports presence of the parsing credential without unsealing it.
func (t *Tenant) HasParseKey() bool { return t.SealedParseKey != "" }

// HasOpenAIKey reports presence of the embedding/generation credential without
// unsealing it.
func (t *Tenant) HasOpenAIKey() bool { return t.SealedOpenAIKey != "" }
