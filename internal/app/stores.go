package app

import "ragbase/internal/model"

// Persistence contracts consumed by the services. The gorm repositories
// satisfy these; tests substitute in-memory fakes.

type TenantStore interface {
	Create(tenant *model.Tenant) error
	GetByID(id uint) (*model.Tenant, error)
	GetByEmail(email string) (*model.Tenant, error)
	UpdateCredentials(id uint, sealedParseKey, sealedOpenAIKey string) error
}

type AssistantStore interface {
	Create(assistant *model.Assistant) error
	GetByIDAndTenantID(id, tenantID uint) (*model.Assistant, error)
	GetByPublicID(publicID string) (*model.Assistant, error)
	ListByTenantID(tenantID uint) ([]model.Assistant, error)
	Update(assistant *model.Assistant) error
	DeleteByIDAndTenantID(id, tenantID uint) error
}

type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id uint) (*model.Document, error)
	GetByIDAndTenantID(id, tenantID uint) (*model.Document, error)
	ListByAssistantID(assistantID uint) ([]model.Document, error)
	SetStatus(id uint, status string) error
	SetIndexed(id uint, metadataJSON string) error
	SetError(id uint, message string) error
	Delete(id uint) error
}

type ConversationStore interface {
	Create(conversation *model.Conversation) error
	GetByPublicIDAndAssistantID(publicID string, assistantID uint) (*model.Conversation, error)
	AddMessage(message *model.Message) error
	ListRecentMessages(conversationID uint, limit int) ([]model.Message, error)
}
