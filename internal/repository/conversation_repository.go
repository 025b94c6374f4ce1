package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragbase/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conversation *model.Conversation) error {
	if err := r.db.Create(conversation).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

// GetByPublicIDAndAssistantID resolves a caller-supplied conversation id,
// scoped to the assistant so one assistant's conversation id cannot continue
// another's thread.
func (r *ConversationRepository) GetByPublicIDAndAssistantID(publicID string, assistantID uint) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.Where("public_id = ? AND assistant_id = ?", publicID, assistantID).First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

func (r *ConversationRepository) AddMessage(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListRecentMessages returns the latest limit messages in chronological
// order.
func (r *ConversationRepository) ListRecentMessages(conversationID uint, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 20
	}
	var messages []model.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
