package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragbase/internal/model"
)

type AssistantRepository struct {
	db *gorm.DB
}

func NewAssistantRepository(db *gorm.DB) *AssistantRepository {
	return &AssistantRepository{db: db}
}

func (r *AssistantRepository) Create(assistant *model.Assistant) error {
	if err := r.db.Create(assistant).Error; err != nil {
		return fmt.Errorf("create assistant failed: %w", err)
	}
	return nil
}

func (r *AssistantRepository) GetByIDAndTenantID(id, tenantID uint) (*model.Assistant, error) {
	var assistant model.Assistant
	if err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&assistant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assistant failed: %w", err)
	}
	return &assistant, nil
}

// GetByPublicID resolves an assistant from its opaque public id. This is the
// only lookup path the public chat endpoint uses.
func (r *AssistantRepository) GetByPublicID(publicID string) (*model.Assistant, error) {
	var assistant model.Assistant
	if err := r.db.Where("public_id = ?", publicID).First(&assistant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assistant by public id failed: %w", err)
	}
	return &assistant, nil
}

func (r *AssistantRepository) ListByTenantID(tenantID uint) ([]model.Assistant, error) {
	var list []model.Assistant
	if err := r.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list assistants failed: %w", err)
	}
	return list, nil
}

func (r *AssistantRepository) Update(assistant *model.Assistant) error {
	if err := r.db.Save(assistant).Error; err != nil {
		return fmt.Errorf("update assistant failed: %w", err)
	}
	return nil
}

func (r *AssistantRepository) DeleteByIDAndTenantID(id, tenantID uint) error {
	if err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Assistant{}).Error; err != nil {
		return fmt.Errorf("delete assistant failed: %w", err)
	}
	return nil
}
