package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragbase/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) GetByIDAndTenantID(id, tenantID uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByAssistantID(assistantID uint) ([]model.Document, error) {
	var list []model.Document
	if err := r.db.Where("assistant_id = ?", assistantID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return list, nil
}

// SetStatus transitions the document's lifecycle state.
func (r *DocumentRepository) SetStatus(id uint, status string) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return fmt.Errorf("set document status failed: %w", err)
	}
	return nil
}

// SetIndexed records the terminal success state with its bookkeeping
// metadata.
func (r *DocumentRepository) SetIndexed(id uint, metadataJSON string) error {
	updates := map[string]any{
		"status":        model.DocumentStatusIndexed,
		"metadata_map":  metadataJSON,
		"error_message": "",
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("set document indexed failed: %w", err)
	}
	return nil
}

// SetError records the terminal failure state with a sanitized message.
func (r *DocumentRepository) SetError(id uint, message string) error {
	updates := map[string]any{
		"status":        model.DocumentStatusError,
		"error_message": message,
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("set document error failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Document{}, id).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
