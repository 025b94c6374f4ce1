package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragbase/internal/model"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(tenant *model.Tenant) error {
	if err := r.db.Create(tenant).Error; err != nil {
		return fmt.Errorf("create tenant failed: %w", err)
	}
	return nil
}

func (r *TenantRepository) GetByID(id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.First(&tenant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant failed: %w", err)
	}
	return &tenant, nil
}

func (r *TenantRepository) GetByEmail(email string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.Where("email = ?", email).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant by email failed: %w", err)
	}
	return &tenant, nil
}

// UpdateCredentials overwrites the sealed provider credentials. Empty values
// clear the credential.
func (r *TenantRepository) UpdateCredentials(id uint, sealedParseKey, sealedOpenAIKey string) error {
	updates := map[string]any{
		"sealed_parse_key":   sealedParseKey,
		"sealed_open_ai_key": sealedOpenAIKey,
	}
	if err := r.db.Model(&model.Tenant{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update tenant credentials failed: %w", err)
	}
	return nil
}
