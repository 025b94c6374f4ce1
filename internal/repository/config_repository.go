package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ragbase/internal/model"
)

// ConfigRepository persists assistant retrieval configurations. It satisfies
// ragconfig.Store; Save is an upsert so at most one row exists per assistant.
type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Save(assistantID uint, raw string) error {
	row := model.AssistantConfig{AssistantID: assistantID, Config: raw}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assistant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert assistant config failed: %w", err)
	}
	return nil
}

func (r *ConfigRepository) Get(assistantID uint) (string, bool, error) {
	var row model.AssistantConfig
	if err := r.db.Where("assistant_id = ?", assistantID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get assistant config failed: %w", err)
	}
	return row.Config, true, nil
}

func (r *ConfigRepository) Delete(assistantID uint) error {
	if err := r.db.Where("assistant_id = ?", assistantID).Delete(&model.AssistantConfig{}).Error; err != nil {
		return fmt.Errorf("delete assistant config failed: %w", err)
	}
	return nil
}

func (r *ConfigRepository) ListAll() (map[uint]string, error) {
	var rows []model.AssistantConfig
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list assistant configs failed: %w", err)
	}
	configs := make(map[uint]string, len(rows))
	for _, row := range rows {
		configs[row.AssistantID] = row.Config
	}
	return configs, nil
}
