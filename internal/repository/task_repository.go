package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragbase/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(task *model.ProcessingTask) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("create processing task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(id string) (*model.ProcessingTask, error) {
	var task model.ProcessingTask
	if err := r.db.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get processing task failed: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) SetStatus(id, status, lastError string) error {
	updates := map[string]any{
		"status":     status,
		"last_error": lastError,
	}
	if err := r.db.Model(&model.ProcessingTask{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("set task status failed: %w", err)
	}
	return nil
}

// IncrementRetry bumps the retry counter the worker maintains on nack.
func (r *TaskRepository) IncrementRetry(id string) error {
	err := r.db.Model(&model.ProcessingTask{}).Where("id = ?", id).
		UpdateColumn("retry_count", gorm.Expr("retry_count + 1")).Error
	if err != nil {
		return fmt.Errorf("increment task retry failed: %w", err)
	}
	return nil
}
