package app

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"ragbase/internal/model"
	"ragbase/internal/ragconfig"
)

var ErrAssistantNotFound = errors.New("assistant not found")

type AssistantService struct {
	assistantRepo AssistantStore
	tenantRepo    TenantStore
	configs       *ragconfig.Manager
}

type CreateAssistantInput struct {
	TenantID     uint
	Name         string
	SystemPrompt string
}

type UpdateAssistantInput struct {
	TenantID     uint
	AssistantID  uint
	Name         string
	SystemPrompt string
}

func NewAssistantService(
	assistantRepo AssistantStore,
	tenantRepo TenantStore,
	configs *ragconfig.Manager,
) *AssistantService {
	return &AssistantService{
		assistantRepo: assistantRepo,
		tenantRepo:    tenantRepo,
		configs:       configs,
	}
}

func (s *AssistantService) Create(input CreateAssistantInput) (*model.Assistant, error) {
	name := strings.TrimSpace(input.Name)
	if input.TenantID == 0 || name == "" {
		return nil, ErrInvalidInput
	}
	assistant := &model.Assistant{
		TenantID:     input.TenantID,
		PublicID:     uuid.NewString(),
		Name:         name,
		SystemPrompt: strings.TrimSpace(input.SystemPrompt),
	}
	if err := s.assistantRepo.Create(assistant); err != nil {
		return nil, err
	}
	return assistant, nil
}

func (s *AssistantService) Get(tenantID, assistantID uint) (*model.Assistant, error) {
	if tenantID == 0 || assistantID == 0 {
		return nil, ErrInvalidInput
	}
	assistant, err := s.assistantRepo.GetByIDAndTenantID(assistantID, tenantID)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, ErrAssistantNotFound
	}
	return assistant, nil
}

func (s *AssistantService) List(tenantID uint) ([]model.Assistant, error) {
	if tenantID == 0 {
		return nil, ErrInvalidInput
	}
	return s.assistantRepo.ListByTenantID(tenantID)
}

func (s *AssistantService) Update(input UpdateAssistantInput) (*model.Assistant, error) {
	assistant, err := s.Get(input.TenantID, input.AssistantID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		assistant.Name = name
	}
	assistant.SystemPrompt = strings.TrimSpace(input.SystemPrompt)
	if err := s.assistantRepo.Update(assistant); err != nil {
		return nil, err
	}
	return assistant, nil
}

func (s *AssistantService) Delete(tenantID, assistantID uint) error {
	if _, err := s.Get(tenantID, assistantID); err != nil {
		return err
	}
	if err := s.configs.Delete(assistantID); err != nil {
		return err
	}
	return s.assistantRepo.DeleteByIDAndTenantID(assistantID, tenantID)
}

// GetConfig returns the assistant's retrieval configuration, falling back to
// the baseline when none has been saved.
func (s *AssistantService) GetConfig(tenantID, assistantID uint) (ragconfig.Config, error) {
	if _, err := s.Get(tenantID, assistantID); err != nil {
		return ragconfig.Config{}, err
	}
	return s.configs.Get(assistantID)
}

// ValidateConfig runs the validator against the tenant's stored credential
// presence without persisting anything.
func (s *AssistantService) ValidateConfig(tenantID, assistantID uint, cfg ragconfig.Config) (ragconfig.ValidationResult, error) {
	if _, err := s.Get(tenantID, assistantID); err != nil {
		return ragconfig.ValidationResult{}, err
	}
	creds, err := s.credentialFlags(tenantID)
	if err != nil {
		return ragconfig.ValidationResult{}, err
	}
	return s.configs.Validate(cfg, creds), nil
}

// SaveConfig validates and, only when valid, persists the configuration. The
// validation result is returned either way so callers can surface warnings.
func (s *AssistantService) SaveConfig(tenantID, assistantID uint, cfg ragconfig.Config) (ragconfig.ValidationResult, error) {
	if _, err := s.Get(tenantID, assistantID); err != nil {
		return ragconfig.ValidationResult{}, err
	}
	creds, err := s.credentialFlags(tenantID)
	if err != nil {
		return ragconfig.ValidationResult{}, err
	}
	return s.configs.Save(assistantID, cfg, creds)
}

func (s *AssistantService) credentialFlags(tenantID uint) (ragconfig.CredentialFlags, error) {
	tenant, err := s.tenantRepo.GetByID(tenantID)
	if err != nil {
		return ragconfig.CredentialFlags{}, err
	}
	if tenant == nil {
		return ragconfig.CredentialFlags{}, ErrInvalidInput
	}
	return ragconfig.CredentialFlags{
		HasEmbeddingKey: tenant.HasOpenAIKey(),
		HasLLMKey:       tenant.HasOpenAIKey(),
		HasParseKey:     tenant.HasParseKey(),
	}, nil
}
