package ragconfig

import (
	"fmt"
)

// Store persists one configuration per assistant. Save must be an upsert
// keyed by assistant id.
type Store interface {
	Save(assistantID uint, raw string) error
	Get(assistantID uint) (string, bool, error)
	Delete(assistantID uint) error
	ListAll() (map[uint]string, error)
}

// Manager coordinates validation and persistence. A save is all-or-nothing:
// nothing is written unless validation passes.
type Manager struct {
	store     Store
	validator *Validator
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, validator: NewValidator()}
}

// Validate checks the configuration without persisting anything.
func (m *Manager) Validate(cfg Config, creds CredentialFlags) ValidationResult {
	return m.validator.Validate(cfg, creds)
}

// Save validates and, only when valid, upserts the configuration. The
// returned result carries the findings either way; err is non-nil only for
// storage failures.
func (m *Manager) Save(assistantID uint, cfg Config, creds CredentialFlags) (ValidationResult, error) {
	result := m.validator.Validate(cfg, creds)
	if !result.IsValid {
		return result, nil
	}

	cfg.Normalize()
	raw, err := cfg.ToJSON()
	if err != nil {
		return result, err
	}
	if err := m.store.Save(assistantID, raw); err != nil {
		return result, fmt.Errorf("save rag config failed: %w", err)
	}
	return result, nil
}

// Get returns the assistant's configuration, falling back to the defaults
// when none was ever saved.
func (m *Manager) Get(assistantID uint) (Config, error) {
	raw, found, err := m.store.Get(assistantID)
	if err != nil {
		return Config{}, fmt.Errorf("get rag config failed: %w", err)
	}
	if !found {
		return Default(), nil
	}
	return FromJSON(raw)
}

// Delete removes the assistant's configuration row if present.
func (m *Manager) Delete(assistantID uint) error {
	return m.store.Delete(assistantID)
}

// ListAll returns every stored configuration keyed by assistant id.
func (m *Manager) ListAll() (map[uint]Config, error) {
	rows, err := m.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list rag configs failed: %w", err)
	}
	configs := make(map[uint]Config, len(rows))
	for id, raw := range rows {
		cfg, err := FromJSON(raw)
		if err != nil {
			return nil, err
		}
		configs[id] = cfg
	}
	return configs, nil
}
