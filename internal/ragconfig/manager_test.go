package ragconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	configs map[uint]string
	saves   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{configs: map[uint]string{}}
}

func (s *memoryStore) Save(assistantID uint, raw string) error {
	s.saves++
	s.configs[assistantID] = raw
	return nil
}

func (s *memoryStore) Get(assistantID uint) (string, bool, error) {
	raw, ok := s.configs[assistantID]
	return raw, ok, nil
}

func (s *memoryStore) Delete(assistantID uint) error {
	delete(s.configs, assistantID)
	return nil
}

func (s *memoryStore) ListAll() (map[uint]string, error) {
	out := make(map[uint]string, len(s.configs))
	for k, v := range s.configs {
		out[k] = v
	}
	return out, nil
}

func TestManagerSavePersistsValidConfig(t *testing.T) {
	store := newMemoryStore()
	m := NewManager(store)

	result, err := m.Save(7, validConfig(), allCreds())

	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Equal(t, 1, store.saves)

	got, err := m.Get(7)
	require.NoError(t, err)
	assert.Equal(t, "tenant", got.LLM.APIKeyRef)
}

func TestManagerSaveRejectsInvalidConfigWithoutWriting(t *testing.T) {
	store := newMemoryStore()
	m := NewManager(store)

	cfg := validConfig()
	cfg.Chunking.ChunkOverlap = cfg.Chunking.ChunkSize

	result, err := m.Save(7, cfg, allCreds())

	require.NoError(t, err)
	require.False(t, result.IsValid)
	assert.Zero(t, store.saves)

	_, ok, err := store.Get(7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerGetFallsBackToDefault(t *testing.T) {
	m := NewManager(newMemoryStore())

	got, err := m.Get(42)

	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestManagerSaveNormalizesBeforePersisting(t *testing.T) {
	store := newMemoryStore()
	m := NewManager(store)

	cfg := validConfig()
	cfg.Retrieval.TopKFinal = 0

	result, err := m.Save(3, cfg, allCreds())
	require.NoError(t, err)
	require.True(t, result.IsValid)

	got, err := m.Get(3)
	require.NoError(t, err)
	assert.Equal(t, Default().Retrieval.TopKFinal, got.Retrieval.TopKFinal)
}
