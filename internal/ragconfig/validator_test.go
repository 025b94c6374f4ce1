package ragconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCreds() CredentialFlags {
	return CredentialFlags{HasEmbeddingKey: true, HasLLMKey: true, HasParseKey: true}
}

func validConfig() Config {
	cfg := Default()
	cfg.Embedding.APIKeyRef = "tenant"
	cfg.LLM.APIKeyRef = "tenant"
	return cfg
}

func TestValidateDefaultWithCredentials(t *testing.T) {
	v := NewValidator()
	result := v.Validate(validConfig(), allCreds())

	require.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, ImpactLow, result.PerformanceImpact)
	assert.Greater(t, result.EstimatedCost, 0.0)
}

func TestValidateLocalLLMRequiresLocalEmbedding(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = ProviderLocal
	cfg.Embedding.Provider = ProviderOpenAI

	result := NewValidator().Validate(cfg, allCreds())

	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "embedding.provider", result.Errors[0].Field)
	assert.Equal(t, "provider_mismatch", result.Errors[0].Code)
}

func TestValidateExternalLLMWithoutCredential(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = ProviderOpenAI
	cfg.LLM.APIKeyRef = ""

	result := NewValidator().Validate(cfg, allCreds())

	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "llm.api_key_ref", result.Errors[0].Field)
	assert.Equal(t, "missing_api_key", result.Errors[0].Code)
}

func TestValidateEmbeddingKeyMissingOnTenant(t *testing.T) {
	cfg := validConfig()
	creds := allCreds()
	creds.HasEmbeddingKey = false

	result := NewValidator().Validate(cfg, creds)

	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "embedding.api_key_ref", result.Errors[0].Field)
}

func TestValidateSemanticChunkingNeedsEmbeddingCredential(t *testing.T) {
	cfg := validConfig()
	cfg.Chunking.Strategy = ChunkingSemantic
	cfg.Embedding.APIKeyRef = ""
	creds := allCreds()
	creds.HasEmbeddingKey = false

	result := NewValidator().Validate(cfg, creds)

	require.False(t, result.IsValid)
	fields := make([]string, 0, len(result.Errors))
	for _, issue := range result.Errors {
		fields = append(fields, issue.Field)
	}
	assert.Contains(t, fields, "chunking.strategy")
	assert.Contains(t, fields, "embedding.api_key_ref")
}

func TestValidateChunkSizeExceedsMaxTokens(t *testing.T) {
	cfg := validConfig()
	cfg.Chunking.ChunkSize = 4096
	cfg.LLM.MaxTokens = 2048

	result := NewValidator().Validate(cfg, allCreds())

	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "chunking.chunk_size", result.Errors[0].Field)
	assert.Equal(t, "chunk_size_exceeds_limit", result.Errors[0].Code)
}

func TestValidateOverlapRules(t *testing.T) {
	t.Run("overlap at or above chunk size is an error", func(t *testing.T) {
		cfg := validConfig()
		cfg.Chunking.ChunkSize = 500
		cfg.Chunking.ChunkOverlap = 500

		result := NewValidator().Validate(cfg, allCreds())

		require.False(t, result.IsValid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "overlap_exceeds_size", result.Errors[0].Code)
	})

	t.Run("overlap above half chunk size is only a warning", func(t *testing.T) {
		cfg := validConfig()
		cfg.Chunking.ChunkSize = 1000
		cfg.Chunking.ChunkOverlap = 600

		result := NewValidator().Validate(cfg, allCreds())

		require.True(t, result.IsValid)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "high_overlap", result.Warnings[0].Code)
	})
}

func TestValidateRerankCandidateWarning(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.EnableReranking = true
	cfg.Retrieval.TopKInitial = 8
	cfg.Retrieval.TopKFinal = 5

	result := NewValidator().Validate(cfg, allCreds())

	require.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "insufficient_rerank_candidates", result.Warnings[0].Code)
	assert.Equal(t, "retrieval.top_k_initial", result.Warnings[0].Field)
}

func TestEstimateCostByProvider(t *testing.T) {
	v := NewValidator()

	openai := validConfig()
	assert.InDelta(t, 30.1, v.EstimateCost(openai), 0.001)

	local := validConfig()
	local.Embedding.Provider = ProviderLocal
	local.LLM.Provider = ProviderLocal
	assert.Equal(t, 0.0, v.EstimateCost(local))

	anthropic := validConfig()
	anthropic.LLM.Provider = ProviderAnthropic
	assert.InDelta(t, 25.1, v.EstimateCost(anthropic), 0.001)
}

func TestPerformanceImpactBuckets(t *testing.T) {
	v := NewValidator()

	cfg := validConfig()
	assert.Equal(t, ImpactLow, v.PerformanceImpact(cfg))

	cfg.Retrieval.EnableReranking = true
	assert.Equal(t, ImpactMedium, v.PerformanceImpact(cfg))

	cfg.Chunking.Strategy = ChunkingSemantic
	assert.Equal(t, ImpactHigh, v.PerformanceImpact(cfg))

	workers := validConfig()
	workers.Performance.ParallelWorkers = 16
	workers.VisualProcessing = &VisualProcessingConfig{EnableOCR: true}
	assert.Equal(t, ImpactHigh, v.PerformanceImpact(workers))
}
