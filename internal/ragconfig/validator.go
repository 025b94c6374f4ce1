package ragconfig

import (
	"fmt"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Performance impact buckets.
const (
	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)

// Issue is one field-scoped validation finding. Validation never raises;
// every problem becomes an Issue on the result.
type Issue struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
}

// ValidationResult is the full outcome of validating a configuration.
type ValidationResult struct {
	IsValid           bool    `json:"is_valid"`
	Errors            []Issue `json:"errors"`
	Warnings          []Issue `json:"warnings"`
	EstimatedCost     float64 `json:"estimated_cost"`
	PerformanceImpact string  `json:"performance_impact"`
}

// CredentialFlags report which provider credentials the owning tenant has on
// file. Presence only: the raw values never reach the validator.
type CredentialFlags struct {
	HasEmbeddingKey bool
	HasLLMKey       bool
	HasParseKey     bool
}

// Assumed monthly token volume the cost estimate is priced against.
const monthlyTokenVolume = 1_000_000

// Per-1k-token prices by provider, embedding and generation separately.
var (
	embeddingPricePer1K = map[string]float64{
		ProviderOpenAI:      0.0001,
		ProviderCohere:      0.0001,
		ProviderHuggingFace: 0.0,
		ProviderLocal:       0.0,
	}
	llmPricePer1K = map[string]float64{
		ProviderOpenAI:    0.03,
		ProviderAnthropic: 0.025,
		ProviderCohere:    0.02,
		ProviderLocal:     0.0,
	}
)

// externalProviders require a resolvable credential reference.
var externalProviders = map[string]bool{
	ProviderOpenAI:      true,
	ProviderAnthropic:   true,
	ProviderCohere:      true,
	ProviderHuggingFace: true,
}

// Validator checks a configuration against compatibility, credential and
// resource rules and estimates its cost and performance impact.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// Validate runs every check and aggregates findings. It never returns an
// error: an unusable config is reported through IsValid=false.
func (v *Validator) Validate(cfg Config, creds CredentialFlags) ValidationResult {
	cfg.Normalize()

	var errs, warns []Issue
	errs = append(errs, v.checkModelCompatibility(cfg)...)
	errs = append(errs, v.checkCredentials(cfg, creds)...)

	resErrs, resWarns := v.checkResourceConstraints(cfg)
	errs = append(errs, resErrs...)
	warns = append(warns, resWarns...)

	return ValidationResult{
		IsValid:           len(errs) == 0,
		Errors:            errs,
		Warnings:          warns,
		EstimatedCost:     v.EstimateCost(cfg),
		PerformanceImpact: v.PerformanceImpact(cfg),
	}
}

func (v *Validator) checkModelCompatibility(cfg Config) []Issue {
	var errs []Issue
	if cfg.LLM.Provider == ProviderLocal && cfg.Embedding.Provider != ProviderLocal {
		errs = append(errs, Issue{
			Field:    "embedding.provider",
			Message:  "embedding provider must be 'local' when the LLM provider is 'local'",
			Code:     "provider_mismatch",
			Severity: SeverityError,
		})
	}
	return errs
}

func (v *Validator) checkCredentials(cfg Config, creds CredentialFlags) []Issue {
	var errs []Issue
	if externalProviders[cfg.Embedding.Provider] {
		if cfg.Embedding.APIKeyRef == "" || !creds.HasEmbeddingKey {
			errs = append(errs, Issue{
				Field:    "embedding.api_key_ref",
				Message:  fmt.Sprintf("credential reference required for %s embedding provider", cfg.Embedding.Provider),
				Code:     "missing_api_key",
				Severity: SeverityError,
			})
		}
	}
	if externalProviders[cfg.LLM.Provider] {
		if cfg.LLM.APIKeyRef == "" || !creds.HasLLMKey {
			errs = append(errs, Issue{
				Field:    "llm.api_key_ref",
				Message:  fmt.Sprintf("credential reference required for %s LLM provider", cfg.LLM.Provider),
				Code:     "missing_api_key",
				Severity: SeverityError,
			})
		}
	}
	// Semantic chunking embeds at ingest time and is unusable without an
	// embedding credential (unless the embedding provider is local).
	if cfg.Chunking.Strategy == ChunkingSemantic &&
		cfg.Embedding.Provider != ProviderLocal && !creds.HasEmbeddingKey {
		errs = append(errs, Issue{
			Field:    "chunking.strategy",
			Message:  "semantic chunking requires a resolvable embedding credential",
			Code:     "missing_api_key",
			Severity: SeverityError,
		})
	}
	return errs
}

func (v *Validator) checkResourceConstraints(cfg Config) (errs, warns []Issue) {
	if cfg.Chunking.ChunkSize > cfg.LLM.MaxTokens {
		errs = append(errs, Issue{
			Field:    "chunking.chunk_size",
			Message:  fmt.Sprintf("chunk_size (%d) exceeds llm.max_tokens (%d)", cfg.Chunking.ChunkSize, cfg.LLM.MaxTokens),
			Code:     "chunk_size_exceeds_limit",
			Severity: SeverityError,
		})
	}
	if cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		errs = append(errs, Issue{
			Field:    "chunking.chunk_overlap",
			Message:  fmt.Sprintf("chunk_overlap (%d) must be smaller than chunk_size (%d)", cfg.Chunking.ChunkOverlap, cfg.Chunking.ChunkSize),
			Code:     "overlap_exceeds_size",
			Severity: SeverityError,
		})
	} else if float64(cfg.Chunking.ChunkOverlap) > 0.5*float64(cfg.Chunking.ChunkSize) {
		warns = append(warns, Issue{
			Field:    "chunking.chunk_overlap",
			Message:  "chunk_overlap exceeds 50% of chunk_size, storage will be largely redundant",
			Code:     "high_overlap",
			Severity: SeverityWarning,
		})
	}
	if cfg.Retrieval.EnableReranking && cfg.Retrieval.TopKInitial > 0 &&
		cfg.Retrieval.TopKInitial < 2*cfg.Retrieval.TopKFinal {
		warns = append(warns, Issue{
			Field:    "retrieval.top_k_initial",
			Message:  "top_k_initial should be at least 2x top_k_final for effective reranking",
			Code:     "insufficient_rerank_candidates",
			Severity: SeverityWarning,
		})
	}
	return errs, warns
}

// EstimateCost prices the configuration against the assumed monthly token
// volume, embedding and generation summed separately.
func (v *Validator) EstimateCost(cfg Config) float64 {
	embPrice, ok := embeddingPricePer1K[cfg.Embedding.Provider]
	if !ok {
		embPrice = embeddingPricePer1K[ProviderOpenAI]
	}
	llmPrice, ok := llmPricePer1K[cfg.LLM.Provider]
	if !ok {
		llmPrice = llmPricePer1K[ProviderCohere]
	}
	per1kUnits := float64(monthlyTokenVolume) / 1000
	cost := embPrice*per1kUnits + llmPrice*per1kUnits
	return roundCents(cost)
}

// PerformanceImpact buckets the configuration by its count of expensive
// features: visual processing, reranking, semantic chunking, high parallelism.
func (v *Validator) PerformanceImpact(cfg Config) string {
	expensive := 0
	if cfg.VisualProcessing != nil && (cfg.VisualProcessing.EnableOCR || cfg.VisualProcessing.EnableVLMSummarization) {
		expensive++
	}
	if cfg.Retrieval.EnableReranking {
		expensive++
	}
	if cfg.Chunking.Strategy == ChunkingSemantic {
		expensive++
	}
	if cfg.Performance.ParallelWorkers > 8 {
		expensive++
	}
	switch {
	case expensive == 0:
		return ImpactLow
	case expensive == 1:
		return ImpactMedium
	default:
		return ImpactHigh
	}
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
