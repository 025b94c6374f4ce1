// Package ragconfig defines the declarative retrieval configuration owned by
// an assistant, its validation rules, and the validate-then-save manager. The
// JSON field names here are the persisted wire shape; defaults are applied in
// one place (Normalize) rather than at consumption sites.
package ragconfig

import (
	"encoding/json"
	"fmt"
)

// Chunking strategies. Unknown values fall back to StrategyStandard at
// dispatch time.
const (
	ChunkingStandard = "standard"
	ChunkingMarkdown = "markdown"
	ChunkingSemantic = "semantic"
	ChunkingWindow   = "window"
)

// Retrieval strategies.
const (
	RetrievalVector         = "vector"
	RetrievalHybrid         = "hybrid"
	RetrievalRouter         = "router"
	RetrievalSentenceWindow = "sentence_window"
)

// Providers. "local" needs no credential; everything else does.
const (
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderCohere      = "cohere"
	ProviderHuggingFace = "huggingface"
	ProviderLocal       = "local"
)

// Database scale hints used to derive the coarse top-k when top_k_initial is
// not explicit.
const (
	ScaleSmall  = "small"
	ScaleMedium = "medium"
	ScaleLarge  = "large"
)

type EmbeddingConfig struct {
	ModelName   string         `json:"model_name"`
	Provider    string         `json:"provider"`
	ModelParams map[string]any `json:"model_params,omitempty"`
	APIKeyRef   string         `json:"api_key_ref,omitempty"`
	BatchSize   int            `json:"batch_size"`
}

type ChunkingConfig struct {
	Strategy     string `json:"strategy"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
	// SemanticThreshold is the breakpoint percentile (0-100) over the
	// document's inter-sentence distance distribution.
	SemanticThreshold float64 `json:"semantic_threshold,omitempty"`
	WindowSize        int     `json:"window_size,omitempty"`
	RespectStructure  bool    `json:"respect_structure"`
}

type RetrievalConfig struct {
	Strategy string `json:"strategy"`
	// TopKInitial zero means "derive from DBScale".
	TopKInitial         int                `json:"top_k_initial,omitempty"`
	TopKFinal           int                `json:"top_k_final"`
	DBScale             string             `json:"db_scale,omitempty"`
	HybridWeights       map[string]float64 `json:"hybrid_weights,omitempty"`
	EnableReranking     bool               `json:"enable_reranking"`
	RerankerModel       string             `json:"reranker_model,omitempty"`
	SimilarityThreshold float64            `json:"similarity_threshold"`
}

type LLMConfig struct {
	ModelName    string  `json:"model_name"`
	Provider     string  `json:"provider"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	APIKeyRef    string  `json:"api_key_ref,omitempty"`
}

type VisualProcessingConfig struct {
	EnableOCR              bool   `json:"enable_ocr"`
	EnableVLMSummarization bool   `json:"enable_vlm_summarization"`
	OCRProvider            string `json:"ocr_provider,omitempty"`
	VLMModel               string `json:"vlm_model,omitempty"`
}

type PerformanceConfig struct {
	CacheEmbeddings bool `json:"cache_embeddings"`
	BatchProcessing bool `json:"batch_processing"`
	ParallelWorkers int  `json:"parallel_workers"`
	MemoryLimitMB   int  `json:"memory_limit_mb"`
}

// Config is the full declarative retrieval configuration, owned one-to-one by
// an assistant and mutated only through validate-then-save.
type Config struct {
	Embedding        EmbeddingConfig         `json:"embedding"`
	Chunking         ChunkingConfig          `json:"chunking"`
	Retrieval        RetrievalConfig         `json:"retrieval"`
	LLM              LLMConfig               `json:"llm"`
	VisualProcessing *VisualProcessingConfig `json:"visual_processing,omitempty"`
	Performance      PerformanceConfig       `json:"performance_settings"`
}

// Default returns a fully-populated baseline configuration.
func Default() Config {
	cfg := Config{
		Embedding: EmbeddingConfig{
			ModelName: "text-embedding-3-small",
			Provider:  ProviderOpenAI,
			BatchSize: 100,
		},
		Chunking: ChunkingConfig{
			Strategy:          ChunkingStandard,
			ChunkSize:         1024,
			ChunkOverlap:      200,
			SemanticThreshold: 95,
			WindowSize:        3,
			RespectStructure:  true,
		},
		Retrieval: RetrievalConfig{
			Strategy:            RetrievalVector,
			TopKFinal:           5,
			DBScale:             ScaleSmall,
			HybridWeights:       map[string]float64{"semantic": 0.7, "lexical": 0.3},
			SimilarityThreshold: 0.7,
		},
		LLM: LLMConfig{
			ModelName:   "gpt-4o-mini",
			Provider:    ProviderOpenAI,
			Temperature: 0.1,
			MaxTokens:   2048,
		},
		Performance: PerformanceConfig{
			CacheEmbeddings: true,
			BatchProcessing: true,
			ParallelWorkers: 4,
			MemoryLimitMB:   2048,
		},
	}
	return cfg
}

// Normalize fills zero-valued fields with defaults. It never rejects: invalid
// combinations are the validator's concern.
func (c *Config) Normalize() {
	def := Default()
	if c.Embedding.ModelName == "" {
		c.Embedding.ModelName = def.Embedding.ModelName
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = def.Embedding.Provider
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = def.Embedding.BatchSize
	}
	if c.Chunking.Strategy == "" {
		c.Chunking.Strategy = def.Chunking.Strategy
	}
	if c.Chunking.ChunkSize <= 0 {
		c.Chunking.ChunkSize = def.Chunking.ChunkSize
	}
	if c.Chunking.SemanticThreshold <= 0 {
		c.Chunking.SemanticThreshold = def.Chunking.SemanticThreshold
	}
	if c.Chunking.WindowSize <= 0 {
		c.Chunking.WindowSize = def.Chunking.WindowSize
	}
	if c.Retrieval.Strategy == "" {
		c.Retrieval.Strategy = def.Retrieval.Strategy
	}
	if c.Retrieval.TopKFinal <= 0 {
		c.Retrieval.TopKFinal = def.Retrieval.TopKFinal
	}
	if c.Retrieval.DBScale == "" {
		c.Retrieval.DBScale = def.Retrieval.DBScale
	}
	if len(c.Retrieval.HybridWeights) == 0 {
		c.Retrieval.HybridWeights = map[string]float64{"semantic": 0.7, "lexical": 0.3}
	}
	if c.Retrieval.SimilarityThreshold <= 0 {
		c.Retrieval.SimilarityThreshold = def.Retrieval.SimilarityThreshold
	}
	if c.LLM.ModelName == "" {
		c.LLM.ModelName = def.LLM.ModelName
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = def.LLM.Provider
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if c.Performance.ParallelWorkers <= 0 {
		c.Performance.ParallelWorkers = def.Performance.ParallelWorkers
	}
	if c.Performance.MemoryLimitMB <= 0 {
		c.Performance.MemoryLimitMB = def.Performance.MemoryLimitMB
	}
}

// FromJSON parses and normalizes a persisted configuration.
func FromJSON(raw string) (Config, error) {
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse rag config failed: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// ToJSON serializes the configuration to its wire shape.
func (c Config) ToJSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal rag config failed: %w", err)
	}
	return string(b), nil
}
