package retrieval

import (
	"ragbase/internal/apperr"
	"ragbase/internal/provider"
	"ragbase/internal/ragconfig"
	"ragbase/internal/vectorstore"
)

// Builder assembles a chat engine for one assistant. Everything request-
// scoped (credentials, filter, prompt) is bound at build time; the resulting
// engine holds no other state.
type Builder struct {
	Store        vectorstore.Store
	Embedder     provider.Embedder
	Generator    Generator
	ChatConfig   provider.ChatConfig
	Filter       vectorstore.Filter
	SystemPrompt string
	Config       ragconfig.Config
}

// Build resolves the retrieval strategy and postprocessor chain. The
// isolation filter is mandatory; building without one is refused.
func (b *Builder) Build() (*Engine, error) {
	if b.Filter.AssistantID == 0 {
		return nil, apperr.NewConfigurationError("retrieval", "isolation filter is required")
	}

	retrievalCfg := b.Config.Retrieval
	topKInitial, topKFinal := ResolveTopK(
		retrievalCfg.TopKInitial,
		retrievalCfg.TopKFinal,
		retrievalCfg.DBScale,
		retrievalCfg.EnableReranking,
	)

	base := &vectorRetriever{
		store:    b.Store,
		embedder: b.Embedder,
		filter:   b.Filter,
		topK:     topKInitial,
	}

	var retriever Retriever
	var postprocessors []Postprocessor

	switch retrievalCfg.Strategy {
	case ragconfig.RetrievalHybrid:
		base.hybridWeights = retrievalCfg.HybridWeights
		if base.hybridWeights == nil {
			base.hybridWeights = map[string]float64{"semantic": 0.7, "lexical": 0.3}
		}
		retriever = base
	case ragconfig.RetrievalRouter:
		retriever = &routerRetriever{
			generator: b.Generator,
			chatCfg:   b.ChatConfig,
			tools: []retrieverTool{
				{
					name:        "knowledge_search",
					description: "semantic search over the assistant's knowledge base",
					retriever:   base,
				},
			},
		}
	case ragconfig.RetrievalSentenceWindow:
		retriever = base
		postprocessors = append(postprocessors, windowReplacement{})
	default: // vector
		retriever = base
	}

	// Fixed chain order: optional reranker first, hard similarity cutoff
	// always last.
	if retrievalCfg.EnableReranking {
		postprocessors = append(postprocessors, &llmReranker{
			generator: b.Generator,
			chatCfg:   b.ChatConfig,
			model:     retrievalCfg.RerankerModel,
			topK:      topKFinal,
		})
	}
	threshold := retrievalCfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.7
	}
	postprocessors = append(postprocessors, similarityCutoff{threshold: float32(threshold)})

	return &Engine{
		retriever:      retriever,
		postprocessors: postprocessors,
		generator:      b.Generator,
		chatCfg:        b.ChatConfig,
		systemPrompt:   b.SystemPrompt,
		topKInitial:    topKInitial,
		topKFinal:      topKFinal,
	}, nil
}
