package chunking

import (
	"ragbase/internal/apperr"
	"ragbase/internal/ragconfig"
)

// BuildSplitter resolves the configured strategy to a concrete splitter.
// The strategy set is closed; anything unrecognized deterministically becomes
// the standard splitter. Semantic chunking fails here, before any chunk is
// produced, when no embedder is available.
func BuildSplitter(cfg ragconfig.Config, embedder Embedder) (Splitter, error) {
	switch cfg.Chunking.Strategy {
	case ragconfig.ChunkingMarkdown:
		return NewMarkdownSplitter(), nil
	case ragconfig.ChunkingSemantic:
		if embedder == nil {
			return nil, apperr.NewConfigurationError(
				"chunking.strategy",
				"semantic chunking requires a resolvable embedding credential",
			)
		}
		return NewSemanticSplitter(embedder, cfg.Embedding.BatchSize, cfg.Chunking.SemanticThreshold), nil
	case ragconfig.ChunkingWindow:
		return NewWindowSplitter(cfg.Chunking.WindowSize), nil
	default:
		return NewStandardSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap), nil
	}
}
