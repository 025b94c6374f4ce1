// Package retrieval assembles the conversational retrieval-generation engine
// from an assistant's configuration: a retriever variant, a postprocessor
// chain and a generation call, all parameterized by the baked-in tenant
// isolation filter and system prompt.
package retrieval

import (
	"context"

	"ragbase/internal/provider"
	"ragbase/internal/vectorstore"
)

// Generator is the chat-completion capability consumed by the engine, the
// router selector and the reranker.
type Generator interface {
	Complete(ctx context.Context, cfg provider.ChatConfig, messages []provider.ChatMessage) (string, error)
}

// Retriever returns scored candidate nodes for a query. Every implementation
// carries the isolation filter; none exposes an unfiltered mode.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]vectorstore.ScoredNode, error)
}

// Postprocessor narrows or rewrites the candidate set after retrieval.
type Postprocessor interface {
	Process(ctx context.Context, query string, nodes []vectorstore.ScoredNode) ([]vectorstore.ScoredNode, error)
}

// Scale hint to coarse top-k mapping, used when top_k_initial is not
// explicit.
var scaleTopK = map[string]int{
	"small":  15,
	"medium": 30,
	"large":  50,
}

// ResolveTopK normalizes the coarse/fine candidate counts. Explicit
// top_k_initial wins; otherwise the scale hint decides; with reranking
// disabled there is no intermediate stage so both values collapse to
// top_k_final. A caller-supplied initial below final is left alone here; the
// validator reports it as a warning.
func ResolveTopK(topKInitial, topKFinal int, scale string, reranking bool) (initial, final int) {
	final = topKFinal
	if final <= 0 {
		final = 5
	}
	if !reranking {
		return final, final
	}
	if topKInitial > 0 {
		return topKInitial, final
	}
	initial, ok := scaleTopK[scale]
	if !ok {
		initial = scaleTopK["small"]
	}
	return initial, final
}
