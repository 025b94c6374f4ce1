// Package vectorstore is the adapter boundary for chunk+vector persistence.
// Every read and write is scoped by an exact-match assistant filter; there is
// no cross-assistant query mode, and a zero filter is rejected rather than
// widened.
package vectorstore

import "context"

// Node is one chunk ready for storage: text, vector and bookkeeping metadata.
type Node struct {
	AssistantID uint
	DocumentID  uint
	Text        string
	Embedding   []float32
	Metadata    map[string]string
}

// ScoredNode is a retrieved node with its relevance score.
type ScoredNode struct {
	Node
	Score float32
}

// Filter is the exact-match isolation predicate. AssistantID is mandatory on
// every operation; DocumentID additionally narrows deletes.
type Filter struct {
	AssistantID uint
	DocumentID  uint
}

// QueryRequest describes one similarity query. When HybridWeights is non-nil
// the vector score is blended with a lexical score over Text.
type QueryRequest struct {
	Embedding     []float32
	Text          string
	Filter        Filter
	TopK          int
	HybridWeights map[string]float64
}

// Store is the vector store contract consumed by ingestion and retrieval.
type Store interface {
	WriteNodes(ctx context.Context, nodes []Node) error
	Query(ctx context.Context, req QueryRequest) ([]ScoredNode, error)
	DeleteByFilter(ctx context.Context, filter Filter) (int64, error)
}
