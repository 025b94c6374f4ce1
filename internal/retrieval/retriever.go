package retrieval

import (
	"context"
	"fmt"
	"strings"

	"ragbase/internal/provider"
	"ragbase/internal/vectorstore"
)

// vectorRetriever is the base nearest-neighbor retriever. With hybridWeights
// set the store blends in the lexical score.
type vectorRetriever struct {
	store         vectorstore.Store
	embedder      provider.Embedder
	filter        vectorstore.Filter
	topK          int
	hybridWeights map[string]float64
}

func (r *vectorRetriever) Retrieve(ctx context.Context, query string) ([]vectorstore.ScoredNode, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.store.Query(ctx, vectorstore.QueryRequest{
		Embedding:     vec,
		Text:          query,
		Filter:        r.filter,
		TopK:          r.topK,
		HybridWeights: r.hybridWeights,
	})
}

// retrieverTool is one selectable retrieval route for the router.
type retrieverTool struct {
	name        string
	description string
	retriever   Retriever
}

// routerRetriever asks the generation model to pick a retrieval tool by
// description, then delegates. Today there is a single vector tool; adding a
// route means appending a tool, not patching conditionals. Selection failures
// fall back to the first tool.
type routerRetriever struct {
	generator Generator
	chatCfg   provider.ChatConfig
	tools     []retrieverTool
}

func (r *routerRetriever) Retrieve(ctx context.Context, query string) ([]vectorstore.ScoredNode, error) {
	if len(r.tools) == 0 {
		return nil, fmt.Errorf("router has no retrieval tools")
	}
	tool := r.tools[0]
	if len(r.tools) > 1 {
		tool = r.selectTool(ctx, query)
	}
	return tool.retriever.Retrieve(ctx, query)
}

func (r *routerRetriever) selectTool(ctx context.Context, query string) retrieverTool {
	var sb strings.Builder
	sb.WriteString("Select the best tool for the question. Reply with the tool name only.\n\nTools:\n")
	for _, tool := range r.tools {
		fmt.Fprintf(&sb, "- %s: %s\n", tool.name, tool.description)
	}
	fmt.Fprintf(&sb, "\nQuestion: %s", query)

	answer, err := r.generator.Complete(ctx, r.chatCfg, []provider.ChatMessage{
		{Role: "user", Content: sb.String()},
	})
	if err != nil {
		return r.tools[0]
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, tool := range r.tools {
		if strings.Contains(answer, strings.ToLower(tool.name)) {
			return tool
		}
	}
	return r.tools[0]
}
