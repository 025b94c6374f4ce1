package retrieval

import (
	"context"
	"strings"

	"ragbase/internal/provider"
	"ragbase/internal/vectorstore"
)

const defaultSystemPrompt = "You are a helpful assistant. Answer using only the provided context. " +
	"If the context does not contain the answer, say so instead of guessing."

// Result is one conversational turn: the answer plus the scored sources that
// supported it.
type Result struct {
	Answer  string
	Sources []vectorstore.ScoredNode
}

// Engine executes one retrieval-generation turn. It is stateless besides the
// configuration baked in by the builder, so a single engine may serve
// concurrent requests.
type Engine struct {
	retriever      Retriever
	postprocessors []Postprocessor
	generator      Generator
	chatCfg        provider.ChatConfig
	systemPrompt   string
	topKInitial    int
	topKFinal      int
}

// TopK exposes the resolved coarse/fine candidate counts.
func (e *Engine) TopK() (initial, final int) {
	return e.topKInitial, e.topKFinal
}

// Chat retrieves context for the query, runs the postprocessor chain and
// generates the answer with the conversation history in the prompt.
func (e *Engine) Chat(ctx context.Context, query string, history []provider.ChatMessage) (*Result, error) {
	nodes, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, p := range e.postprocessors {
		nodes, err = p.Process(ctx, query, nodes)
		if err != nil {
			return nil, err
		}
	}

	prompt := e.systemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}

	messages := make([]provider.ChatMessage, 0, len(history)+2)
	messages = append(messages, provider.ChatMessage{
		Role:    "system",
		Content: prompt + "\n\nContext:\n" + contextBlock(nodes),
	})
	messages = append(messages, history...)
	messages = append(messages, provider.ChatMessage{Role: "user", Content: query})

	answer, err := e.generator.Complete(ctx, e.chatCfg, messages)
	if err != nil {
		return nil, err
	}

	return &Result{
		Answer:  strings.TrimSpace(answer),
		Sources: nodes,
	}, nil
}

// contextBlock formats retrieved text for the prompt. Only chunk text goes
// in; isolation and bookkeeping metadata never reach the model.
func contextBlock(nodes []vectorstore.ScoredNode) string {
	if len(nodes) == 0 {
		return "(no relevant context found)"
	}
	var sb strings.Builder
	for _, node := range nodes {
		sb.WriteString("---\n")
		sb.WriteString(node.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("---")
	return sb.String()
}
