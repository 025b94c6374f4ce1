package retrieval

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"ragbase/internal/chunking"
	"ragbase/internal/provider"
	"ragbase/internal/vectorstore"
)

const rerankConcurrency = 3

// windowReplacement substitutes each retrieved sentence with its stored
// surrounding-context window before generation. Scoring already happened on
// the single sentence.
type windowReplacement struct{}

func (windowReplacement) Process(_ context.Context, _ string, nodes []vectorstore.ScoredNode) ([]vectorstore.ScoredNode, error) {
	for i := range nodes {
		if window, ok := nodes[i].Metadata[chunking.MetaWindow]; ok && window != "" {
			nodes[i].Text = window
		}
	}
	return nodes, nil
}

// llmReranker re-scores the coarse candidate set with the generation model
// and keeps the best topK. A node whose scoring call fails retains its
// retrieval score rather than dropping out.
type llmReranker struct {
	generator Generator
	chatCfg   provider.ChatConfig
	model     string
	topK      int
}

func (r *llmReranker) Process(ctx context.Context, query string, nodes []vectorstore.ScoredNode) ([]vectorstore.ScoredNode, error) {
	if len(nodes) == 0 {
		return nodes, nil
	}

	reranked := make([]vectorstore.ScoredNode, len(nodes))
	copy(reranked, nodes)

	sem := make(chan struct{}, rerankConcurrency)
	var wg sync.WaitGroup
	for i := range reranked {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			score, err := r.scoreNode(ctx, query, reranked[i].Text)
			if err != nil {
				log.Printf("rerank score failed, keeping retrieval score: %v", err)
				return
			}
			reranked[i].Score = score
		}(i)
	}
	wg.Wait()

	sort.SliceStable(reranked, func(a, b int) bool {
		return reranked[a].Score > reranked[b].Score
	})
	if r.topK > 0 && len(reranked) > r.topK {
		reranked = reranked[:r.topK]
	}
	return reranked, nil
}

func (r *llmReranker) scoreNode(ctx context.Context, query, text string) (float32, error) {
	cfg := r.chatCfg
	if r.model != "" {
		cfg.Model = r.model
	}
	prompt := "Rate how relevant the passage is to the question on a scale from 0.0 to 1.0. " +
		"Reply with the number only.\n\nQuestion: " + query + "\n\nPassage: " + text
	answer, err := r.generator.Complete(ctx, cfg, []provider.ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	return float32(value), nil
}

// similarityCutoff drops nodes scoring below the threshold. It runs last,
// whether or not reranking ran.
type similarityCutoff struct {
	threshold float32
}

func (p similarityCutoff) Process(_ context.Context, _ string, nodes []vectorstore.ScoredNode) ([]vectorstore.ScoredNode, error) {
	kept := nodes[:0:0]
	for _, node := range nodes {
		if node.Score >= p.threshold {
			kept = append(kept, node)
		}
	}
	return kept, nil
}
