package chunking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// SemanticSplitter groups adjacent sentences and cuts where the embedding
// distance between neighbors exceeds a percentile threshold over the
// document's own distance distribution. Construction requires an embedder;
// the selector refuses to build one without a resolvable credential, so no
// chunk is ever produced before that failure.
type SemanticSplitter struct {
	embedder   Embedder
	batchSize  int
	percentile float64
}

func NewSemanticSplitter(embedder Embedder, batchSize int, percentile float64) *SemanticSplitter {
	if batchSize <= 0 {
		batchSize = 100
	}
	if percentile <= 0 || percentile > 100 {
		percentile = 95
	}
	return &SemanticSplitter{embedder: embedder, batchSize: batchSize, percentile: percentile}
}

func (s *SemanticSplitter) Name() string { return "semantic" }

func (s *SemanticSplitter) Split(ctx context.Context, docs []Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		parts, err := s.splitText(ctx, doc.Text)
		if err != nil {
			return nil, err
		}
		for _, text := range parts {
			chunk := Chunk{Text: text}
			for k, v := range doc.Metadata {
				chunk.SetMeta(k, v)
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *SemanticSplitter) splitText(ctx context.Context, text string) ([]string, error) {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}
	if len(sentences) == 1 {
		return sentences, nil
	}

	vectors, err := s.embedSentences(ctx, sentences)
	if err != nil {
		return nil, err
	}

	// Distance i is between sentence i and i+1.
	distances := make([]float64, len(sentences)-1)
	for i := 0; i < len(sentences)-1; i++ {
		distances[i] = 1 - cosine(vectors[i], vectors[i+1])
	}
	threshold := percentileOf(distances, s.percentile)

	var parts []string
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		if i < len(distances) && distances[i] > threshold {
			parts = append(parts, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, " "))
	}
	return parts, nil
}

// embedSentences issues embedding calls in batches so the fan-out stays
// bounded by the configured batch size.
func (s *SemanticSplitter) embedSentences(ctx context.Context, sentences []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(sentences))
	for start := 0; start < len(sentences); start += s.batchSize {
		end := start + s.batchSize
		if end > len(sentences) {
			end = len(sentences)
		}
		batch, err := s.embedder.EmbedBatch(ctx, sentences[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("embedding count mismatch: %d vectors for %d sentences", len(vectors), len(sentences))
	}
	return vectors, nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// percentileOf returns the p-th percentile of values (nearest-rank).
func percentileOf(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
