package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, float64(Cosine([]float32{1, 0}, []float32{1, 0})), 0.0001)
	assert.InDelta(t, 0.0, float64(Cosine([]float32{1, 0}, []float32{0, 1})), 0.0001)
	assert.InDelta(t, -1.0, float64(Cosine([]float32{1, 0}, []float32{-1, 0})), 0.0001)

	// Magnitude does not change the similarity.
	assert.InDelta(t, 1.0, float64(Cosine([]float32{2, 2}, []float32{5, 5})), 0.0001)
}

func TestCosineDegenerateInput(t *testing.T) {
	assert.Zero(t, Cosine(nil, nil))
	assert.Zero(t, Cosine([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 0}))
}

func TestLexicalScore(t *testing.T) {
	assert.InDelta(t, 1.0, float64(LexicalScore("hello world", "Hello, world!")), 0.0001)
	assert.InDelta(t, 0.5, float64(LexicalScore("hello mars", "hello world")), 0.0001)
	assert.Zero(t, LexicalScore("nothing", "hello world"))
	assert.Zero(t, LexicalScore("", "hello world"))

	// Repeated query terms count once.
	assert.InDelta(t, 0.5, float64(LexicalScore("go go stop", "go fast")), 0.0001)
}

func TestQueryWithoutFilterIsRejected(t *testing.T) {
	store := NewMySQLStore(nil)

	_, err := store.Query(context.Background(), QueryRequest{
		Embedding: []float32{1, 0},
		TopK:      5,
	})
	assert.ErrorIs(t, err, ErrMissingFilter)

	_, err = store.DeleteByFilter(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrMissingFilter)

	err = store.WriteNodes(context.Background(), []Node{{Text: "orphan"}})
	assert.ErrorIs(t, err, ErrMissingFilter)
}
