package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragbase/internal/apperr"
	"ragbase/internal/ragconfig"
)

func TestStandardSplitterChunkCountAndOverlap(t *testing.T) {
	splitter := NewStandardSplitter(1000, 200)
	text := strings.Repeat("a", 3000)

	chunks, err := splitter.Split(context.Background(), []Document{{Text: text}})
	require.NoError(t, err)

	// ceil((3000-200)/800) = 4 chunks at stride 800.
	require.Len(t, chunks, 4)
	assert.Len(t, chunks[0].Text, 1000)
	assert.Len(t, chunks[1].Text, 1000)
	assert.Len(t, chunks[2].Text, 1000)
	assert.Len(t, chunks[3].Text, 600)
}

func TestStandardSplitterConsecutiveChunksShareOverlap(t *testing.T) {
	splitter := NewStandardSplitter(100, 20)

	var sb strings.Builder
	for sb.Len() < 250 {
		sb.WriteString("abcdefghij")
	}
	text := sb.String()

	chunks, err := splitter.Split(context.Background(), []Document{{Text: text}})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		tail := string(prev[len(prev)-20:])
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail))
	}
}

func TestStandardSplitterEmptyAndSmallInput(t *testing.T) {
	splitter := NewStandardSplitter(1000, 200)

	chunks, err := splitter.Split(context.Background(), []Document{{Text: ""}})
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = splitter.Split(context.Background(), []Document{{Text: "short"}})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Text)
}

func TestStandardSplitterCopiesDocumentMetadata(t *testing.T) {
	splitter := NewStandardSplitter(10, 0)
	docs := []Document{{
		Text:     strings.Repeat("x", 25),
		Metadata: map[string]string{MetaFilename: "notes.txt"},
	}}

	chunks, err := splitter.Split(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.Equal(t, "notes.txt", chunk.Metadata[MetaFilename])
	}
}

func TestMarkdownSplitterSections(t *testing.T) {
	text := "# Intro\nWelcome text.\n\n## Setup\nStep one.\nStep two.\n\n# Usage\nRun it."

	chunks, err := NewMarkdownSplitter().Split(context.Background(), []Document{{Text: text}})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "Intro", chunks[0].Metadata[MetaSection])
	assert.Equal(t, "Setup", chunks[1].Metadata[MetaSection])
	assert.Equal(t, "Usage", chunks[2].Metadata[MetaSection])
	assert.Contains(t, chunks[1].Text, "Step two.")
	assert.NotContains(t, chunks[0].Text, "Step one.")
}

func TestMarkdownSplitterNoHeadingsSingleChunk(t *testing.T) {
	chunks, err := NewMarkdownSplitter().Split(context.Background(), []Document{{Text: "plain prose only"}})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "plain prose only", chunks[0].Text)
	assert.Empty(t, chunks[0].Metadata[MetaSection])
}

func TestWindowSplitterSentenceChunksWithWindowMetadata(t *testing.T) {
	text := "One fish. Two fish. Red fish. Blue fish. Old fish. New fish."

	chunks, err := NewWindowSplitter(1).Split(context.Background(), []Document{{Text: text}})
	require.NoError(t, err)
	require.Len(t, chunks, 6)

	assert.Equal(t, "One fish.", chunks[0].Text)
	assert.Equal(t, "One fish. Two fish.", chunks[0].Metadata[MetaWindow])
	assert.Equal(t, "One fish. Two fish. Red fish.", chunks[1].Metadata[MetaWindow])
	assert.Equal(t, "Old fish. New fish.", chunks[5].Metadata[MetaWindow])

	for _, chunk := range chunks {
		assert.Contains(t, chunk.ExcludedEmbedKeys, MetaWindow)
		assert.Contains(t, chunk.ExcludedLLMKeys, MetaWindow)
		assert.Equal(t, chunk.Text, chunk.Metadata[MetaOriginalText])
	}
}

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "Hello there. How are you? Fine!", []string{"Hello there.", "How are you?", "Fine!"}},
		{"newline boundary", "alpha\nbeta", []string{"alpha", "beta"}},
		{"no terminator", "just a fragment", []string{"just a fragment"}},
		{"abbreviation stays joined", "v1.2 is out. Enjoy.", []string{"v1.2 is out.", "Enjoy."}},
		{"empty", "   \n ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitSentences(tc.in))
		})
	}
}

type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := e.vectors[text]
		if !ok {
			vec = []float32{1, 0}
		}
		out[i] = vec
	}
	return out, nil
}

func TestSemanticSplitterCutsAtDistanceSpike(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"Cats purr.":       {1, 0},
		"Cats also nap.":   {0.99, 0.1},
		"Stocks fell.":     {0, 1},
		"Markets wobbled.": {0.1, 0.99},
	}}
	splitter := NewSemanticSplitter(embedder, 100, 50)

	text := "Cats purr. Cats also nap. Stocks fell. Markets wobbled."
	chunks, err := splitter.Split(context.Background(), []Document{{Text: text}})
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Cats purr. Cats also nap.", chunks[0].Text)
	assert.Equal(t, "Stocks fell. Markets wobbled.", chunks[1].Text)
}

func TestSemanticSplitterBatchesEmbeddingCalls(t *testing.T) {
	embedder := &stubEmbedder{}
	splitter := NewSemanticSplitter(embedder, 2, 95)

	text := "A one. B two. C three. D four. E five."
	_, err := splitter.Split(context.Background(), []Document{{Text: text}})
	require.NoError(t, err)

	// 5 sentences at batch size 2 means 3 calls.
	assert.Equal(t, 3, embedder.calls)
}

func TestBuildSplitterDispatch(t *testing.T) {
	cfg := ragconfig.Default()

	cfg.Chunking.Strategy = ragconfig.ChunkingMarkdown
	splitter, err := BuildSplitter(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", splitter.Name())

	cfg.Chunking.Strategy = ragconfig.ChunkingWindow
	splitter, err = BuildSplitter(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "window", splitter.Name())

	cfg.Chunking.Strategy = ragconfig.ChunkingSemantic
	splitter, err = BuildSplitter(cfg, &stubEmbedder{})
	require.NoError(t, err)
	assert.Equal(t, "semantic", splitter.Name())
}

func TestBuildSplitterUnknownStrategyFallsBack(t *testing.T) {
	cfg := ragconfig.Default()
	cfg.Chunking.Strategy = "exotic"

	splitter, err := BuildSplitter(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "standard", splitter.Name())
}

func TestBuildSplitterSemanticWithoutEmbedder(t *testing.T) {
	cfg := ragconfig.Default()
	cfg.Chunking.Strategy = ragconfig.ChunkingSemantic

	_, err := BuildSplitter(cfg, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsConfiguration(err))
}
