package chunking

import (
	"context"
	"strings"
)

// WindowSplitter produces one chunk per sentence. Each chunk carries the N
// surrounding sentences in its window metadata for context expansion at
// retrieval time; only the single sentence is the unit scored for similarity,
// so the window and original-text keys are excluded from model input.
type WindowSplitter struct {
	windowSize int
}

func NewWindowSplitter(windowSize int) *WindowSplitter {
	if windowSize <= 0 {
		windowSize = 3
	}
	return &WindowSplitter{windowSize: windowSize}
}

func (s *WindowSplitter) Name() string { return "window" }

func (s *WindowSplitter) Split(_ context.Context, docs []Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		sentences := SplitSentences(doc.Text)
		for i, sentence := range sentences {
			lo := i - s.windowSize
			if lo < 0 {
				lo = 0
			}
			hi := i + s.windowSize + 1
			if hi > len(sentences) {
				hi = len(sentences)
			}

			chunk := Chunk{Text: sentence}
			for k, v := range doc.Metadata {
				chunk.SetMeta(k, v)
			}
			chunk.SetMeta(MetaWindow, strings.Join(sentences[lo:hi], " "))
			chunk.SetMeta(MetaOriginalText, sentence)
			chunk.ExcludeFromModelInput(MetaWindow, MetaOriginalText)
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}
