package chunking

import "context"

// StandardSplitter produces fixed-size chunks with a sliding window. The
// stride is chunkSize-overlap, so consecutive chunks share exactly overlap
// characters; any non-empty document yields at least one chunk.
type StandardSplitter struct {
	chunkSize int
	overlap   int
}

func NewStandardSplitter(chunkSize, overlap int) *StandardSplitter {
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &StandardSplitter{chunkSize: chunkSize, overlap: overlap}
}

func (s *StandardSplitter) Name() string { return "standard" }

func (s *StandardSplitter) Split(_ context.Context, docs []Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		for _, text := range s.splitText(doc.Text) {
			chunk := Chunk{Text: text}
			for k, v := range doc.Metadata {
				chunk.SetMeta(k, v)
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *StandardSplitter) splitText(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	stride := s.chunkSize - s.overlap
	var parts []string
	for start := 0; start < len(runes); start += stride {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return parts
}
