// Package chunking turns parsed documents into ordered chunk sequences. The
// strategy is selected from the assistant's chunking configuration; the
// dispatch set is closed and unknown values fall back to the standard
// splitter.
package chunking

import "context"

// Metadata keys attached to chunks. Isolation and window keys are excluded
// from both the embedding input and the text shown to the generation model.
const (
	MetaAssistantID  = "assistant_id"
	MetaDocumentID   = "document_id"
	MetaFilename     = "filename"
	MetaSection      = "section"
	MetaWindow       = "window"
	MetaOriginalText = "original_text"
)

// IsolationKeys are the bookkeeping keys every persisted chunk must carry.
var IsolationKeys = []string{MetaAssistantID, MetaDocumentID}

// Document is one parsed source unit: plain or markdown text plus source
// metadata.
type Document struct {
	Text     string
	Metadata map[string]string
}

// Chunk is the atomic unit produced by a splitter: text plus metadata, with
// explicit lists of metadata keys that must not leak into embedding input or
// the generation prompt.
type Chunk struct {
	Text              string
	Metadata          map[string]string
	ExcludedEmbedKeys []string
	ExcludedLLMKeys   []string
}

// SetMeta initializes the metadata map on demand and stores one key.
func (c *Chunk) SetMeta(key, value string) {
	if c.Metadata == nil {
		c.Metadata = map[string]string{}
	}
	c.Metadata[key] = value
}

// ExcludeFromModelInput marks keys as invisible to both embedding and
// generation.
func (c *Chunk) ExcludeFromModelInput(keys ...string) {
	c.ExcludedEmbedKeys = append(c.ExcludedEmbedKeys, keys...)
	c.ExcludedLLMKeys = append(c.ExcludedLLMKeys, keys...)
}

// Splitter materializes chunks from an ordered document list. For non-empty
// input every splitter yields at least one chunk.
type Splitter interface {
	Split(ctx context.Context, docs []Document) ([]Chunk, error)
	Name() string
}

// Embedder is the capability the semantic splitter needs. Implementations
// must respect the configured batch size; the splitter batches its calls
// accordingly.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
