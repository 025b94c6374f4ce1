package chunking

import (
	"context"
	"strings"
)

// MarkdownSplitter cuts documents on heading hierarchy: one chunk per
// structural section, boundaries never crossing a heading. Chunk size is
// deliberately ignored; section length follows the document's own structure.
type MarkdownSplitter struct{}

func NewMarkdownSplitter() *MarkdownSplitter { return &MarkdownSplitter{} }

func (s *MarkdownSplitter) Name() string { return "markdown" }

func (s *MarkdownSplitter) Split(_ context.Context, docs []Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		for _, section := range splitSections(doc.Text) {
			chunk := Chunk{Text: section.text}
			for k, v := range doc.Metadata {
				chunk.SetMeta(k, v)
			}
			if section.heading != "" {
				chunk.SetMeta(MetaSection, section.heading)
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

type section struct {
	heading string
	text    string
}

func splitSections(text string) []section {
	lines := strings.Split(text, "\n")

	var sections []section
	var heading string
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if heading != "" {
			if content == "" {
				content = heading
			} else {
				content = heading + "\n" + content
			}
		}
		if content != "" {
			sections = append(sections, section{heading: headingTitle(heading), text: content})
		}
		body = body[:0]
	}

	for _, line := range lines {
		if isHeading(line) {
			flush()
			heading = strings.TrimSpace(line)
			continue
		}
		body = append(body, line)
	}
	flush()

	// A document without headings is a single section.
	if len(sections) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed != "" {
			sections = append(sections, section{text: trimmed})
		}
	}
	return sections
}

func isHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	level := 0
	for _, r := range trimmed {
		if r != '#' {
			break
		}
		level++
	}
	if level > 6 {
		return false
	}
	rest := trimmed[level:]
	return rest == "" || strings.HasPrefix(rest, " ")
}

func headingTitle(heading string) string {
	return strings.TrimSpace(strings.TrimLeft(heading, "#"))
}
