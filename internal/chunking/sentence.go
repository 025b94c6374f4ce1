package chunking

import "strings"

// sentenceTerminators end a sentence when followed by whitespace or EOF.
// Covers ASCII and full-width CJK punctuation.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// SplitSentences breaks text into trimmed sentences. Newlines act as soft
// boundaries so list items and headings become their own sentences. The
// result never contains empty strings; for non-empty input with no
// terminators the whole text is one sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		current.WriteRune(r)
		if sentenceTerminators[r] {
			next := ' '
			if i+1 < len(runes) {
				next = runes[i+1]
			}
			if next == ' ' || next == '\t' || next == '\n' || i+1 == len(runes) {
				flush()
			}
		}
	}
	flush()
	return sentences
}
