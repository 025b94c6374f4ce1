package vectorstore

import (
	"math"
	"strings"
	"unicode"
)

// Cosine returns the cosine similarity of two vectors, 0 for mismatched or
// empty input.
func Cosine(a, b []float32) float32 {
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
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// LexicalScore is the keyword half of hybrid retrieval: the fraction of
// distinct query terms present in the text, in [0,1].
func LexicalScore(query, text string) float32 {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return 0
	}
	textTerms := map[string]bool{}
	for _, t := range tokenize(text) {
		textTerms[t] = true
	}

	seen := map[string]bool{}
	matched := 0
	total := 0
	for _, t := range queryTerms {
		if seen[t] {
			continue
		}
		seen[t] = true
		total++
		if textTerms[t] {
			matched++
		}
	}
	return float32(matched) / float32(total)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
