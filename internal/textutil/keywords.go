package textutil

import (
	"regexp"
	"sort"
	"strings"
)

var tokenRe = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// StopWords is a read-only set of words ignored by keyword extraction.
type StopWords map[string]struct{}

// DefaultStopWords returns a fresh copy of the built-in English stop-word set
func DefaultStopWords() StopWords {
	words := []string{
		"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
		"by", "from", "up", "about", "into", "through", "during", "before",
		"after", "above", "below", "between", "among", "this", "that", "these",
		"those", "was", "were", "been", "have", "has", "had", "will", "would",
		"could", "should", "may", "might", "can", "must", "shall", "such",
		"very", "more", "most", "some", "any", "all", "each", "every", "other",
		"another", "same", "different", "are", "is", "be", "being", "not",
		"you", "your", "yours", "they", "them", "their", "its", "our", "ours",
		"his", "her", "hers", "she", "him", "who", "whom", "whose", "which",
		"what", "when", "where", "why", "how", "than", "then", "there", "here",
		"also", "just", "only", "over", "under", "again", "further", "once",
		"both", "few", "own", "too", "out", "off", "down", "does", "did",
		"doing", "done", "get", "got", "use", "used", "using", "like", "well",
		"many", "much", "one", "two", "new", "via", "per", "etc", "yet",
		"while", "because", "within", "without", "upon", "across", "along",
		"around", "toward", "towards", "whether", "either", "neither", "nor",
	}
	s := make(StopWords, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

var defaultStopWords = DefaultStopWords()

// Has reports whether w (lower-case) is a stop word
func (s StopWords) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Tokens returns the lower-cased alphabetic tokens of at least three letters
func Tokens(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// ExtractKeywords ranks non-stop-word tokens by frequency using the default stop words
func ExtractKeywords(text string, maxK int) []string {
	return defaultStopWords.ExtractKeywords(text, maxK)
}

// ExtractKeywords returns at most maxK tokens ordered by descending
// frequency, ties kept in first-seen order.
func (s StopWords) ExtractKeywords(text string, maxK int) []string {
	if text == "" || maxK <= 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, tok := range Tokens(text) {
		if s.Has(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxK {
		order = order[:maxK]
	}
	return order
}

// ContentWords returns the distinct non-stop-word tokens of text in first-seen order
func (s StopWords) ContentWords(text string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, tok := range Tokens(text) {
		if s.Has(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		words = append(words, tok)
	}
	return words
}

// TokenSet is the set of distinct tokens of a text
type TokenSet map[string]struct{}

// NewTokenSet builds the token set used by Similarity
func NewTokenSet(text string) TokenSet {
	toks := Tokens(text)
	set := make(TokenSet, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty
func (a TokenSet) Jaccard(b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Similarity is the token-set Jaccard similarity of two texts. Identical
// non-empty texts always score 1.
func Similarity(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return NewTokenSet(a).Jaccard(NewTokenSet(b))
}
