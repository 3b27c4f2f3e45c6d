package output

import (
	"sort"
	"strings"
	"unicode/utf8"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"
)

var methodologyTerms = []string{
	"method", "approach", "technique", "procedure", "algorithm",
	"implementation", "experiment", "analysis", "framework", "model",
}

// RefinedText keeps the three sentences with the most key-concept hits, in
// their original order, capped at maxLen characters.
func RefinedText(s models.Section, maxLen int) string {
	content := textutil.Clean(s.Content)

	type scored struct {
		idx   int
		text  string
		score int
	}
	var candidates []scored
	for i, sentence := range textutil.Sentences(content) {
		if utf8.RuneCountInString(sentence) <= 20 {
			continue
		}
		lower := strings.ToLower(sentence)
		hits := 0
		for _, kc := range s.KeyConcepts {
			if strings.Contains(lower, strings.ToLower(kc)) {
				hits++
			}
		}
		candidates = append(candidates, scored{idx: i, text: sentence, score: hits})
	}
	if len(candidates) == 0 {
		return textutil.Truncate(content, maxLen)
	}

	if len(candidates) > 3 {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
		candidates = candidates[:3]
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].idx < candidates[j].idx
		})
	}

	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = c.text
	}
	return textutil.Truncate(strings.Join(parts, " "), maxLen)
}

// MethodologyRelevance is the share of methodology terms present, doubled
// and capped at 1, with a lift for methodology sections.
func MethodologyRelevance(s models.Section) float64 {
	lower := strings.ToLower(s.Content)
	matches := 0
	for _, term := range methodologyTerms {
		if strings.Contains(lower, term) {
			matches++
		}
	}
	score := min(1.0, float64(matches)/float64(len(methodologyTerms))*2)
	if s.Type == models.SectionMethodology {
		score *= 1.2
	}
	return round(min(1.0, score), 3)
}

// ContentDensity is key concepts per word, normalized so 0.05 scores 1
func ContentDensity(s models.Section) float64 {
	if s.WordCount == 0 {
		return 0
	}
	density := float64(len(s.KeyConcepts)) / float64(s.WordCount)
	return round(min(1.0, density/0.05), 3)
}
