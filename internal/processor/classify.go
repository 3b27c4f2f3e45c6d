package processor

import (
	"strings"

	"persona-doc-intel/internal/models"
)

// Relevance weights per persona-context list
const (
	weightJobKeywords    = 0.4
	weightPriorityTopics = 0.3
	weightExpertise      = 0.2
	weightSectionTerms   = 0.1
)

// classify assigns a section type from the title, falling back to body pattern hits
func (e *SectionExtractor) classify(title, content string) models.SectionType {
	titleLower := strings.ToLower(title)
	for _, tp := range e.cfg.TypePatterns {
		for _, re := range tp.Patterns {
			if re.MatchString(titleLower) {
				return tp.Type
			}
		}
	}

	contentLower := strings.ToLower(content)
	best, bestHits := models.SectionGeneral, 0
	for _, tp := range e.cfg.TypePatterns {
		hits := 0
		for _, re := range tp.Patterns {
			if re.MatchString(contentLower) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = tp.Type, hits
		}
	}
	return best
}

// relevance scores a body against the persona context, in [0, 1]
func relevance(content string, pc *models.PersonaContext) float64 {
	if pc == nil {
		return 0
	}
	lower := strings.ToLower(content)
	score := weightJobKeywords*overlap(lower, pc.JobKeywords) +
		weightPriorityTopics*overlap(lower, pc.PriorityTopics) +
		weightExpertise*overlap(lower, pc.ExpertiseAreas) +
		weightSectionTerms*overlap(lower, pc.RelevantSections)
	if score > 1 {
		return 1
	}
	return score
}

// overlap is the fraction of terms found in lower-cased text
func overlap(lower string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	matched := 0
	for _, t := range terms {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
