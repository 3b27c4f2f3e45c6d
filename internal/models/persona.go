package models

// JobIntent labels what the user wants to do with the documents
type JobIntent string

const (
	IntentComprehensiveReview JobIntent = "comprehensive_review"
	IntentSummary             JobIntent = "summary"
	IntentComparison          JobIntent = "comparison"
	IntentAnalysis            JobIntent = "analysis"
	IntentExtraction          JobIntent = "extraction"
	IntentPreparation         JobIntent = "preparation"
	IntentImplementation      JobIntent = "implementation"
	IntentOptimization        JobIntent = "optimization"
	// IntentLearning is only produced by the verb fallback.
	IntentLearning JobIntent = "learning"
)

// AnalysisDepth is how deep the user wants to go
type AnalysisDepth string

const (
	DepthComprehensive AnalysisDepth = "comprehensive"
	DepthFocused       AnalysisDepth = "focused"
	DepthOverview      AnalysisDepth = "overview"
)

// PersonaContext is the structured query derived from a persona and a job.
// It is built once per request and only read afterwards.
type PersonaContext struct {
	Role             string        `json:"role"`
	Domain           string        `json:"domain"`
	ExpertiseAreas   []string      `json:"expertise_areas"`
	JobKeywords      []string      `json:"job_keywords"`
	JobIntent        JobIntent     `json:"job_intent"`
	PriorityTopics   []string      `json:"priority_topics"`
	RelevantSections []string      `json:"relevant_sections"`
	AnalysisDepth    AnalysisDepth `json:"analysis_depth"`
}

// PrefersSection reports whether the section type is in the relevant section list
func (pc *PersonaContext) PrefersSection(t SectionType) bool {
	name := t.String()
	for _, s := range pc.RelevantSections {
		if s == name {
			return true
		}
	}
	return false
}
