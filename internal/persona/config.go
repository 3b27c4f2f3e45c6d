package persona

import (
	"regexp"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"
)

const (
	MaxExpertiseAreas   = 10
	MaxJobKeywords      = 20
	MaxPriorityTopics   = 20
	MaxRelevantSections = 15
)

// IntentRule maps a job intent to the words that trigger it
type IntentRule struct {
	Intent   models.JobIntent
	Triggers []string
}

// DomainCategory groups a broad field with the terms and sections that matter in it
type DomainCategory struct {
	Name     string
	Triggers []string
	Topics   []string
	Sections []string
}

// Config holds the heuristic tables used by the Analyzer. Tables are never
// modified after construction.
type Config struct {
	StopWords        textutil.StopWords
	RolePatterns     []*regexp.Regexp
	DomainPatterns   []*regexp.Regexp
	ExpertisePattern []*regexp.Regexp
	RoleNouns        []string
	IntentRules      []IntentRule
	IntentSections   map[models.JobIntent][]string
	UniversalSection []string
	Categories       []DomainCategory
	ComprehensiveCue []string
	OverviewCue      []string
}

// DefaultIntentRules returns the ordered intent trigger table
func DefaultIntentRules() []IntentRule {
	return []IntentRule{
		{models.IntentComprehensiveReview, []string{"comprehensive", "complete", "thorough", "detailed", "full"}},
		{models.IntentSummary, []string{"summarize", "summarise", "summary", "overview", "brief", "key points", "main"}},
		{models.IntentComparison, []string{"compare", "contrast", "versus", "difference", "similar"}},
		{models.IntentAnalysis, []string{"analyze", "analyse", "examine", "evaluate", "assess", "investigate"}},
		{models.IntentExtraction, []string{"extract", "identify", "find", "locate", "list"}},
		{models.IntentPreparation, []string{"prepare", "plan", "study", "learn", "understand", "review"}},
		{models.IntentImplementation, []string{"implement", "build", "deploy", "configure", "set up", "develop"}},
		{models.IntentOptimization, []string{"optimize", "optimise", "improve", "enhance", "streamline", "reduce"}},
	}
}

// DefaultConfig returns the built-in tables
func DefaultConfig() Config {
	return Config{
		StopWords: textutil.DefaultStopWords(),
		RolePatterns: compileAll(
			`(phd|doctoral|postdoc|graduate)\s+(?:student|researcher)`,
			`(undergraduate|bachelor|masters?)\s+student`,
			`(researcher|scientist|analyst|engineer|developer)`,
			`(professor|instructor|teacher|lecturer)`,
			`(manager|director|executive|lead)`,
			`(consultant|advisor|specialist|planner|contractor)`,
			`(student|learner|trainee)`,
		),
		DomainPatterns: compileAll(
			`\bin\s+([a-z][a-z\s]*?)(?:\s*[,.]|$)`,
			`\bof\s+([a-z][a-z\s]*?)(?:\s*[,.]|$)`,
			`([a-z]+)\s+(?:specialist|expert|researcher|analyst|student)`,
		),
		ExpertisePattern: compileAll(
			`specializ(?:ing|ed)\s+in\s+([^,.]+)`,
			`expert\s+in\s+([^,.]+)`,
			`focus(?:ing|ed)\s+on\s+([^,.]+)`,
			`working\s+(?:in|on)\s+([^,.]+)`,
		),
		RoleNouns: []string{
			"phd", "doctoral", "postdoc", "graduate", "undergraduate", "bachelor",
			"master", "masters", "student", "researcher", "scientist", "analyst",
			"engineer", "developer", "professor", "instructor", "teacher", "lecturer",
			"manager", "director", "executive", "lead", "consultant", "advisor",
			"specialist", "planner", "contractor", "learner", "trainee", "professional",
			"senior", "junior", "expert",
		},
		IntentRules: DefaultIntentRules(),
		IntentSections: map[models.JobIntent][]string{
			models.IntentComprehensiveReview: {"methodology", "results", "discussion", "conclusion", "introduction"},
			models.IntentSummary:             {"abstract", "summary", "conclusion", "key findings", "overview"},
			models.IntentComparison:          {"results", "analysis", "comparison", "evaluation", "performance"},
			models.IntentAnalysis:            {"analysis", "results", "data", "findings", "discussion"},
			models.IntentExtraction:          {"methodology", "content", "procedure", "details"},
			models.IntentPreparation:         {"introduction", "guide", "background", "procedure", "recipe"},
			models.IntentImplementation:      {"procedure", "methodology", "guide", "steps", "implementation"},
			models.IntentOptimization:        {"results", "analysis", "performance", "evaluation", "discussion"},
			models.IntentLearning:            {"introduction", "overview", "guide", "concepts", "examples"},
		},
		UniversalSection: []string{"overview", "summary", "key points", "highlights", "conclusion"},
		Categories: []DomainCategory{
			{
				Name:     "research",
				Triggers: []string{"research", "academic", "scientific", "phd", "doctoral"},
				Topics:   []string{"methodology", "literature", "analysis", "study", "findings", "results", "conclusion"},
				Sections: []string{"literature review", "methodology", "results", "discussion"},
			},
			{
				Name:     "finance",
				Triggers: []string{"finance", "banking", "investment", "investor", "economic", "financial"},
				Topics:   []string{"financial", "investment", "returns", "risk", "portfolio", "market", "revenue"},
				Sections: []string{"financial analysis", "results", "analysis"},
			},
			{
				Name:     "business",
				Triggers: []string{"business", "corporate", "commercial", "sales", "marketing", "hr", "manager"},
				Topics:   []string{"revenue", "strategy", "market", "performance", "growth", "trends", "compliance"},
				Sections: []string{"executive summary", "market analysis", "strategy"},
			},
			{
				Name:     "education",
				Triggers: []string{"education", "student", "learning", "school", "university", "teacher"},
				Topics:   []string{"concepts", "principles", "examples", "exercises", "theory", "practice"},
				Sections: []string{"concepts", "examples", "exercises", "summary"},
			},
			{
				Name:     "technical",
				Triggers: []string{"technical", "engineering", "software", "computer", "technology", "developer"},
				Topics:   []string{"implementation", "architecture", "specifications", "documentation", "procedures"},
				Sections: []string{"specifications", "implementation", "architecture", "procedure"},
			},
			{
				Name:     "food",
				Triggers: []string{"food", "chef", "cook", "catering", "contractor", "culinary", "menu"},
				Topics:   []string{"recipe", "ingredients", "vegetarian", "menu", "dish", "buffet", "dietary"},
				Sections: []string{"recipe", "ingredients", "instructions"},
			},
			{
				Name:     "travel",
				Triggers: []string{"travel", "trip", "tour", "planner", "vacation"},
				Topics:   []string{"hotel", "restaurant", "activities", "itinerary", "beach", "cuisine", "nightlife"},
				Sections: []string{"guide", "tips", "activities"},
			},
		},
		ComprehensiveCue: []string{"comprehensive", "detailed", "thorough", "complete", "full"},
		OverviewCue:      []string{"brief", "summary", "overview", "quick", "key"},
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}
