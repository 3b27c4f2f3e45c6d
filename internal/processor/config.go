package processor

import (
	"regexp"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"
)

const (
	// Maximum size for a single section body
	MaxSectionLength = 2000
	// Minimum size for a section body
	MinSectionLength = 100
	// Relevance below this drops the section
	MinRelevance = 0.01
)

// TypePattern lists the title/body patterns that indicate a section type
type TypePattern struct {
	Type     models.SectionType
	Patterns []*regexp.Regexp
}

// Theme is a content theme used to synthesize titles
type Theme struct {
	Name     string
	Title    string
	Keywords []string
}

// ThemeBoost multiplies the score of the listed themes when Key appears in
// the persona role or domain.
type ThemeBoost struct {
	Key    string
	Themes []string
}

// ExtractorConfig holds the thresholds and heuristic tables of the SectionExtractor
type ExtractorConfig struct {
	MinSectionLength int
	MaxSectionLength int
	MinRelevance     float64
	MaxHeadingLines  int
	LookaheadLines   int
	PreviewLength    int
	KeyConcepts      int

	StopWords         textutil.StopWords
	TypePatterns      []TypePattern
	Themes            []Theme
	RoleThemeBoosts   []ThemeBoost
	IntentThemeBoosts map[models.JobIntent][]string
	GenericTitles     []string
	GenericPhrases    []string
	FilenamePrefixes  []string
}

// DefaultExtractorConfig returns the built-in thresholds and tables
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MinSectionLength: MinSectionLength,
		MaxSectionLength: MaxSectionLength,
		MinRelevance:     MinRelevance,
		MaxHeadingLines:  15,
		LookaheadLines:   3,
		PreviewLength:    200,
		KeyConcepts:      10,
		StopWords:        textutil.DefaultStopWords(),
		TypePatterns: []TypePattern{
			typePattern(models.SectionAbstract, "abstract", "summary", "overview", "synopsis"),
			typePattern(models.SectionIntroduction, "introduction", "background", "motivation", "overview", "purpose"),
			typePattern(models.SectionMethodology, "method(?:ology)?", "approach", "technique", "procedure", "implementation", "process", "strategy"),
			typePattern(models.SectionResults, "results?", "findings?", "outcome", "analysis", "data", "performance", "evaluation"),
			typePattern(models.SectionDiscussion, "discussion", "interpretation", "implications?", "analysis", "evaluation", "assessment"),
			typePattern(models.SectionConclusion, "conclusion", "summary", "final", "closing", "recommendations?"),
			typePattern(models.SectionSummary, "executive summary", "key takeaways", "highlights", "at a glance"),
			typePattern(models.SectionRecipe, "recipes?", "ingredients?", "servings?", "cooking", "dish"),
			typePattern(models.SectionGuide, "guide", "tips?", "how to", "tutorial", "checklist", "things to do"),
			typePattern(models.SectionProcedure, "steps?", "instructions?", "step-by-step"),
			typePattern(models.SectionContent, "content", "details?", "information", "description", "explanation"),
			typePattern(models.SectionGeneral, "important", "key", "main", "primary", "essential", "critical"),
		},
		Themes: []Theme{
			{"form_creation", "Creating and Managing Forms", []string{"form", "fillable", "interactive", "field", "checkbox"}},
			{"signature_process", "Signatures and Approvals", []string{"signature", "e-signature", "electronic", "authenticate", "sign"}},
			{"document_conversion", "Converting and Exporting Documents", []string{"convert", "export", "transform", "save as"}},
			{"document_sharing", "Sharing and Collaboration", []string{"share", "distribute", "send", "collaborate"}},
			{"editing_tools", "Editing and Revisions", []string{"edit", "modify", "revise", "annotation"}},
			{"api_integration", "API Integration", []string{"api", "integration", "endpoint", "webhook"}},
			{"security_features", "Security and Access Control", []string{"security", "encryption", "password", "permission"}},
			{"workflow_automation", "Workflow Automation", []string{"workflow", "automation", "batch", "pipeline"}},
			{"menu_development", "Recipes and Menu Planning", []string{"menu", "recipe", "ingredient", "nutrition", "dietary"}},
			{"compliance_management", "Compliance and Regulations", []string{"compliance", "regulation", "requirement", "audit"}},
			{"training_materials", "Training and Learning Resources", []string{"training", "tutorial", "learning", "instruction"}},
			{"best_practices", "Best Practices and Recommendations", []string{"best practice", "recommendation", "guideline"}},
			{"troubleshooting", "Troubleshooting Common Issues", []string{"troubleshoot", "problem", "issue", "error", "fix"}},
			{"optimization", "Performance Optimization", []string{"optimize", "improve", "enhance", "efficiency"}},
			{"travel_planning", "Travel Planning Essentials", []string{"itinerary", "hotel", "travel", "trip", "destination"}},
			{"activities", "Activities and Attractions", []string{"beach", "tour", "hiking", "nightlife", "museum"}},
			{"cuisine", "Culinary Experiences", []string{"restaurant", "cuisine", "wine", "dining", "dish"}},
			{"financial_performance", "Financial Performance", []string{"revenue", "profit", "earnings", "margin", "investment"}},
			{"research_methods", "Research Methods and Data", []string{"experiment", "dataset", "sample", "hypothesis"}},
		},
		RoleThemeBoosts: []ThemeBoost{
			{"hr", []string{"form_creation", "compliance_management", "workflow_automation"}},
			{"business", []string{"document_sharing", "workflow_automation", "compliance_management"}},
			{"engineer", []string{"api_integration", "security_features", "troubleshooting"}},
			{"developer", []string{"api_integration", "security_features", "troubleshooting"}},
			{"food", []string{"menu_development", "compliance_management", "best_practices"}},
			{"contractor", []string{"menu_development", "best_practices"}},
			{"legal", []string{"compliance_management", "security_features", "document_sharing"}},
			{"travel", []string{"travel_planning", "activities", "cuisine"}},
			{"planner", []string{"travel_planning", "activities"}},
			{"analyst", []string{"financial_performance", "research_methods"}},
			{"researcher", []string{"research_methods"}},
		},
		IntentThemeBoosts: map[models.JobIntent][]string{
			models.IntentPreparation:    {"form_creation", "menu_development", "travel_planning"},
			models.IntentImplementation: {"form_creation", "workflow_automation", "api_integration"},
			models.IntentOptimization:   {"optimization", "best_practices"},
			models.IntentAnalysis:       {"financial_performance", "research_methods"},
			models.IntentExtraction:     {"compliance_management", "security_features"},
			models.IntentLearning:       {"training_materials"},
		},
		GenericTitles: []string{
			"full page content", "page content", "general", "introduction", "conclusion", "content section",
		},
		GenericPhrases: []string{
			"methodology and approach", "data and metrics", "general overview", "introduction to",
			"background information", "theoretical framework", "abstract concepts",
			"preliminary discussion", "general principles", "comprehensive overview",
			"detailed analysis", "complete guide",
		},
		FilenamePrefixes: []string{"Learn ", "Document ", "Report ", "Guide to "},
	}
}

func typePattern(t models.SectionType, patterns ...string) TypePattern {
	tp := TypePattern{Type: t}
	for _, p := range patterns {
		tp.Patterns = append(tp.Patterns, regexp.MustCompile(`\b`+p+`\b`))
	}
	return tp
}
