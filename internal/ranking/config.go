package ranking

import (
	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/persona"
)

// Weights are the shares of the weighted ranking terms. Priority is the
// nominal share reserved for the priority boost; the boost itself is added
// unscaled on top of the weighted sum.
type Weights struct {
	Relevance   float64 `yaml:"relevance"`
	Priority    float64 `yaml:"priority"`
	Diversity   float64 `yaml:"diversity"`
	Coverage    float64 `yaml:"coverage"`
	SectionType float64 `yaml:"section_type"`
	Length      float64 `yaml:"length"`
}

// DefaultWeights returns the reference weights. They sum to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Relevance:   0.35,
		Priority:    0.25,
		Diversity:   0.15,
		Coverage:    0.15,
		SectionType: 0.05,
		Length:      0.05,
	}
}

// Sum adds up every share
func (w Weights) Sum() float64 {
	return w.Relevance + w.Priority + w.Diversity + w.Coverage + w.SectionType + w.Length
}

// Config holds the scoring tables of the Engine
type Config struct {
	Weights Weights

	TypeImportance    map[models.SectionType]float64
	DefaultImportance float64

	// IntentPreferences orders the section types each intent favours
	IntentPreferences map[models.JobIntent][]models.SectionType
	IntentBonus       float64
	IntentRules       []persona.IntentRule

	MinWords int
	MaxWords int

	MaxBoost      float64
	TopicBoost    float64
	MaxTopicBoost float64
	KeywordBoost  float64
	MaxKeyword    float64
	IntentWord    float64
	TypeMatch     float64
	CoverageLift  float64
}

// DefaultConfig returns the reference scoring tables
func DefaultConfig() Config {
	return Config{
		Weights: DefaultWeights(),
		TypeImportance: map[models.SectionType]float64{
			models.SectionAbstract:     0.9,
			models.SectionResults:      0.9,
			models.SectionConclusion:   0.85,
			models.SectionSummary:      0.85,
			models.SectionDiscussion:   0.8,
			models.SectionMethodology:  0.8,
			models.SectionContent:      0.75,
			models.SectionIntroduction: 0.7,
			models.SectionGeneral:      0.6,
		},
		DefaultImportance: 0.5,
		IntentPreferences: map[models.JobIntent][]models.SectionType{
			models.IntentComprehensiveReview: {
				models.SectionMethodology, models.SectionResults, models.SectionDiscussion,
				models.SectionConclusion, models.SectionIntroduction,
			},
			models.IntentSummary: {
				models.SectionAbstract, models.SectionSummary, models.SectionConclusion, models.SectionResults,
			},
			models.IntentComparison: {
				models.SectionResults, models.SectionDiscussion, models.SectionMethodology,
			},
			models.IntentAnalysis: {
				models.SectionResults, models.SectionMethodology, models.SectionDiscussion, models.SectionContent,
			},
			models.IntentExtraction: {
				models.SectionContent, models.SectionResults, models.SectionProcedure,
			},
			models.IntentPreparation: {
				models.SectionIntroduction, models.SectionGuide, models.SectionProcedure,
				models.SectionContent, models.SectionRecipe,
			},
			models.IntentImplementation: {
				models.SectionProcedure, models.SectionGuide, models.SectionMethodology,
			},
			models.IntentOptimization: {
				models.SectionResults, models.SectionDiscussion, models.SectionGuide,
			},
			models.IntentLearning: {
				models.SectionIntroduction, models.SectionGuide, models.SectionContent,
			},
		},
		IntentBonus:   0.3,
		IntentRules:   persona.DefaultIntentRules(),
		MinWords:      50,
		MaxWords:      300,
		MaxBoost:      10.0,
		TopicBoost:    0.6,
		MaxTopicBoost: 3.0,
		KeywordBoost:  0.4,
		MaxKeyword:    2.0,
		IntentWord:    1.0,
		TypeMatch:     1.0,
		CoverageLift:  1.1,
	}
}
