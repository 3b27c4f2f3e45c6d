package models

import (
	"strings"
	"unicode/utf8"
)

// Page is one page of an ingested document
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
	HasTables  bool   `json:"has_tables"`
	HasImages  bool   `json:"has_images"`
}

// NewPage builds a page and fills in its word and character counts
func NewPage(number int, text string, hasTables, hasImages bool) Page {
	return Page{
		PageNumber: number,
		Text:       text,
		WordCount:  len(strings.Fields(text)),
		CharCount:  utf8.RuneCountInString(text),
		HasTables:  hasTables,
		HasImages:  hasImages,
	}
}

// Document is an ordered list of pages under a source identifier
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Pages []Page `json:"pages"`
}

// SectionOrigin records which extraction tier produced a section
type SectionOrigin string

const (
	OriginHeading      SectionOrigin = "heading"
	OriginContentBlock SectionOrigin = "content_block"
	OriginPage         SectionOrigin = "page"
)

// Section is a titled span of a page, the unit of relevance scoring
type Section struct {
	Document    string        `json:"document"`
	PageNumber  int           `json:"page_number"`
	Title       string        `json:"section_title"`
	Content     string        `json:"content"`
	Preview     string        `json:"preview"`
	Relevance   float64       `json:"relevance_score"`
	WordCount   int           `json:"word_count"`
	CharCount   int           `json:"char_count"`
	Type        SectionType   `json:"section_type"`
	Origin      SectionOrigin `json:"origin"`
	KeyConcepts []string      `json:"key_concepts"`
}

// Ranking factor names used in RankedSection.Factors
const (
	FactorRelevance     = "relevance"
	FactorDiversity     = "diversity"
	FactorCoverage      = "coverage"
	FactorSectionType   = "section_type"
	FactorIntentBonus   = "intent_bonus"
	FactorLength        = "length"
	FactorPriorityBoost = "priority_boost"
)

// RankedSection wraps a Section with its ranking factors and final rank
type RankedSection struct {
	Section
	DiversityBonus float64            `json:"diversity_bonus"`
	CoverageScore  float64            `json:"coverage_score"`
	FinalScore     float64            `json:"final_score"`
	Factors        map[string]float64 `json:"ranking_factors"`
	Rank           int                `json:"importance_rank"`
}
