package models

import (
	"fmt"
	"strings"
)

// SectionType is the closed vocabulary of section classifications
type SectionType int

const (
	SectionGeneral SectionType = iota
	SectionAbstract
	SectionIntroduction
	SectionMethodology
	SectionResults
	SectionDiscussion
	SectionConclusion
	SectionContent
	SectionSummary
	SectionRecipe
	SectionGuide
	SectionProcedure
)

var sectionTypeNames = [...]string{
	SectionGeneral:      "general",
	SectionAbstract:     "abstract",
	SectionIntroduction: "introduction",
	SectionMethodology:  "methodology",
	SectionResults:      "results",
	SectionDiscussion:   "discussion",
	SectionConclusion:   "conclusion",
	SectionContent:      "content",
	SectionSummary:      "summary",
	SectionRecipe:       "recipe",
	SectionGuide:        "guide",
	SectionProcedure:    "procedure",
}

// SectionTypes lists every section type in declaration order
func SectionTypes() []SectionType {
	types := make([]SectionType, len(sectionTypeNames))
	for i := range sectionTypeNames {
		types[i] = SectionType(i)
	}
	return types
}

func (t SectionType) String() string {
	if t < 0 || int(t) >= len(sectionTypeNames) {
		return "unknown"
	}
	return sectionTypeNames[t]
}

// ParseSectionType maps a tag such as "results" to its SectionType
func ParseSectionType(s string) (SectionType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range sectionTypeNames {
		if name == s {
			return SectionType(i), true
		}
	}
	return SectionGeneral, false
}

// MarshalText encodes the type as its tag
func (t SectionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tag produced by MarshalText
func (t *SectionType) UnmarshalText(b []byte) error {
	parsed, ok := ParseSectionType(string(b))
	if !ok {
		return fmt.Errorf("unknown section type %q", string(b))
	}
	*t = parsed
	return nil
}
