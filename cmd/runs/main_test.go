package main

import (
	"strings"
	"testing"

	"persona-doc-intel/internal/database"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  command
		ok    bool
	}{
		{"/runs", command{name: "runs"}, true},
		{"/RUN  6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6 ", command{name: "run", arg: "6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6"}, true},
		{"/doc lyon guide", command{name: "doc", arg: "lyon guide"}, true},
		{"/unknown", command{}, false},
		{"lyon", command{}, false},
	}
	for _, tt := range tests {
		got, ok := parseCommand(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseCommand(%q) = %+v, %v; want %+v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatSections(t *testing.T) {
	if got := formatSections(nil); got != "No sections found.\n" {
		t.Errorf("empty = %q", got)
	}

	out := formatSections([]database.StoredSection{{
		Rank:        1,
		Title:       "Food Markets",
		Document:    "lyon.pdf",
		PageNumber:  3,
		FinalScore:  0.8214,
		SectionType: "guide",
		Factors:     map[string]float64{"relevance": 0.7, "coverage": 0.5},
	}})
	for _, want := range []string{"1. Food Markets [lyon.pdf, Page: 3] score 0.821 (guide)", "coverage=0.50 relevance=0.70"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Investment Analyst", 10); got != "Investmen…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("Chef", 10); got != "Chef" {
		t.Errorf("truncate = %q", got)
	}
}
