package output

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/pipeline"
	"persona-doc-intel/internal/ranking"
)

type fakeRefiner struct {
	text  string
	err   error
	calls int
}

func (f *fakeRefiner) Refine(ctx context.Context, pc *models.PersonaContext, job string, s models.RankedSection) (string, error) {
	f.calls++
	return f.text, f.err
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

const coastalText = "The town has a small museum about local history. " +
	"Beaches near the harbour are clean and quiet. Short one. " +
	"Hotels near the beaches fill up in summer. " +
	"Parking is hard to find in the centre. " +
	"Book hotels early for large groups of friends."

func testRun() Run {
	pc := &models.PersonaContext{
		Role:           "Travel Planner",
		Domain:         "travel",
		JobIntent:      models.IntentPreparation,
		AnalysisDepth:  models.DepthFocused,
		PriorityTopics: []string{"beaches", "hotels"},
	}
	ranked := []models.RankedSection{
		{
			Section: models.Section{
				Document:    "nice.pdf",
				PageNumber:  2,
				Title:       "Coastal Stays",
				Content:     coastalText,
				Preview:     "The town has a small museum about local history.",
				Relevance:   0.8,
				WordCount:   50,
				Type:        models.SectionGuide,
				Origin:      models.OriginHeading,
				KeyConcepts: []string{"beaches", "hotels", "harbour", "groups", "friends", "summer"},
			},
			FinalScore: 0.91234,
			Factors:    map[string]float64{models.FactorRelevance: 0.80004, models.FactorLength: 1},
			Rank:       1,
		},
		{
			Section: models.Section{
				Document:    "marseille.pdf",
				PageNumber:  1,
				Title:       "Old Port Evenings",
				Content:     "The old port comes alive at night with restaurants and music for visitors.",
				Relevance:   0.4,
				WordCount:   13,
				Type:        models.SectionContent,
				Origin:      models.OriginPage,
				KeyConcepts: []string{"port", "restaurants"},
			},
			FinalScore: 0.55,
			Factors:    map[string]float64{models.FactorRelevance: 0.4},
			Rank:       2,
		},
	}
	docs := []models.Document{
		{ID: "nice.pdf", Pages: []models.Page{
			models.NewPage(1, "Welcome to Nice", false, true),
			models.NewPage(2, coastalText, true, false),
		}},
		{ID: "marseille.pdf", Pages: []models.Page{
			models.NewPage(1, "The old port comes alive at night.", false, false),
		}},
	}
	res := &pipeline.Result{
		Context: pc,
		Documents: []pipeline.DocumentStats{
			{Document: "nice.pdf", Pages: 2, Sections: 1},
			{Document: "marseille.pdf", Pages: 1, Sections: 1, DegradedPages: []int{1}},
		},
		Ranked:   ranked,
		Selected: ranked,
		Summary:  ranking.Summarize(ranked),
		Elapsed:  2 * time.Second,
		Budget:   60 * time.Second,
	}
	return Run{
		ID:        uuid.MustParse("6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6"),
		Persona:   "Travel Planner",
		Job:       "Plan a trip of 4 days for a group of 10 college friends",
		Documents: docs,
		Result:    res,
	}
}

func TestRefinedTextKeepsBestSentencesInOrder(t *testing.T) {
	s := models.Section{Content: coastalText, KeyConcepts: []string{"beaches", "hotels"}}

	got := RefinedText(s, 500)
	want := "Beaches near the harbour are clean and quiet. " +
		"Hotels near the beaches fill up in summer. " +
		"Book hotels early for large groups of friends."
	if got != want {
		t.Errorf("RefinedText = %q, want %q", got, want)
	}

	if short := RefinedText(s, 30); len([]rune(short)) > 30 {
		t.Errorf("RefinedText ignored max length: %q", short)
	}
}

func TestRefinedTextWithoutLongSentences(t *testing.T) {
	s := models.Section{Content: "Too short. Also short."}
	if got := RefinedText(s, 500); got != "Too short. Also short." {
		t.Errorf("RefinedText = %q", got)
	}
}

func TestMethodologyRelevance(t *testing.T) {
	s := models.Section{
		Content: "We describe the method and the experiment framework.",
		Type:    models.SectionMethodology,
	}
	if got := MethodologyRelevance(s); !approx(got, 0.72) {
		t.Errorf("methodology section = %v, want 0.72", got)
	}
	s.Type = models.SectionContent
	if got := MethodologyRelevance(s); !approx(got, 0.6) {
		t.Errorf("content section = %v, want 0.6", got)
	}
}

func TestContentDensity(t *testing.T) {
	tests := []struct {
		concepts int
		words    int
		want     float64
	}{
		{2, 100, 0.4},
		{10, 100, 1},
		{3, 0, 0},
	}
	for _, tt := range tests {
		s := models.Section{KeyConcepts: make([]string, tt.concepts), WordCount: tt.words}
		if got := ContentDensity(s); !approx(got, tt.want) {
			t.Errorf("ContentDensity(%d/%d) = %v, want %v", tt.concepts, tt.words, got, tt.want)
		}
	}
}

func TestChallengeOutput(t *testing.T) {
	run := testRun()
	run.Documents = append(run.Documents, models.Document{ID: "nice.pdf"})
	clock := func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	}

	g := NewGenerator(Options{SubsectionCount: 1}, WithClock(clock))
	out := g.Challenge(context.Background(), run)

	if got := out.Metadata.InputDocuments; len(got) != 2 || got[0] != "nice.pdf" || got[1] != "marseille.pdf" {
		t.Errorf("input documents = %v", got)
	}
	if out.Metadata.ProcessingTimestamp != "2024-03-01T11:00:00Z" {
		t.Errorf("timestamp = %q", out.Metadata.ProcessingTimestamp)
	}
	if len(out.ExtractedSections) != 2 {
		t.Fatalf("extracted sections = %d, want 2", len(out.ExtractedSections))
	}
	first := out.ExtractedSections[0]
	if first.Document != "nice.pdf" || first.SectionTitle != "Coastal Stays" || first.ImportanceRank != 1 || first.PageNumber != 2 {
		t.Errorf("first section = %+v", first)
	}
	if len(out.SubsectionAnalysis) != 1 {
		t.Fatalf("subsections = %d, want 1", len(out.SubsectionAnalysis))
	}
	if !strings.HasPrefix(out.SubsectionAnalysis[0].RefinedText, "Beaches near the harbour") {
		t.Errorf("refined text = %q", out.SubsectionAnalysis[0].RefinedText)
	}
}

func TestChallengeOutputEmptySelectionEncodesArrays(t *testing.T) {
	run := testRun()
	run.Result.Selected = nil

	out := NewGenerator(DefaultOptions()).Challenge(context.Background(), run)
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"extracted_sections":[]`) ||
		!strings.Contains(string(data), `"subsection_analysis":[]`) {
		t.Errorf("expected empty arrays, got %s", data)
	}
}

func TestGeneratorUsesRefiner(t *testing.T) {
	tests := []struct {
		name    string
		refiner *fakeRefiner
		prefix  string
	}{
		{"success", &fakeRefiner{text: "Stay near the beaches."}, "Stay near the beaches."},
		{"failure falls back", &fakeRefiner{err: errors.New("model offline")}, "Beaches near the harbour"},
		{"empty falls back", &fakeRefiner{}, "Beaches near the harbour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(DefaultOptions(), WithRefiner(tt.refiner))
			out := g.Challenge(context.Background(), testRun())
			if tt.refiner.calls != 2 {
				t.Errorf("refiner calls = %d, want 2", tt.refiner.calls)
			}
			if got := out.SubsectionAnalysis[0].RefinedText; !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("refined text = %q, want prefix %q", got, tt.prefix)
			}
		})
	}
}

func TestDetailedOutput(t *testing.T) {
	run := testRun()
	out := NewGenerator(DefaultOptions()).Detailed(context.Background(), run)

	md := out.Metadata
	if md.RunID != run.ID.String() || md.SystemVersion != Version {
		t.Errorf("metadata ids = %q %q", md.RunID, md.SystemVersion)
	}
	if md.DocumentsProcessed != 2 || md.TotalPagesAnalyzed != 3 || !md.WithinTimeLimit || md.TimeBudgetSeconds != 60 {
		t.Errorf("metadata = %+v", md)
	}
	if out.PersonaContext != run.Result.Context {
		t.Error("persona context not carried through")
	}

	first := out.ExtractedSections[0]
	if first.FinalScore != 0.912 || first.SectionType != "guide" || first.Origin != "heading" {
		t.Errorf("first section = %+v", first)
	}
	if len(first.KeyConcepts) != 5 {
		t.Errorf("key concepts = %v, want 5", first.KeyConcepts)
	}

	sub := out.SubSectionAnalysis[0]
	if sub.RankingFactors[models.FactorRelevance] != 0.8 {
		t.Errorf("factors = %v", sub.RankingFactors)
	}
	if sub.SectionImportance != 0.912 {
		t.Errorf("importance = %v", sub.SectionImportance)
	}
	if out.RankingSummary.Total != 2 {
		t.Errorf("summary total = %d", out.RankingSummary.Total)
	}
}

func TestComputeStats(t *testing.T) {
	run := testRun()
	stats := ComputeStats(run.Documents, run.Result)

	if stats.Documents != 2 || stats.Pages != 3 || stats.CandidateSections != 2 {
		t.Errorf("counts = %+v", stats)
	}
	if stats.AboveHalfRelevance != 1 || !approx(stats.AverageRelevance, 0.6) {
		t.Errorf("relevance = %d %v", stats.AboveHalfRelevance, stats.AverageRelevance)
	}
	if stats.DegradedPages != 1 {
		t.Errorf("degraded = %d", stats.DegradedPages)
	}
	if !approx(stats.Performance.PagesPerSecond, 1.5) || !approx(stats.Performance.SectionsPerDocument, 1) {
		t.Errorf("performance = %+v", stats.Performance)
	}
	da := stats.DocumentAnalysis
	if da.WithTables != 1 || da.WithImages != 1 || da.SizeDistribution.Small != 2 || !approx(da.AveragePages, 1.5) {
		t.Errorf("document analysis = %+v", da)
	}
}

func TestReport(t *testing.T) {
	report := Report(testRun())
	for _, want := range []string{
		"Persona: Travel Planner",
		"Intent: preparation, depth: focused",
		"1. Coastal Stays (nice.pdf, page 2) score 0.912",
		"Degraded pages: 1",
		"guide: 1",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	path, err := WriteJSON(dir, "run: 1", map[string]int{"sections": 3})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if filepath.Base(path) != "run_1.json" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil || got["sections"] != 3 {
		t.Errorf("decoded %v (%v)", got, err)
	}
}
