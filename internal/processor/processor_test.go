package processor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"persona-doc-intel/internal/models"
)

func travelPlanner() *models.PersonaContext {
	return &models.PersonaContext{
		Role:             "Travel Planner",
		Domain:           "travel",
		JobKeywords:      []string{"hotels", "beach", "groups"},
		JobIntent:        models.IntentPreparation,
		PriorityTopics:   []string{"hotels", "travel"},
		RelevantSections: []string{"introduction", "guide", "summary"},
	}
}

func marketAnalyst() *models.PersonaContext {
	return &models.PersonaContext{
		Role:           "Analyst",
		Domain:         "finance",
		JobKeywords:    []string{"revenue", "market"},
		JobIntent:      models.IntentAnalysis,
		PriorityTopics: []string{"revenue", "growth"},
	}
}

func TestExtractPageHeadings(t *testing.T) {
	text := strings.Join([]string{
		"## Revenue Growth Trends",
		"This report examines revenue growth across the retail sector over the last five years in detail.",
		"It covers market trends and competitive dynamics affecting the major players.",
		"",
		"## Market Share Analysis",
		"We collected quarterly revenue data from annual filings of twenty listed companies across the market.",
		"Growth rates were computed using compound annual formulas over each reporting period.",
	}, "\n")

	e := NewSectionExtractor(DefaultExtractorConfig())
	sections := e.ExtractPage("retail.pdf", models.NewPage(3, text, false, false), marketAnalyst())

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	wantTitles := []string{"Revenue Growth Trends", "Market Share Analysis"}
	for i, s := range sections {
		if s.Title != wantTitles[i] {
			t.Errorf("section %d title = %q, want %q", i, s.Title, wantTitles[i])
		}
		if s.Origin != models.OriginHeading {
			t.Errorf("section %d origin = %q, want heading", i, s.Origin)
		}
		if s.PageNumber != 3 || s.Document != "retail.pdf" {
			t.Errorf("section %d location = %s p%d", i, s.Document, s.PageNumber)
		}
		if strings.Contains(s.Content, "##") {
			t.Errorf("section %d content includes a heading line: %q", i, s.Content)
		}
	}
	if sections[1].Type != models.SectionResults {
		t.Errorf("expected analysis heading to classify as results, got %s", sections[1].Type)
	}
}

func TestExtractPageContentBlock(t *testing.T) {
	text := "Travel tips for groups\n" +
		"The coastal towns offer affordable hotels for groups of friends. " +
		"Book early to secure the best rates near the beach."

	e := NewSectionExtractor(DefaultExtractorConfig())
	sections := e.ExtractPage("south.pdf", models.NewPage(1, text, false, false), travelPlanner())

	if len(sections) != 1 {
		t.Fatalf("expected exactly one section, got %d", len(sections))
	}
	s := sections[0]
	if s.Origin != models.OriginContentBlock {
		t.Errorf("origin = %q, want content_block", s.Origin)
	}
	if s.Title != "Travel tips for groups" {
		t.Errorf("title = %q", s.Title)
	}
	if s.Type != models.SectionGuide {
		t.Errorf("type = %s, want guide", s.Type)
	}
	if strings.HasPrefix(s.Content, "Travel tips") {
		t.Errorf("title line should be removed from content: %q", s.Content)
	}
	if s.Relevance <= 0 || s.Relevance > 1 {
		t.Errorf("relevance %.3f out of range", s.Relevance)
	}
}

func TestExtractPageTitleCaseParagraph(t *testing.T) {
	text := "Coastal Hotel Booking Tips\n" +
		"The coastal towns offer affordable hotels for groups of friends. " +
		"Book early to secure the best rates near the beach."

	e := NewSectionExtractor(DefaultExtractorConfig())
	sections := e.ExtractPage("south.pdf", models.NewPage(1, text, false, false), travelPlanner())

	if len(sections) != 1 {
		for _, s := range sections {
			t.Logf("origin=%s title=%q", s.Origin, s.Title)
		}
		t.Fatalf("expected exactly one section, got %d", len(sections))
	}
	s := sections[0]
	if s.Origin != models.OriginContentBlock {
		t.Errorf("origin = %q, want content_block", s.Origin)
	}
	if s.Title != "Coastal Hotel Booking Tips" {
		t.Errorf("title = %q", s.Title)
	}
	if strings.HasPrefix(s.Content, "Coastal Hotel") {
		t.Errorf("title line should be removed from content: %q", s.Content)
	}
}

func TestExtractPageBodiesAreDistinct(t *testing.T) {
	pages := []string{
		"Coastal Hotel Booking Tips\n" +
			"The coastal towns offer affordable hotels for groups of friends. " +
			"Book early to secure the best rates near the beach.",
		"Beach Activities For Groups\n" +
			"Rent kayaks and paddle boards along the coast; groups of friends get discounted rates before noon daily.\n\n" +
			"Evening Dining Along The Port\n" +
			"Seafood restaurants near the harbour take group bookings and stay open late through the summer months.",
	}
	e := NewSectionExtractor(DefaultExtractorConfig())
	for i, text := range pages {
		sections := e.ExtractPage("south.pdf", models.NewPage(i+1, text, false, false), travelPlanner())
		if len(sections) == 0 {
			t.Fatalf("page %d produced no sections", i+1)
		}
		seen := make(map[string]models.SectionOrigin)
		for _, s := range sections {
			if prev, ok := seen[s.Content]; ok {
				t.Errorf("page %d: body repeated in %s and %s sections: %q", i+1, prev, s.Origin, s.Content)
			}
			seen[s.Content] = s.Origin
		}
	}
}

func TestExtractPageFallsBackToWholePage(t *testing.T) {
	text := "Hotels near the beach fill quickly in summer months.\n\n" +
		"Book the coastal hotels at least two months ahead.\n\n" +
		"Group rates apply for parties of ten or more guests."

	e := NewSectionExtractor(DefaultExtractorConfig())
	sections := e.ExtractPage("south.pdf", models.NewPage(2, text, false, false), travelPlanner())

	if len(sections) != 1 {
		t.Fatalf("expected one whole-page section, got %d", len(sections))
	}
	if sections[0].Origin != models.OriginPage {
		t.Errorf("origin = %q, want page", sections[0].Origin)
	}
	if sections[0].Title != "Travel Planning Essentials" {
		t.Errorf("expected a theme title, got %q", sections[0].Title)
	}
}

func TestExtractDocumentRecordsDegradedPages(t *testing.T) {
	good := "Travel tips for groups\n" +
		"The coastal towns offer affordable hotels for groups of friends. " +
		"Book early to secure the best rates near the beach."
	doc := models.Document{
		ID: "south.pdf",
		Pages: []models.Page{
			models.NewPage(1, good, false, false),
			models.NewPage(2, "Short.", false, false),
			models.NewPage(3, strings.Repeat("Quantum chromodynamics describes strong interactions. ", 4), false, false),
		},
	}

	var logs bytes.Buffer
	e := NewSectionExtractor(DefaultExtractorConfig(), WithExtractorLogger(zerolog.New(&logs).Level(zerolog.WarnLevel)))
	res := e.ExtractDocument(doc, travelPlanner())

	if res.Pages != 3 {
		t.Errorf("pages = %d, want 3", res.Pages)
	}
	if len(res.Sections) != 1 {
		t.Errorf("expected 1 section, got %d", len(res.Sections))
	}
	if len(res.DegradedPages) != 2 || res.DegradedPages[0] != 2 || res.DegradedPages[1] != 3 {
		t.Errorf("degraded pages = %v, want [2 3]", res.DegradedPages)
	}
	out := logs.String()
	if got := strings.Count(out, `"message":"page produced no sections"`); got != 2 {
		t.Errorf("expected 2 warnings for degraded pages, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"document":"south.pdf"`) || !strings.Contains(out, `"page":3`) {
		t.Errorf("warning missing fields:\n%s", out)
	}
}

func TestSectionBounds(t *testing.T) {
	long := strings.Repeat("Revenue and market growth remained strong through the year. ", 60)
	text := "## Annual Revenue Review\n" + long + "\n\n## Market Outlook Notes\nToo short."

	e := NewSectionExtractor(DefaultExtractorConfig())
	sections := e.ExtractPage("annual.pdf", models.NewPage(1, text, false, false), marketAnalyst())

	if len(sections) == 0 {
		t.Fatal("expected at least one section")
	}
	for _, s := range sections {
		if s.CharCount < MinSectionLength || s.CharCount > MaxSectionLength {
			t.Errorf("section %q has %d chars", s.Title, s.CharCount)
		}
		if s.Relevance < 0 || s.Relevance > 1 {
			t.Errorf("section %q relevance %.3f", s.Title, s.Relevance)
		}
		if len(s.KeyConcepts) == 0 {
			t.Errorf("section %q has no key concepts", s.Title)
		}
		if s.Preview == "" {
			t.Errorf("section %q has no preview", s.Title)
		}
	}
}

func TestFindHeadings(t *testing.T) {
	body := "This paragraph gives enough detail to count as substantial content."
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"markdown", []string{"# Budget Planning", body}, "Budget Planning"},
		{"numbered", []string{"2.1 Market Entry Strategy", body}, "Market Entry Strategy"},
		{"all caps", []string{"EXECUTIVE SUMMARY", body}, "EXECUTIVE SUMMARY"},
		{"colon", []string{"Key Findings:", body}, "Key Findings:"},
		{"how to", []string{"How to fill interactive forms", body}, "How to fill interactive forms"},
		{"title case", []string{"Coastal Adventures in Provence", body}, "Coastal Adventures in Provence"},
		{"sentence", []string{"This is a normal sentence.", body}, ""},
		{"bullet before list", []string{"• Budget Planning Basics", "- first item", "- second item"}, ""},
		{"url", []string{"https://example.com/page", body}, ""},
		{"stop words", []string{"Of The And In", body}, ""},
	}

	e := NewSectionExtractor(DefaultExtractorConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := e.findHeadings(tt.lines)
			got := ""
			if len(found) > 0 && found[0].line == 0 {
				got = found[0].title
			}
			if got != tt.want {
				t.Errorf("heading = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRefineTitle(t *testing.T) {
	e := NewSectionExtractor(DefaultExtractorConfig())
	content := "Our guests loved the seaside.\nNothing else here matches anything."

	tests := []struct {
		raw, document, want string
	}{
		{"Coastal Walking Routes", "doc.pdf", "Coastal Walking Routes"},
		{"Content Block 3", "learn_acrobat-forms.pdf", "Acrobat Forms"},
		{"Page Content", "Learn_Acrobat_Forms.pdf", "Acrobat Forms"},
		{"Introduction", "___.pdf", "Content Section"},
	}
	for _, tt := range tests {
		if got := e.refineTitle(tt.raw, content, tt.document, nil); got != tt.want {
			t.Errorf("refineTitle(%q, %q) = %q, want %q", tt.raw, tt.document, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	e := NewSectionExtractor(DefaultExtractorConfig())
	tests := []struct {
		title, content string
		want           models.SectionType
	}{
		{"Abstract", "", models.SectionAbstract},
		{"Research Methodology", "", models.SectionMethodology},
		{"Concluding Remarks", "In conclusion the final recommendations are listed.", models.SectionConclusion},
		{"Weekend Plans", "Follow these steps and instructions carefully.", models.SectionProcedure},
		{"Weekend Plans", "Nothing matches here at all.", models.SectionGeneral},
	}
	for _, tt := range tests {
		if got := e.classify(tt.title, tt.content); got != tt.want {
			t.Errorf("classify(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestRelevanceWeights(t *testing.T) {
	pc := &models.PersonaContext{
		JobKeywords:      []string{"revenue"},
		PriorityTopics:   []string{"growth"},
		ExpertiseAreas:   []string{"finance"},
		RelevantSections: []string{"results"},
	}
	tests := []struct {
		content string
		want    float64
	}{
		{"nothing relevant", 0},
		{"revenue only", 0.4},
		{"revenue growth", 0.7},
		{"revenue growth in finance results", 1.0},
	}
	for _, tt := range tests {
		got := relevance(tt.content, pc)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("relevance(%q) = %.3f, want %.3f", tt.content, got, tt.want)
		}
	}
	if relevance("revenue", nil) != 0 {
		t.Error("nil persona context should score 0")
	}
}

func TestRemoveHeadersFooters(t *testing.T) {
	text := "Page 4\nReal content line one\nReal content line two\n© 2024 Example Corp"
	got := removeHeadersFooters(text)
	if got != "Real content line one\nReal content line two" {
		t.Errorf("got %q", got)
	}
}

func TestLooksTabular(t *testing.T) {
	table := "Region | Q1 | Q2\nNorth | 10 | 12\nSouth | 8 | 9"
	if !looksTabular(table) {
		t.Error("pipe table not detected")
	}
	if looksTabular("Just prose.\nMore prose here.") {
		t.Error("prose detected as table")
	}
}

func TestTextLoaderSplitsPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.txt")
	if err := os.WriteFile(path, []byte("first page\f\fthird page"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := TextLoader{}.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.ID != "guide.txt" {
		t.Errorf("id = %q", doc.ID)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 non-empty pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].PageNumber != 1 || doc.Pages[1].PageNumber != 3 {
		t.Errorf("page numbers = %d, %d", doc.Pages[0].PageNumber, doc.Pages[1].PageNumber)
	}
	if doc.Pages[1].WordCount != 2 {
		t.Errorf("word count = %d", doc.Pages[1].WordCount)
	}
}

func TestCollectionLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.txt":     "beta document text",
		"a.md":      "alpha document text",
		"c.csv":     "ignored,file",
		"empty.txt": "   ",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := NewCollection(0, zerolog.Nop())
	docs, err := c.LoadDir(context.Background(), dir, 0)
	if err == nil {
		t.Error("expected an error for the empty file")
	}
	if len(docs) != 2 || docs[0].ID != "a.md" || docs[1].ID != "b.txt" {
		t.Errorf("unexpected documents: %+v", docs)
	}

	docs, _ = c.LoadDir(context.Background(), dir, 1)
	if len(docs) != 1 || docs[0].ID != "a.md" {
		t.Errorf("maxDocs not applied: %+v", docs)
	}
}

func TestCollectionLoadChallenge(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("some notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	in := models.ChallengeInput{
		Documents: []models.ChallengeDocument{{Filename: "notes.txt", Title: "Field Notes"}},
	}

	docs, err := NewCollection(0, zerolog.Nop()).LoadChallenge(context.Background(), in, dir)
	if err != nil {
		t.Fatalf("LoadChallenge: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Field Notes" {
		t.Errorf("unexpected documents: %+v", docs)
	}
}
