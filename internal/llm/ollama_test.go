package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"persona-doc-intel/internal/models"
)

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	lastReq   *api.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
	i := f.calls
	f.calls++
	f.lastReq = req
	if i < len(f.errs) && f.errs[i] != nil {
		return f.errs[i]
	}
	for _, chunk := range strings.SplitAfter(f.responses[i], " ") {
		if err := fn(api.GenerateResponse{Response: chunk}); err != nil {
			return err
		}
	}
	return nil
}

func testRefiner(g generator) *OllamaRefiner {
	return &OllamaRefiner{
		Client:     g,
		Model:      "test-model",
		MaxRetries: 1,
		Timeout:    time.Second,
		MaxLength:  60,
		log:        zerolog.Nop(),
	}
}

func testSection() (*models.PersonaContext, models.RankedSection) {
	pc := &models.PersonaContext{
		Role:           "Travel Planner",
		Domain:         "travel",
		JobIntent:      models.IntentPreparation,
		PriorityTopics: []string{"hotels", "beaches"},
	}
	rs := models.RankedSection{Section: models.Section{
		Document:   "south.pdf",
		PageNumber: 4,
		Title:      "Coastal Adventures",
		Content:    "Nice offers long pebble beaches and affordable hotels near the old town.",
	}}
	return pc, rs
}

func TestGeneratePrompt(t *testing.T) {
	pc, rs := testSection()
	prompt := testRefiner(nil).GeneratePrompt(pc, "Plan a trip for friends", rs)

	for _, want := range []string{
		"Reader role: Travel Planner (domain: travel)",
		"Task: Plan a trip for friends",
		"Intent: preparation",
		"Priority topics: hotels, beaches",
		"Section [south.pdf, Page: 4] Coastal Adventures:",
		"affordable hotels",
		"at most 60 characters",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRefineStreamsAndTruncates(t *testing.T) {
	pc, rs := testSection()
	g := &fakeGenerator{responses: []string{"  Nice has pebble beaches and cheap hotels close to the old town for groups.  "}}

	text, err := testRefiner(g).Refine(context.Background(), pc, "Plan a trip", rs)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if len([]rune(text)) > 60 || !strings.HasPrefix(text, "Nice has pebble beaches") || !strings.HasSuffix(text, "...") {
		t.Errorf("unexpected text %q", text)
	}
	if g.lastReq.Model != "test-model" {
		t.Errorf("model = %q", g.lastReq.Model)
	}
}

func TestRefineRetriesThenFails(t *testing.T) {
	pc, rs := testSection()
	boom := errors.New("connection refused")
	g := &fakeGenerator{errs: []error{boom, boom}}

	_, err := testRefiner(g).Refine(context.Background(), pc, "Plan a trip", rs)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
	if g.calls != 2 {
		t.Errorf("calls = %d, want 2", g.calls)
	}
}

func TestRefineStopsOnCancelledContext(t *testing.T) {
	pc, rs := testSection()
	g := &fakeGenerator{errs: []error{errors.New("unavailable")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testRefiner(g).Refine(ctx, pc, "Plan a trip", rs); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context cancellation, got %v", err)
	}
}
