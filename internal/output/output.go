// Package output turns pipeline results into challenge and detailed JSON
// documents and a plain-text report.
package output

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/pipeline"
	"persona-doc-intel/internal/ranking"
	"persona-doc-intel/internal/textutil"
)

// Refiner produces refined text for a ranked section
type Refiner interface {
	Refine(ctx context.Context, pc *models.PersonaContext, job string, s models.RankedSection) (string, error)
}

// Run bundles everything the generator needs about one analysis
type Run struct {
	ID        uuid.UUID
	Persona   string
	Job       string
	Documents []models.Document
	Result    *pipeline.Result
}

// NewRun wraps a pipeline result with a fresh run identifier
func NewRun(persona, job string, docs []models.Document, res *pipeline.Result) Run {
	return Run{ID: uuid.New(), Persona: persona, Job: job, Documents: docs, Result: res}
}

// ChallengeMetadata is the metadata block of the challenge output
type ChallengeMetadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one entry of extracted_sections
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// Subsection is one entry of subsection_analysis
type Subsection struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// ChallengeOutput is the compact result format
type ChallengeOutput struct {
	Metadata           ChallengeMetadata  `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []Subsection       `json:"subsection_analysis"`
}

// DetailedMetadata extends the challenge metadata
type DetailedMetadata struct {
	ChallengeMetadata
	RunID              string  `json:"run_id"`
	SystemVersion      string  `json:"system_version"`
	ProcessingSeconds  float64 `json:"total_processing_time_seconds"`
	DocumentsProcessed int     `json:"documents_processed"`
	TotalPagesAnalyzed int     `json:"total_pages_analyzed"`
	WithinTimeLimit    bool    `json:"within_time_limit"`
	TimeBudgetSeconds  float64 `json:"time_budget_seconds"`
	CandidateSections  int     `json:"candidate_sections"`
	SelectedSections   int     `json:"selected_sections"`
}

// DetailedSection is an extracted section with its scores
type DetailedSection struct {
	Document       string   `json:"document"`
	PageNumber     int      `json:"page_number"`
	SectionTitle   string   `json:"section_title"`
	ImportanceRank int      `json:"importance_rank"`
	RelevanceScore float64  `json:"relevance_score"`
	FinalScore     float64  `json:"final_score"`
	ContentPreview string   `json:"content_preview"`
	WordCount      int      `json:"word_count"`
	SectionType    string   `json:"section_type"`
	Origin         string   `json:"origin"`
	KeyConcepts    []string `json:"key_concepts"`
}

// DetailedSubsection is a refined sub-section with analysis scores
type DetailedSubsection struct {
	Document             string             `json:"document"`
	SectionTitle         string             `json:"section_title"`
	RefinedText          string             `json:"refined_text"`
	PageNumber           int                `json:"page_number"`
	KeyConcepts          []string           `json:"key_concepts"`
	MethodologyRelevance float64            `json:"methodology_relevance"`
	SectionImportance    float64            `json:"section_importance"`
	ContentDensity       float64            `json:"content_density"`
	RankingFactors       map[string]float64 `json:"ranking_factors"`
}

// DetailedOutput is the full result format
type DetailedOutput struct {
	Metadata           DetailedMetadata       `json:"metadata"`
	PersonaContext     *models.PersonaContext `json:"persona_context"`
	ExtractedSections  []DetailedSection      `json:"extracted_sections"`
	SubSectionAnalysis []DetailedSubsection   `json:"sub_section_analysis"`
	ProcessingStats    ProcessingStats        `json:"processing_stats"`
	RankingSummary     ranking.Summary        `json:"ranking_summary"`
}

// Options configures the generator
type Options struct {
	PreviewLength   int
	RefinedLength   int
	SubsectionCount int
	DetailedCount   int
	KeyConcepts     int
}

// DefaultOptions returns the reference output limits
func DefaultOptions() Options {
	return Options{
		PreviewLength:   200,
		RefinedLength:   500,
		SubsectionCount: 5,
		DetailedCount:   10,
		KeyConcepts:     5,
	}
}

// Version is reported in detailed output metadata
const Version = "1.0"

// Generator builds output documents from analysis runs
type Generator struct {
	opts    Options
	refiner Refiner
	log     zerolog.Logger
	now     func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithRefiner sets a refiner tried before extractive refinement
func WithRefiner(r Refiner) Option {
	return func(g *Generator) { g.refiner = r }
}

// WithLogger sets the generator logger
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) {
		g.log = l.With().Str("component", "output").Logger()
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator
func NewGenerator(opts Options, options ...Option) *Generator {
	d := DefaultOptions()
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = d.PreviewLength
	}
	if opts.RefinedLength <= 0 {
		opts.RefinedLength = d.RefinedLength
	}
	if opts.SubsectionCount <= 0 {
		opts.SubsectionCount = d.SubsectionCount
	}
	if opts.DetailedCount <= 0 {
		opts.DetailedCount = d.DetailedCount
	}
	if opts.KeyConcepts <= 0 {
		opts.KeyConcepts = d.KeyConcepts
	}
	g := &Generator{opts: opts, log: zerolog.Nop(), now: time.Now}
	for _, o := range options {
		o(g)
	}
	return g
}

func (g *Generator) metadata(run Run) ChallengeMetadata {
	docs := make([]string, 0, len(run.Documents))
	seen := make(map[string]bool)
	for _, d := range run.Documents {
		if !seen[d.ID] {
			seen[d.ID] = true
			docs = append(docs, d.ID)
		}
	}
	return ChallengeMetadata{
		InputDocuments:      docs,
		Persona:             run.Persona,
		JobToBeDone:         run.Job,
		ProcessingTimestamp: g.now().UTC().Format(time.RFC3339Nano),
	}
}

// Challenge builds the compact output for the selected sections
func (g *Generator) Challenge(ctx context.Context, run Run) ChallengeOutput {
	selected := run.Result.Selected
	out := ChallengeOutput{
		Metadata:           g.metadata(run),
		ExtractedSections:  make([]ExtractedSection, 0, len(selected)),
		SubsectionAnalysis: []Subsection{},
	}
	for _, rs := range selected {
		out.ExtractedSections = append(out.ExtractedSections, ExtractedSection{
			Document:       rs.Document,
			SectionTitle:   rs.Title,
			ImportanceRank: rs.Rank,
			PageNumber:     rs.PageNumber,
		})
	}
	for _, rs := range head(selected, g.opts.SubsectionCount) {
		text := g.refine(ctx, run, rs)
		if text == "" {
			continue
		}
		out.SubsectionAnalysis = append(out.SubsectionAnalysis, Subsection{
			Document:    rs.Document,
			RefinedText: text,
			PageNumber:  rs.PageNumber,
		})
	}
	return out
}

// Detailed builds the full output with scores, context and statistics
func (g *Generator) Detailed(ctx context.Context, run Run) DetailedOutput {
	res := run.Result
	stats := ComputeStats(run.Documents, res)
	out := DetailedOutput{
		Metadata: DetailedMetadata{
			ChallengeMetadata:  g.metadata(run),
			RunID:              run.ID.String(),
			SystemVersion:      Version,
			ProcessingSeconds:  round(res.Elapsed.Seconds(), 2),
			DocumentsProcessed: len(run.Documents),
			TotalPagesAnalyzed: res.Pages(),
			WithinTimeLimit:    !res.BudgetExceeded,
			TimeBudgetSeconds:  res.Budget.Seconds(),
			CandidateSections:  len(res.Ranked),
			SelectedSections:   len(res.Selected),
		},
		PersonaContext:     res.Context,
		ExtractedSections:  make([]DetailedSection, 0, len(res.Selected)),
		SubSectionAnalysis: make([]DetailedSubsection, 0),
		ProcessingStats:    stats,
		RankingSummary:     res.Summary,
	}

	for _, rs := range res.Selected {
		out.ExtractedSections = append(out.ExtractedSections, DetailedSection{
			Document:       rs.Document,
			PageNumber:     rs.PageNumber,
			SectionTitle:   rs.Title,
			ImportanceRank: rs.Rank,
			RelevanceScore: round(rs.Relevance, 3),
			FinalScore:     round(rs.FinalScore, 3),
			ContentPreview: textutil.Truncate(rs.Preview, g.opts.PreviewLength),
			WordCount:      rs.WordCount,
			SectionType:    rs.Type.String(),
			Origin:         string(rs.Origin),
			KeyConcepts:    head(rs.KeyConcepts, g.opts.KeyConcepts),
		})
	}

	for _, rs := range head(res.Selected, g.opts.DetailedCount) {
		factors := make(map[string]float64, len(rs.Factors))
		for k, v := range rs.Factors {
			factors[k] = round(v, 3)
		}
		out.SubSectionAnalysis = append(out.SubSectionAnalysis, DetailedSubsection{
			Document:             rs.Document,
			SectionTitle:         rs.Title,
			RefinedText:          g.refine(ctx, run, rs),
			PageNumber:           rs.PageNumber,
			KeyConcepts:          rs.KeyConcepts,
			MethodologyRelevance: MethodologyRelevance(rs.Section),
			SectionImportance:    round(rs.FinalScore, 3),
			ContentDensity:       ContentDensity(rs.Section),
			RankingFactors:       factors,
		})
	}
	return out
}

// refine prefers the configured refiner and falls back to extraction
func (g *Generator) refine(ctx context.Context, run Run, rs models.RankedSection) string {
	if g.refiner != nil && run.Result.Context != nil {
		text, err := g.refiner.Refine(ctx, run.Result.Context, run.Job, rs)
		if err == nil && text != "" {
			return text
		}
		g.log.Warn().Err(err).
			Str("document", rs.Document).
			Int("page", rs.PageNumber).
			Msg("refiner failed, using extractive refinement")
	}
	return RefinedText(rs.Section, g.opts.RefinedLength)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
