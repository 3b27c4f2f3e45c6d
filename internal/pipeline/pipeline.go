// Package pipeline runs a full analysis request: persona analysis, concurrent
// per-document section extraction, batch ranking and selection.
package pipeline

import (
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"persona-doc-intel/internal/metrics"
	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/persona"
	"persona-doc-intel/internal/processor"
	"persona-doc-intel/internal/ranking"
)

const (
	// DefaultMaxSections is used when a request does not set MaxSections
	DefaultMaxSections = 5
	// DefaultMinScore is the reference selection threshold
	DefaultMinScore = 0.1
	// DefaultTimeBudget is the soft wall-clock budget of one request
	DefaultTimeBudget = 60 * time.Second
)

// Request is one analysis request
type Request struct {
	Documents   []models.Document
	Persona     string
	Job         string
	MaxSections int
	MinScore    float64
}

// DocumentStats summarizes extraction of one document
type DocumentStats struct {
	Document      string `json:"document"`
	Pages         int    `json:"pages"`
	Sections      int    `json:"sections"`
	DegradedPages []int  `json:"degraded_pages,omitempty"`
}

// Result is the outcome of a request
type Result struct {
	Context        *models.PersonaContext
	Documents      []DocumentStats
	Ranked         []models.RankedSection
	Selected       []models.RankedSection
	Summary        ranking.Summary
	Started        time.Time
	Elapsed        time.Duration
	Budget         time.Duration
	BudgetExceeded bool
}

// Pages returns the total number of pages processed
func (r *Result) Pages() int {
	n := 0
	for _, d := range r.Documents {
		n += d.Pages
	}
	return n
}

// Pipeline wires the analysis components together
type Pipeline struct {
	analyzer  *persona.Analyzer
	extractor *processor.SectionExtractor
	engine    *ranking.Engine
	metrics   *metrics.Metrics
	log       zerolog.Logger
	workers   int
	budget    time.Duration
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger of the pipeline and of the default components
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics records pipeline metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithWorkers bounds the number of documents extracted concurrently
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithTimeBudget sets the soft time budget
func WithTimeBudget(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.budget = d
		}
	}
}

// WithAnalyzer replaces the persona analyzer
func WithAnalyzer(a *persona.Analyzer) Option {
	return func(p *Pipeline) { p.analyzer = a }
}

// WithExtractor replaces the section extractor
func WithExtractor(e *processor.SectionExtractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithEngine replaces the ranking engine
func WithEngine(e *ranking.Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

// New creates a pipeline with default components unless replaced by options
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		log:     zerolog.Nop(),
		workers: runtime.NumCPU(),
		budget:  DefaultTimeBudget,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.analyzer == nil {
		p.analyzer = persona.New(persona.WithLogger(p.log))
	}
	if p.extractor == nil {
		p.extractor = processor.NewSectionExtractor(
			processor.DefaultExtractorConfig(),
			processor.WithExtractorLogger(p.log),
		)
	}
	if p.engine == nil {
		cfg := ranking.DefaultConfig()
		cfg.IntentRules = p.analyzer.IntentRules()
		p.engine = ranking.NewEngine(cfg, ranking.WithLogger(p.log))
	}
	p.log = p.log.With().Str("component", "pipeline").Logger()
	return p
}

func validate(req Request) error {
	switch {
	case len(req.Documents) == 0:
		return &models.InputError{Field: "documents", Reason: "at least one document is required"}
	case req.MaxSections < 0:
		return &models.InputError{Field: "max_sections", Reason: "must not be negative"}
	case req.MinScore < 0:
		return &models.InputError{Field: "min_score", Reason: "must not be negative"}
	}
	for i, doc := range req.Documents {
		if doc.ID == "" {
			return &models.InputError{Field: "documents", Reason: fmt.Sprintf("document at position %d has no identifier", i)}
		}
	}
	return nil
}

// Run processes a request to completion. Only invalid input fails; pages
// that yield nothing are reported in the document stats.
func (p *Pipeline) Run(req Request) (*Result, error) {
	started := time.Now()
	if err := validate(req); err != nil {
		return nil, err
	}

	stage := time.Now()
	pc, err := p.analyzer.Analyze(req.Persona, req.Job)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveStage("analyze", time.Since(stage))

	stage = time.Now()
	extractions := p.extractAll(req.Documents, pc)
	p.metrics.ObserveStage("extract", time.Since(stage))

	// Barrier: ranking needs every document's sections
	res := &Result{Context: pc, Started: started, Budget: p.budget}
	var sections []models.Section
	for _, ex := range extractions {
		res.Documents = append(res.Documents, DocumentStats{
			Document:      ex.Document,
			Pages:         ex.Pages,
			Sections:      len(ex.Sections),
			DegradedPages: ex.DegradedPages,
		})
		sections = append(sections, ex.Sections...)
		p.metrics.RecordDocument(ex.Pages, len(ex.DegradedPages))
	}
	p.recordOrigins(sections)

	stage = time.Now()
	res.Ranked = p.engine.Rank(sections, pc)
	p.metrics.ObserveStage("rank", time.Since(stage))

	maxSections := req.MaxSections
	if maxSections == 0 {
		maxSections = DefaultMaxSections
	}
	stage = time.Now()
	res.Selected = ranking.FilterTop(res.Ranked, maxSections, req.MinScore)
	res.Summary = ranking.Summarize(res.Selected)
	p.metrics.ObserveStage("select", time.Since(stage))
	p.metrics.RecordSelected(len(res.Selected))

	res.Elapsed = time.Since(started)
	if res.Elapsed > p.budget {
		res.BudgetExceeded = true
		p.metrics.RecordBudgetExceeded()
		p.log.Warn().
			Dur("elapsed", res.Elapsed).
			Dur("budget", p.budget).
			Msg("analysis exceeded time budget")
	}
	if len(res.Selected) == 0 {
		p.log.Warn().
			Int("candidates", len(res.Ranked)).
			Float64("min_score", req.MinScore).
			Msg("no sections selected")
	}

	p.log.Info().
		Str("intent", string(pc.JobIntent)).
		Int("documents", len(req.Documents)).
		Int("pages", res.Pages()).
		Int("candidates", len(res.Ranked)).
		Int("selected", len(res.Selected)).
		Dur("elapsed", res.Elapsed).
		Msg("analysis complete")

	return res, nil
}

// extractAll extracts documents concurrently. Results keep document order.
func (p *Pipeline) extractAll(docs []models.Document, pc *models.PersonaContext) []processor.DocumentExtraction {
	results := make([]processor.DocumentExtraction, len(docs))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = p.extractor.ExtractDocument(doc, pc)
			return nil
		})
	}
	_ = g.Wait() // extraction reports failures as degraded pages, never as errors

	return results
}

func (p *Pipeline) recordOrigins(sections []models.Section) {
	if p.metrics == nil {
		return
	}
	counts := make(map[models.SectionOrigin]int)
	for _, s := range sections {
		counts[s.Origin]++
	}
	for origin, n := range counts {
		p.metrics.RecordSections(string(origin), n)
	}
}
