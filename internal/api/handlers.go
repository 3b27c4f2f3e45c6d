// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"persona-doc-intel/internal/database"
	"persona-doc-intel/internal/metrics"
	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/output"
	"persona-doc-intel/internal/pipeline"
)

// RunStore persists runs. *database.DB satisfies it.
type RunStore interface {
	StoreRun(ctx context.Context, rec database.RunRecord, sections []models.RankedSection) error
	ListRuns(ctx context.Context, limit int) ([]database.RunRecord, error)
	QueryRunSections(ctx context.Context, runID uuid.UUID) ([]database.StoredSection, error)
}

// PagePayload is one page of a submitted document
type PagePayload struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	HasTables  bool   `json:"has_tables"`
	HasImages  bool   `json:"has_images"`
}

// DocumentPayload is a submitted document
type DocumentPayload struct {
	Filename string        `json:"filename"`
	Title    string        `json:"title"`
	Pages    []PagePayload `json:"pages"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze
type AnalyzeRequest struct {
	Persona     string            `json:"persona"`
	Job         string            `json:"job_to_be_done"`
	MaxSections int               `json:"max_sections"`
	MinScore    *float64          `json:"min_score"`
	Documents   []DocumentPayload `json:"documents"`
}

// toRequest converts the payload. Pages without a number are numbered by position.
func (r AnalyzeRequest) toRequest() pipeline.Request {
	req := pipeline.Request{
		Persona:     r.Persona,
		Job:         r.Job,
		MaxSections: r.MaxSections,
		MinScore:    pipeline.DefaultMinScore,
		Documents:   make([]models.Document, 0, len(r.Documents)),
	}
	if r.MinScore != nil {
		req.MinScore = *r.MinScore
	}
	for _, d := range r.Documents {
		doc := models.Document{ID: d.Filename, Title: d.Title}
		for i, p := range d.Pages {
			n := p.PageNumber
			if n <= 0 {
				n = i + 1
			}
			doc.Pages = append(doc.Pages, models.NewPage(n, p.Text, p.HasTables, p.HasImages))
		}
		req.Documents = append(req.Documents, doc)
	}
	return req
}

// API provides handlers for the analysis service.
type API struct {
	pipeline  *pipeline.Pipeline
	generator *output.Generator
	store     RunStore
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// Option configures the API
type Option func(*API)

// WithStore persists every successful analysis
func WithStore(s RunStore) Option {
	return func(a *API) { a.store = s }
}

// WithMetrics records request outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// WithLogger sets the API logger
func WithLogger(l zerolog.Logger) Option {
	return func(a *API) {
		a.log = l.With().Str("component", "api").Logger()
	}
}

// NewAPI creates a new API handler.
func NewAPI(p *pipeline.Pipeline, g *output.Generator, opts ...Option) *API {
	a := &API{pipeline: p, generator: g, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeHandler runs the pipeline over the submitted documents and returns the detailed output.
func (a *API) AnalyzeHandler(c *gin.Context) {
	var payload AnalyzeRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		a.log.Warn().Err(err).Msg("invalid request payload")
		a.metrics.RecordRequest("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	req := payload.toRequest()
	res, err := a.pipeline.Run(req)
	if err != nil {
		var inputErr *models.InputError
		if errors.As(err, &inputErr) {
			a.metrics.RecordRequest("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error(), "field": inputErr.Field})
			return
		}
		a.log.Error().Err(err).Msg("analysis failed")
		a.metrics.RecordRequest("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	run := output.NewRun(req.Persona, req.Job, req.Documents, res)
	if a.store != nil {
		rec := database.NewRunRecord(run.ID, run.Persona, run.Job, res)
		if err := a.store.StoreRun(c.Request.Context(), rec, res.Selected); err != nil {
			a.log.Error().Err(err).Str("run_id", run.ID.String()).Msg("failed to store run")
		}
	}

	a.metrics.RecordRequest("ok")
	c.JSON(http.StatusOK, a.generator.Detailed(c.Request.Context(), run))
}

// ListRunsHandler lists stored runs, newest first.
func (a *API) ListRunsHandler(c *gin.Context) {
	if a.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "run storage is not configured"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	runs, err := a.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	if runs == nil {
		runs = []database.RunRecord{}
	}
	c.JSON(http.StatusOK, runs)
}

// RunSectionsHandler returns the stored sections of one run.
func (a *API) RunSectionsHandler(c *gin.Context) {
	if a.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "run storage is not configured"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	sections, err := a.store.QueryRunSections(c.Request.Context(), id)
	if err != nil {
		a.log.Error().Err(err).Str("run_id", id.String()).Msg("failed to query run sections")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query run sections"})
		return
	}
	if len(sections) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, sections)
}

// HealthHandler reports liveness.
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "docintel"})
}
