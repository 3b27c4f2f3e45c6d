package processor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"
)

var blockSplitRe = regexp.MustCompile(`\n[ \t]*\n`)

// rawSection is a (title, body) pair before refinement and scoring
type rawSection struct {
	title   string
	content string
	origin  models.SectionOrigin
}

// SectionExtractor slices page text into titled, scored sections.
// It holds only read-only tables and is safe for concurrent use.
type SectionExtractor struct {
	cfg    ExtractorConfig
	rules  []headingRule
	themes []compiledTheme
	log    zerolog.Logger
}

// ExtractorOption configures a SectionExtractor
type ExtractorOption func(*SectionExtractor)

// WithExtractorLogger sets the extractor logger
func WithExtractorLogger(l zerolog.Logger) ExtractorOption {
	return func(e *SectionExtractor) {
		e.log = l.With().Str("component", "extractor").Logger()
	}
}

// NewSectionExtractor creates an extractor over the given configuration
func NewSectionExtractor(cfg ExtractorConfig, opts ...ExtractorOption) *SectionExtractor {
	if cfg.StopWords == nil {
		cfg.StopWords = textutil.DefaultStopWords()
	}
	e := &SectionExtractor{
		cfg:    cfg,
		rules:  defaultHeadingRules(),
		themes: compileThemes(cfg.Themes),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DocumentExtraction is the outcome of extracting one document
type DocumentExtraction struct {
	Document      string
	Sections      []models.Section
	Pages         int
	DegradedPages []int
}

// ExtractDocument extracts every page of a document in order. A page that
// yields nothing, or fails, is recorded as degraded and skipped.
func (e *SectionExtractor) ExtractDocument(doc models.Document, pc *models.PersonaContext) DocumentExtraction {
	res := DocumentExtraction{Document: doc.ID, Pages: len(doc.Pages)}
	for _, page := range doc.Pages {
		sections, err := e.safeExtractPage(doc.ID, page, pc)
		if err != nil {
			e.log.Warn().Err(err).
				Str("document", doc.ID).
				Int("page", page.PageNumber).
				Msg("page extraction failed")
		}
		if len(sections) == 0 {
			res.DegradedPages = append(res.DegradedPages, page.PageNumber)
			e.log.Warn().
				Str("document", doc.ID).
				Int("page", page.PageNumber).
				Msg("page produced no sections")
			continue
		}
		res.Sections = append(res.Sections, sections...)
	}
	e.log.Info().
		Str("document", doc.ID).
		Int("pages", res.Pages).
		Int("sections", len(res.Sections)).
		Int("degraded_pages", len(res.DegradedPages)).
		Msg("document extracted")
	return res
}

func (e *SectionExtractor) safeExtractPage(document string, page models.Page, pc *models.PersonaContext) (sections []models.Section, err error) {
	defer func() {
		if r := recover(); r != nil {
			sections = nil
			err = fmt.Errorf("failed to extract page %d: %v", page.PageNumber, r)
		}
	}()
	return e.ExtractPage(document, page, pc), nil
}

// ExtractPage runs the three extraction tiers over one page: headings, then
// paragraph blocks, then the whole page.
func (e *SectionExtractor) ExtractPage(document string, page models.Page, pc *models.PersonaContext) []models.Section {
	text := textutil.NormalizePage(page.Text)
	if text == "" {
		return nil
	}

	headed := e.build(document, page.PageNumber, e.headingSections(text), pc)
	if len(headed) >= 2 {
		return headed
	}
	// A lone heading section covers the same text as the blocks, so it is
	// kept only when no block qualifies.
	if blocks := e.build(document, page.PageNumber, e.blockSections(text), pc); len(blocks) > 0 {
		return blocks
	}
	if len(headed) > 0 {
		return headed
	}
	return e.build(document, page.PageNumber, []rawSection{{
		title:   "Page Content",
		content: text,
		origin:  models.OriginPage,
	}}, pc)
}

// headingSections slices the page at accepted headings
func (e *SectionExtractor) headingSections(text string) []rawSection {
	lines := strings.Split(text, "\n")
	headings := e.findHeadings(lines)

	var raws []rawSection
	for k, h := range headings {
		end := len(lines)
		if k+1 < len(headings) {
			end = headings[k+1].line
		}
		if limit := h.line + 1 + e.cfg.MaxHeadingLines; end > limit {
			end = limit
		}
		content := strings.TrimSpace(strings.Join(lines[h.line+1:end], "\n"))
		if content == "" {
			continue
		}
		raws = append(raws, rawSection{title: h.title, content: content, origin: models.OriginHeading})
	}
	return raws
}

// blockSections treats each blank-line separated block as a section
func (e *SectionExtractor) blockSections(text string) []rawSection {
	var raws []rawSection
	for i, block := range blockSplitRe.Split(text, -1) {
		block = strings.TrimSpace(block)
		if utf8.RuneCountInString(block) <= e.cfg.MinSectionLength {
			continue
		}
		lines := strings.Split(block, "\n")
		title := fmt.Sprintf("Content Block %d", i+1)
		content := block
		if len(lines) > 1 && looksLikeBlockTitle(lines[0]) {
			title = strings.TrimSpace(lines[0])
			rest := strings.TrimSpace(strings.Join(lines[1:], "\n"))
			if utf8.RuneCountInString(rest) >= e.cfg.MinSectionLength {
				content = rest
			}
		}
		raws = append(raws, rawSection{title: title, content: content, origin: models.OriginContentBlock})
	}
	return raws
}

func looksLikeBlockTitle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > 60 || len(strings.Fields(line)) > 8 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	return unicode.IsUpper(first) && !strings.HasSuffix(line, ".")
}

// build turns raw pairs into sections, dropping short or irrelevant ones
func (e *SectionExtractor) build(document string, pageNumber int, raws []rawSection, pc *models.PersonaContext) []models.Section {
	var sections []models.Section
	for _, raw := range raws {
		content := textutil.Truncate(strings.TrimSpace(raw.content), e.cfg.MaxSectionLength)
		if utf8.RuneCountInString(content) < e.cfg.MinSectionLength {
			continue
		}
		score := relevance(content, pc)
		if score < e.cfg.MinRelevance {
			continue
		}
		title := e.refineTitle(raw.title, content, document, pc)
		sections = append(sections, models.Section{
			Document:    document,
			PageNumber:  pageNumber,
			Title:       title,
			Content:     content,
			Preview:     textutil.Preview(content, e.cfg.PreviewLength),
			Relevance:   score,
			WordCount:   len(strings.Fields(content)),
			CharCount:   utf8.RuneCountInString(content),
			Type:        e.classify(title, content),
			Origin:      raw.origin,
			KeyConcepts: e.cfg.StopWords.ExtractKeywords(content, e.cfg.KeyConcepts),
		})
	}
	return sections
}
