// internal/processor/pdf.go
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"persona-doc-intel/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

const (
	// Default cap on pages read per document
	DefaultMaxPages = 50
	// Header/footer candidates are shorter than this
	maxFurnitureLength = 50
)

var numericRowRe = regexp.MustCompile(`(?:\d[\d,.%$]*\s+){2,}\d[\d,.%$]*`)

// PDFProcessor loads PDF files as page-level documents
type PDFProcessor struct {
	MaxPages int
	log      zerolog.Logger
}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor(maxPages int, log zerolog.Logger) *PDFProcessor {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &PDFProcessor{
		MaxPages: maxPages,
		log:      log.With().Str("component", "pdf").Logger(),
	}
}

// Load opens a PDF and extracts one page record per page
func (p *PDFProcessor) Load(ctx context.Context, filePath string) (models.Document, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	doc := models.Document{ID: filepath.Base(filePath)}
	total := r.NumPage()
	if total > p.MaxPages {
		p.log.Warn().
			Str("document", doc.ID).
			Int("pages", total).
			Int("max_pages", p.MaxPages).
			Msg("document truncated to page limit")
		total = p.MaxPages
	}

	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return doc, err
		}

		page, err := p.extractPage(r, num)
		if err != nil {
			// A broken page should not lose the rest of the document
			p.log.Warn().Err(err).Str("document", doc.ID).Int("page", num).Msg("skipping page")
			continue
		}
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		doc.Pages = append(doc.Pages, page)
	}

	if len(doc.Pages) == 0 {
		return doc, fmt.Errorf("failed to extract text: no readable pages in %s", doc.ID)
	}
	return doc, nil
}

// extractPage reads a single page, recovering from parser panics on malformed content
func (p *PDFProcessor) extractPage(r *pdf.Reader, num int) (page models.Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to parse page %d: %v", num, rec)
		}
	}()

	pg := r.Page(num)
	if pg.V.IsNull() {
		return models.Page{}, fmt.Errorf("page %d is empty", num)
	}

	text, err := pg.GetPlainText(nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to extract plain text: %w", err)
	}
	text = removeHeadersFooters(text)

	hasTables := len(pg.Content().Rect) >= 4 || looksTabular(text)
	return models.NewPage(num, text, hasTables, pageHasImages(pg)), nil
}

// pageHasImages looks for image XObjects in the page resources
func pageHasImages(pg pdf.Page) bool {
	xobjects := pg.Resources().Key("XObject")
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			return true
		}
	}
	return false
}

// looksTabular reports whether at least three lines hold rows of numbers
func looksTabular(text string) bool {
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.Count(line, "|") >= 2 || strings.Count(line, "\t") >= 2 || numericRowRe.MatchString(line) {
			rows++
		}
	}
	return rows >= 3
}

// removeHeadersFooters drops short running header and footer lines from a page
func removeHeadersFooters(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	isFurniture := func(line string) bool {
		l := strings.TrimSpace(line)
		if l == "" || len(l) >= maxFurnitureLength {
			return false
		}
		lower := strings.ToLower(l)
		return strings.Contains(l, "©") || strings.HasPrefix(lower, "page ") || strings.Contains(lower, "all rights reserved")
	}

	// Remove header (first 1-2 lines) if it looks like a header
	headerEnd := 0
	for i := 0; i < min(2, len(lines)) && isFurniture(lines[i]); i++ {
		headerEnd = i + 1
	}

	// Remove footer (last 1-3 lines) if it looks like a footer
	footerStart := len(lines)
	for i := len(lines) - 1; i >= max(0, len(lines)-3) && isFurniture(lines[i]); i-- {
		footerStart = i
	}

	if headerEnd < footerStart {
		return strings.Join(lines[headerEnd:footerStart], "\n")
	}
	return text
}
