package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"persona-doc-intel/internal/models"
)

// Loader turns a file into a page-level document
type Loader interface {
	Load(ctx context.Context, path string) (models.Document, error)
}

// TextLoader reads plain-text and markdown files. Form feeds separate pages.
type TextLoader struct {
	MaxPages int
}

// Load reads the file and splits it into pages
func (l TextLoader) Load(ctx context.Context, path string) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return models.Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to read text file: %w", err)
	}

	maxPages := l.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	doc := models.Document{ID: filepath.Base(path)}
	for i, chunk := range strings.Split(string(data), "\f") {
		if len(doc.Pages) >= maxPages {
			break
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		doc.Pages = append(doc.Pages, models.NewPage(i+1, chunk, looksTabular(chunk), false))
	}
	if len(doc.Pages) == 0 {
		return doc, fmt.Errorf("failed to extract text: %s is empty", doc.ID)
	}
	return doc, nil
}

// Collection dispatches files to loaders by extension
type Collection struct {
	loaders map[string]Loader
	log     zerolog.Logger
}

// NewCollection creates a collection loader for PDF, text and markdown files
func NewCollection(maxPages int, log zerolog.Logger) *Collection {
	text := TextLoader{MaxPages: maxPages}
	return &Collection{
		loaders: map[string]Loader{
			".pdf": NewPDFProcessor(maxPages, log),
			".txt": text,
			".md":  text,
		},
		log: log.With().Str("component", "loader").Logger(),
	}
}

// Supported reports whether a file extension has a loader
func (c *Collection) Supported(path string) bool {
	_, ok := c.loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadFile loads a single file with the loader matching its extension
func (c *Collection) LoadFile(ctx context.Context, path string) (models.Document, error) {
	loader, ok := c.loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return models.Document{}, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	return loader.Load(ctx, path)
}

// LoadFiles loads the given files in order. Files that fail are logged and
// skipped; their errors are joined into the returned error.
func (c *Collection) LoadFiles(ctx context.Context, paths []string) ([]models.Document, error) {
	var docs []models.Document
	var errs []error
	for _, path := range paths {
		doc, err := c.LoadFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return docs, ctx.Err()
			}
			c.log.Warn().Err(err).Str("file", path).Msg("skipping document")
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errors.Join(errs...)
}

// LoadDir loads up to maxDocs supported files from dir, in lexical order
func (c *Collection) LoadDir(ctx context.Context, dir string, maxDocs int) ([]models.Document, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && c.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(paths)
	if maxDocs > 0 && len(paths) > maxDocs {
		c.log.Warn().Int("found", len(paths)).Int("max_documents", maxDocs).Msg("document collection truncated")
		paths = paths[:maxDocs]
	}
	return c.LoadFiles(ctx, paths)
}

// LoadChallenge loads the documents named by a challenge input, resolved against dir
func (c *Collection) LoadChallenge(ctx context.Context, in models.ChallengeInput, dir string) ([]models.Document, error) {
	paths := make([]string, 0, len(in.Documents))
	for _, d := range in.Documents {
		paths = append(paths, filepath.Join(dir, d.Filename))
	}
	docs, err := c.LoadFiles(ctx, paths)
	titles := make(map[string]string, len(in.Documents))
	for _, d := range in.Documents {
		titles[filepath.Base(d.Filename)] = d.Title
	}
	for i := range docs {
		docs[i].Title = titles[docs[i].ID]
	}
	return docs, err
}
