package output

import (
	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/pipeline"
)

// SizeDistribution counts documents by page count
type SizeDistribution struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// DocumentAnalysis describes the input collection
type DocumentAnalysis struct {
	Total            int              `json:"total_documents"`
	WithTables       int              `json:"documents_with_tables"`
	WithImages       int              `json:"documents_with_images"`
	AveragePages     float64          `json:"average_pages_per_document"`
	SizeDistribution SizeDistribution `json:"document_size_distribution"`
}

// Performance holds throughput figures
type Performance struct {
	PagesPerSecond      float64 `json:"pages_per_second"`
	WordsPerSecond      float64 `json:"words_per_second"`
	SectionsPerDocument float64 `json:"sections_per_document"`
}

// ProcessingStats summarizes the work done for one run
type ProcessingStats struct {
	Documents          int                      `json:"total_documents_processed"`
	Pages              int                      `json:"total_pages_processed"`
	Words              int                      `json:"total_words_analyzed"`
	CandidateSections  int                      `json:"total_sections_extracted"`
	SelectedSections   int                      `json:"sections_selected"`
	AboveHalfRelevance int                      `json:"sections_above_threshold"`
	AverageRelevance   float64                  `json:"average_relevance_score"`
	DegradedPages      int                      `json:"degraded_pages"`
	ElapsedSeconds     float64                  `json:"processing_time_seconds"`
	WithinTimeLimit    bool                     `json:"within_time_limit"`
	PerDocument        []pipeline.DocumentStats `json:"per_document"`
	Performance        Performance              `json:"performance_metrics"`
	DocumentAnalysis   DocumentAnalysis         `json:"document_type_analysis"`
}

// ComputeStats derives processing statistics from the input documents and the result
func ComputeStats(docs []models.Document, res *pipeline.Result) ProcessingStats {
	stats := ProcessingStats{
		Documents:         len(docs),
		Pages:             res.Pages(),
		CandidateSections: len(res.Ranked),
		SelectedSections:  len(res.Selected),
		ElapsedSeconds:    round(res.Elapsed.Seconds(), 2),
		WithinTimeLimit:   !res.BudgetExceeded,
		PerDocument:       res.Documents,
		DocumentAnalysis:  analyzeDocuments(docs),
	}

	for _, d := range docs {
		for _, p := range d.Pages {
			stats.Words += p.WordCount
		}
	}
	for _, d := range res.Documents {
		stats.DegradedPages += len(d.DegradedPages)
	}

	if len(res.Ranked) > 0 {
		sum := 0.0
		for _, rs := range res.Ranked {
			sum += rs.Relevance
			if rs.Relevance > 0.5 {
				stats.AboveHalfRelevance++
			}
		}
		stats.AverageRelevance = round(sum/float64(len(res.Ranked)), 3)
	}

	elapsed := max(res.Elapsed.Seconds(), 0.1)
	stats.Performance = Performance{
		PagesPerSecond:      round(float64(stats.Pages)/elapsed, 2),
		WordsPerSecond:      round(float64(stats.Words)/elapsed, 0),
		SectionsPerDocument: round(float64(stats.CandidateSections)/float64(max(len(docs), 1)), 1),
	}
	return stats
}

func analyzeDocuments(docs []models.Document) DocumentAnalysis {
	a := DocumentAnalysis{Total: len(docs)}
	if len(docs) == 0 {
		return a
	}

	pages := 0
	for _, d := range docs {
		pages += len(d.Pages)
		tables, images := false, false
		for _, p := range d.Pages {
			tables = tables || p.HasTables
			images = images || p.HasImages
		}
		if tables {
			a.WithTables++
		}
		if images {
			a.WithImages++
		}
		switch n := len(d.Pages); {
		case n <= 5:
			a.SizeDistribution.Small++
		case n <= 20:
			a.SizeDistribution.Medium++
		default:
			a.SizeDistribution.Large++
		}
	}
	a.AveragePages = round(float64(pages)/float64(len(docs)), 1)
	return a
}
