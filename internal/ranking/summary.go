package ranking

import (
	"sort"

	"persona-doc-intel/internal/models"
)

// ScoreStats describes the spread of final scores
type ScoreStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Summary aggregates a ranked list for reports
type Summary struct {
	Total       int                `json:"total_sections"`
	Scores      ScoreStats         `json:"score_statistics"`
	ByDocument  map[string]int     `json:"document_distribution"`
	ByType      map[string]int     `json:"section_type_distribution"`
	FactorMeans map[string]float64 `json:"average_factors"`
	TopTitles   []string           `json:"top_sections"`
}

// Summarize computes counts, score statistics and factor means over ranked sections
func Summarize(ranked []models.RankedSection) Summary {
	s := Summary{
		Total:       len(ranked),
		ByDocument:  make(map[string]int),
		ByType:      make(map[string]int),
		FactorMeans: make(map[string]float64),
		TopTitles:   []string{},
	}
	if len(ranked) == 0 {
		return s
	}

	scores := make([]float64, len(ranked))
	sum := 0.0
	for i, rs := range ranked {
		scores[i] = rs.FinalScore
		sum += rs.FinalScore
		s.ByDocument[rs.Document]++
		s.ByType[rs.Type.String()]++
		for name, v := range rs.Factors {
			s.FactorMeans[name] += v
		}
		if i < 3 {
			s.TopTitles = append(s.TopTitles, rs.Title)
		}
	}
	for name := range s.FactorMeans {
		s.FactorMeans[name] /= float64(len(ranked))
	}

	sort.Float64s(scores)
	n := len(scores)
	s.Scores = ScoreStats{
		Min:  scores[0],
		Max:  scores[n-1],
		Mean: sum / float64(n),
	}
	if n%2 == 1 {
		s.Scores.Median = scores[n/2]
	} else {
		s.Scores.Median = (scores[n/2-1] + scores[n/2]) / 2
	}
	return s
}
