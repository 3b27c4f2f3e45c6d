package ranking

import (
	"sort"

	"persona-doc-intel/internal/models"
)

// FilterTop selects at most maxCount sections scoring at least minScore.
// When more remain than fit, every document gets an equal share of the
// slots, the first documents (in encounter order) taking one extra each
// until the remainder is used up. The result is re-ranked 1..len.
func FilterTop(ranked []models.RankedSection, maxCount int, minScore float64) []models.RankedSection {
	if maxCount <= 0 {
		return []models.RankedSection{}
	}

	kept := make([]models.RankedSection, 0, len(ranked))
	for _, rs := range ranked {
		if rs.FinalScore >= minScore {
			kept = append(kept, rs)
		}
	}

	if len(kept) > maxCount {
		kept = allocateByDocument(kept, maxCount)
	}
	if len(kept) > maxCount {
		kept = kept[:maxCount]
	}
	assignRanks(kept)
	return kept
}

// allocateByDocument takes each document's best sections up to its share
// and merges them back into score order.
func allocateByDocument(sections []models.RankedSection, maxCount int) []models.RankedSection {
	var order []string
	byDoc := make(map[string][]models.RankedSection)
	for _, rs := range sections {
		if _, seen := byDoc[rs.Document]; !seen {
			order = append(order, rs.Document)
		}
		byDoc[rs.Document] = append(byDoc[rs.Document], rs)
	}

	base := maxCount / len(order)
	remainder := maxCount % len(order)

	out := make([]models.RankedSection, 0, maxCount)
	for i, doc := range order {
		quota := base
		if i < remainder {
			quota++
		}
		group := byDoc[doc]
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].FinalScore > group[b].FinalScore
		})
		if len(group) > quota {
			group = group[:quota]
		}
		out = append(out, group...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	return out
}
