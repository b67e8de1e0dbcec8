package search

import (
	"slices"

	"github.com/veridian/quaero/core"
)

// Rerank re-scores candidates against the query vector with an exact cosine
// pass, sorts them highest first and keeps the top topN. Candidates scoring
// below threshold are kept but flagged low confidence. The sort is stable so
// equal scores preserve the candidate order from the vector search.
func Rerank(query []float32, candidates []*core.ScoredChunk, topN int, threshold float32) []*core.RankedChunk {
	if topN <= 0 || len(candidates) == 0 {
		return []*core.RankedChunk{}
	}

	ranked := make([]*core.RankedChunk, 0, len(candidates))
	for _, candidate := range candidates {
		score := core.CosineSimilarity(query, candidate.Record.Vector)
		ranked = append(ranked, &core.RankedChunk{
			Record:        candidate.Record,
			Score:         score,
			LowConfidence: score < threshold,
		})
	}

	slices.SortStableFunc(ranked, func(a, b *core.RankedChunk) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
