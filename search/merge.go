package search

import (
	"sort"

	"github.com/poiesic/doublesearch/core"
)

// Merge combines structured and semantic matches into one ranked list.
//
// The output is the union of both inputs. Each entry is scored as
//
//	score = structuredWeight * structuredHit + semanticWeight * similarity
//
// where structuredHit is 1 for entities in the structured result and
// similarity is the raw semantic score (0 for entities the semantic side
// never returned). Membership on the structured side is boolean, so its
// contribution is all or nothing; the semantic side contributes its graded
// score.
//
// Results are sorted by score descending. Ties rank exact knowledge above
// guesses: both sources beat structured-only, structured-only beats
// semantic-only, and remaining ties fall back to entity id for determinism.
func Merge(structured core.StructuredResult, semantic core.SemanticResult, structuredWeight, semanticWeight float64) []core.HybridResult {
	merged := make(map[core.EntityID]*core.HybridResult, len(structured)+len(semantic))

	for _, match := range structured {
		merged[match.EntityID] = &core.HybridResult{
			EntityID:   match.EntityID,
			Provenance: core.ProvenanceStructured,
			Score:      structuredWeight,
			Attributes: match.Attributes,
		}
	}

	for _, match := range semantic {
		if entry, ok := merged[match.EntityID]; ok {
			entry.Provenance = core.ProvenanceBoth
			entry.Score += semanticWeight * match.Score
			entry.Similarity = match.Score
			continue
		}
		merged[match.EntityID] = &core.HybridResult{
			EntityID:   match.EntityID,
			Provenance: core.ProvenanceSemantic,
			Score:      semanticWeight * match.Score,
			Similarity: match.Score,
		}
	}

	results := make([]core.HybridResult, 0, len(merged))
	for _, entry := range merged {
		results = append(results, *entry)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Provenance != results[j].Provenance {
			return results[i].Provenance > results[j].Provenance
		}
		return results[i].EntityID < results[j].EntityID
	})

	return results
}
