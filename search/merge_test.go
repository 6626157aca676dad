package search

import (
	"testing"

	"github.com/poiesic/doublesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_UnionWithProvenance(t *testing.T) {
	structured := core.StructuredResult{
		{EntityID: "a", Attributes: map[string]any{"id": "a"}},
		{EntityID: "b", Attributes: map[string]any{"id": "b"}},
	}
	semantic := core.SemanticResult{
		{EntityID: "b", Score: 0.9},
		{EntityID: "c", Score: 0.4},
	}

	results := Merge(structured, semantic, 0.5, 0.5)
	require.Len(t, results, 3)

	byID := make(map[core.EntityID]core.HybridResult)
	for _, r := range results {
		byID[r.EntityID] = r
	}

	assert.Equal(t, core.ProvenanceStructured, byID["a"].Provenance)
	assert.InDelta(t, 0.5, byID["a"].Score, 1e-9)
	assert.Zero(t, byID["a"].Similarity)
	assert.NotNil(t, byID["a"].Attributes)

	assert.Equal(t, core.ProvenanceBoth, byID["b"].Provenance)
	assert.InDelta(t, 0.5+0.5*0.9, byID["b"].Score, 1e-9)
	assert.InDelta(t, 0.9, byID["b"].Similarity, 1e-9)

	assert.Equal(t, core.ProvenanceSemantic, byID["c"].Provenance)
	assert.InDelta(t, 0.5*0.4, byID["c"].Score, 1e-9)
	assert.Nil(t, byID["c"].Attributes)
}

func TestMerge_RankingIsDescending(t *testing.T) {
	structured := core.StructuredResult{{EntityID: "exact"}}
	semantic := core.SemanticResult{
		{EntityID: "exact", Score: 0.8},
		{EntityID: "close", Score: 0.95},
		{EntityID: "far", Score: 0.1},
	}

	results := Merge(structured, semantic, 0.5, 0.5)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	// Dual-source hit outranks the highest semantic-only score at equal weights.
	assert.Equal(t, core.EntityID("exact"), results[0].EntityID)
}

func TestMerge_TieBreakByProvenanceThenID(t *testing.T) {
	// Equal scores: structured-only 0.5 vs semantic-only 0.5*1.0.
	structured := core.StructuredResult{{EntityID: "z-structured"}}
	semantic := core.SemanticResult{{EntityID: "a-semantic", Score: 1.0}}

	results := Merge(structured, semantic, 0.5, 0.5)
	require.Len(t, results, 2)
	assert.Equal(t, core.EntityID("z-structured"), results[0].EntityID)
	assert.Equal(t, core.EntityID("a-semantic"), results[1].EntityID)
}

func TestMerge_TieBreakByIDIsDeterministic(t *testing.T) {
	structured := core.StructuredResult{
		{EntityID: "b"}, {EntityID: "a"}, {EntityID: "c"},
	}

	for i := 0; i < 10; i++ {
		results := Merge(structured, nil, 0.5, 0.5)
		require.Len(t, results, 3)
		assert.Equal(t, core.EntityID("a"), results[0].EntityID)
		assert.Equal(t, core.EntityID("b"), results[1].EntityID)
		assert.Equal(t, core.EntityID("c"), results[2].EntityID)
	}
}

func TestMerge_CustomWeights(t *testing.T) {
	structured := core.StructuredResult{{EntityID: "a"}}
	semantic := core.SemanticResult{{EntityID: "b", Score: 0.6}}

	results := Merge(structured, semantic, 0.2, 0.8)
	byID := make(map[core.EntityID]core.HybridResult)
	for _, r := range results {
		byID[r.EntityID] = r
	}
	assert.InDelta(t, 0.2, byID["a"].Score, 1e-9)
	assert.InDelta(t, 0.48, byID["b"].Score, 1e-9)
	// Semantic-only hit with a strong semantic weight outranks the exact match.
	assert.Equal(t, core.EntityID("b"), results[0].EntityID)
}

func TestMerge_ScoreMonotonicInSimilarity(t *testing.T) {
	semantic := core.SemanticResult{
		{EntityID: "low", Score: 0.2},
		{EntityID: "high", Score: 0.9},
	}

	results := Merge(nil, semantic, 0.5, 0.5)
	require.Len(t, results, 2)
	assert.Equal(t, core.EntityID("high"), results[0].EntityID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMerge_EmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil, 0.5, 0.5))
	assert.Len(t, Merge(core.StructuredResult{{EntityID: "a"}}, nil, 0.5, 0.5), 1)
	assert.Len(t, Merge(nil, core.SemanticResult{{EntityID: "a", Score: 0.3}}, 0.5, 0.5), 1)
}
