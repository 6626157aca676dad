package graph

import (
	"testing"

	"github.com/poiesic/doublesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFilter(t *testing.T, candidate map[string]any) *core.Filter {
	t.Helper()
	filter, err := core.ValidateFilter(candidate)
	require.NoError(t, err)
	return filter
}

func TestCompileFilter_Empty(t *testing.T) {
	for _, filter := range []*core.Filter{nil, core.NewFilter()} {
		query, params, err := CompileFilter(filter)
		require.NoError(t, err)
		assert.Equal(t, "MATCH (d:Double)\nRETURN DISTINCT d", query)
		assert.Empty(t, params)
	}
}

func TestCompileFilter_ExistsAndRange(t *testing.T) {
	filter := mustFilter(t, map[string]any{
		"products": map[string]any{
			"Property":    map[string]any{"min": 200000},
			"BankAccount": map[string]any{"exists": true},
		},
	})

	query, params, err := CompileFilter(filter)
	require.NoError(t, err)

	expected := "MATCH (d:Double)\n" +
		"MATCH (d)-[:OWNS]->(p0:BankAccount)\n" +
		"MATCH (d)-[:OWNS]->(p1:Property)\n" +
		"WHERE p1.p_prop_total_value >= $property_min\n" +
		"RETURN DISTINCT d"
	assert.Equal(t, expected, query)
	assert.Equal(t, map[string]any{"property_min": 200000.0}, params)
}

func TestCompileFilter_ExistsFalse(t *testing.T) {
	filter := mustFilter(t, map[string]any{
		"products": map[string]any{
			"Insurance": map[string]any{"exists": false},
		},
	})

	query, params, err := CompileFilter(filter)
	require.NoError(t, err)

	expected := "MATCH (d:Double)\n" +
		"WHERE NOT (d)-[:OWNS]->(:Insurance)\n" +
		"RETURN DISTINCT d"
	assert.Equal(t, expected, query)
	assert.Empty(t, params)
}

func TestCompileFilter_BoundedRange(t *testing.T) {
	filter := mustFilter(t, map[string]any{
		"products": map[string]any{
			"InvestmentAccount": map[string]any{"min": 1000, "max": 50000},
		},
	})

	query, params, err := CompileFilter(filter)
	require.NoError(t, err)

	expected := "MATCH (d:Double)\n" +
		"MATCH (d)-[:OWNS]->(p0:InvestmentAccount)\n" +
		"WHERE p0.p_val_investment >= $investmentaccount_min AND p0.p_val_investment <= $investmentaccount_max\n" +
		"RETURN DISTINCT d"
	assert.Equal(t, expected, query)
	assert.Equal(t, map[string]any{
		"investmentaccount_min": 1000.0,
		"investmentaccount_max": 50000.0,
	}, params)
}

func TestCompileFilter_Equals(t *testing.T) {
	filter := mustFilter(t, map[string]any{
		"products": map[string]any{
			"OccuPension": map[string]any{"equals": 1200},
		},
	})

	query, params, err := CompileFilter(filter)
	require.NoError(t, err)

	expected := "MATCH (d:Double)\n" +
		"MATCH (d)-[:OWNS]->(p0:OccuPension)\n" +
		"WHERE p0.p_pens_sav = $occupension_equals\n" +
		"RETURN DISTINCT d"
	assert.Equal(t, expected, query)
	assert.Equal(t, map[string]any{"occupension_equals": 1200.0}, params)
}

func TestCompileFilter_Deterministic(t *testing.T) {
	candidate := map[string]any{
		"products": map[string]any{
			"Property":       map[string]any{"min": 100000},
			"BankAccount":    map[string]any{"exists": true},
			"Insurance":      map[string]any{"max": 500},
			"PrivatePension": map[string]any{"exists": false},
		},
	}

	first, firstParams, err := CompileFilter(mustFilter(t, candidate))
	require.NoError(t, err)

	// Map iteration order must never leak into the query text.
	for i := 0; i < 20; i++ {
		query, params, err := CompileFilter(mustFilter(t, candidate))
		require.NoError(t, err)
		assert.Equal(t, first, query)
		assert.Equal(t, firstParams, params)
	}
}

func TestCompileFilter_UnknownPredicateKind(t *testing.T) {
	filter := &core.Filter{
		Products: map[core.ProductType]core.Predicate{
			core.ProductProperty: {},
		},
	}

	_, _, err := CompileFilter(filter)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}
