package ingest

import (
	"strings"
	"testing"

	"github.com/poiesic/doublesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `unique_identifier;description_en;p_age_2023;p_gross_income;p_i_homeowner;p_prop_total_value;p_i_has_savings_acct;p_holding_bank_deposits_2023;p_i_whole_life_insur;p_insur_exp
1001;A young family owning a house in the suburbs;34;62000;1;350000;1;12000;0;
1002;A retired teacher renting an apartment;67;24000;0;;1;8000;1;90
1003;;41;55000;0;;0;;0;
`

func TestParseCSV(t *testing.T) {
	doubles, err := ParseCSV(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, doubles, 3)

	first := doubles[0]
	assert.Equal(t, core.EntityID("1001"), first.ID)
	assert.Equal(t, "A young family owning a house in the suburbs", first.Description)
	assert.Equal(t, 34.0, first.Attributes["p_age_2023"])
	assert.Equal(t, 62000.0, first.Attributes["p_gross_income"])

	require.Len(t, first.Products, 2)
	// Products come back in canonical variant order.
	assert.Equal(t, core.ProductBankAccount, first.Products[0].Type)
	assert.Equal(t, 12000.0, first.Products[0].Attributes["p_holding_bank_deposits_2023"])
	assert.Equal(t, core.ProductProperty, first.Products[1].Type)
	assert.Equal(t, 350000.0, first.Products[1].Attributes["p_prop_total_value"])

	second := doubles[1]
	require.Len(t, second.Products, 2)
	assert.Equal(t, core.ProductBankAccount, second.Products[0].Type)
	assert.Equal(t, core.ProductInsurance, second.Products[1].Type)
	assert.Equal(t, 90.0, second.Products[1].Attributes["p_insur_exp"])

	// A double without a description still loads; only the vector side
	// skips it later.
	third := doubles[2]
	assert.Empty(t, third.Description)
	assert.Empty(t, third.Products)
}

func TestParseCSV_SkipsRowsWithoutIdentifier(t *testing.T) {
	export := "unique_identifier;description_en\n" +
		";no identifier here\n" +
		"2001;a valid row\n"

	doubles, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, doubles, 1)
	assert.Equal(t, core.EntityID("2001"), doubles[0].ID)
}

func TestParseCSV_MissingIdentifierColumn(t *testing.T) {
	export := "description_en;p_age_2023\nsomebody;34\n"

	_, err := ParseCSV(strings.NewReader(export))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseCSV_IgnoresUnknownColumns(t *testing.T) {
	export := "unique_identifier;description_en;some_legacy_column\n" +
		"3001;a description;whatever\n"

	doubles, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, doubles, 1)
	assert.NotContains(t, doubles[0].Attributes, "some_legacy_column")
}

func TestParseCSV_ShortRows(t *testing.T) {
	// Rows may omit trailing columns entirely.
	export := "unique_identifier;description_en;p_age_2023\n" +
		"4001;short row\n"

	doubles, err := ParseCSV(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, doubles, 1)
	assert.NotContains(t, doubles[0].Attributes, "p_age_2023")
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, 42.0, coerceValue("42"))
	assert.Equal(t, 3.5, coerceValue("3.5"))
	assert.Equal(t, "hello", coerceValue("hello"))
}
