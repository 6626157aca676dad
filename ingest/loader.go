package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/doublesearch/core"
)

// CSV column layout of a doubles export. The identifier and description
// columns are fixed; one flag column per product variant marks ownership,
// and the listed attribute columns are copied onto the product node.
const (
	idColumn          = "unique_identifier"
	descriptionColumn = "description_en"
)

// productFlagColumns maps ownership flag columns to product variants.
var productFlagColumns = map[string]core.ProductType{
	"p_i_has_occu_pension":       core.ProductOccuPension,
	"p_i_has_private_pension":    core.ProductPrivatePension,
	"p_i_whole_life_insur":       core.ProductInsurance,
	"p_i_savings_for_securities": core.ProductInvestmentAccount,
	"p_i_homeowner":              core.ProductProperty,
	"p_i_has_savings_acct":       core.ProductBankAccount,
}

// productAttributeColumns lists the columns carried onto each product node.
// Every variant's value field is included so range filters can match.
var productAttributeColumns = map[core.ProductType][]string{
	core.ProductOccuPension:       {"p_pens_sav"},
	core.ProductPrivatePension:    {"p_pens_sav"},
	core.ProductInsurance:         {"p_insur_exp"},
	core.ProductInvestmentAccount: {"p_inv_sav", "p_val_investment"},
	core.ProductProperty:          {"p_prop_sav", "p_prop_total_value"},
	core.ProductBankAccount:       {"p_bank_sav", "p_holding_bank_deposits_2023"},
}

// doubleAttributeColumns lists the columns carried onto the double node
// itself, beyond id and description.
var doubleAttributeColumns = []string{
	"p_age_2023",
	"p_i_male",
	"p_gross_income",
	"p_expenses",
}

// LoadCSV reads a doubles export from a file.
func LoadCSV(path string) ([]core.Double, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV reads a semicolon-separated doubles export. Rows without an
// identifier are skipped; unknown columns are ignored, so exports carrying
// extra fields still load.
func ParseCSV(r io.Reader) ([]core.Double, error) {
	logger := slog.Default().With("component", "csv-loader")

	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns[idColumn]; !ok {
		return nil, ErrMissingHeader
	}

	var doubles []core.Double
	line := 1
	for {
		row, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed row", "line", line, "err", err)
			continue
		}

		double, ok := parseRow(columns, row)
		if !ok {
			logger.Warn("skipping row without identifier", "line", line)
			continue
		}
		doubles = append(doubles, double)
	}

	logger.Info("parsed doubles export", "doubles", len(doubles))
	return doubles, nil
}

func parseRow(columns map[string]int, row []string) (core.Double, bool) {
	id := field(columns, row, idColumn)
	if id == "" {
		return core.Double{}, false
	}

	double := core.Double{
		ID:          core.EntityID(id),
		Description: field(columns, row, descriptionColumn),
		Attributes:  map[string]any{},
	}
	for _, column := range doubleAttributeColumns {
		if raw := field(columns, row, column); raw != "" {
			double.Attributes[column] = coerceValue(raw)
		}
	}

	for _, variant := range core.AllProductTypes() {
		flag := flagColumnFor(variant)
		if flag == "" || !isSet(field(columns, row, flag)) {
			continue
		}
		product := core.Product{
			Type:       variant,
			Attributes: map[string]any{},
		}
		for _, column := range productAttributeColumns[variant] {
			if raw := field(columns, row, column); raw != "" {
				product.Attributes[column] = coerceValue(raw)
			}
		}
		double.Products = append(double.Products, product)
	}

	return double, true
}

func flagColumnFor(variant core.ProductType) string {
	for flag, v := range productFlagColumns {
		if v == variant {
			return flag
		}
	}
	return ""
}

func field(columns map[string]int, row []string, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isSet interprets an ownership flag column.
func isSet(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// coerceValue parses numeric columns as numbers and keeps everything else
// as text.
func coerceValue(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}
