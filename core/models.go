package core

import (
	"fmt"
	"sort"
)

// EntityID is the stable identifier of a double.
// The graph store and the vector index share the same identity space,
// so an ID returned by either backend refers to the same entity.
type EntityID string

// ProductType enumerates the product node variants a double may own.
// The set is closed: filters referencing any other variant are rejected
// during validation, before a query is ever compiled.
type ProductType string

const (
	ProductProperty          ProductType = "Property"
	ProductInvestmentAccount ProductType = "InvestmentAccount"
	ProductBankAccount       ProductType = "BankAccount"
	ProductOccuPension       ProductType = "OccuPension"
	ProductPrivatePension    ProductType = "PrivatePension"
	ProductInsurance         ProductType = "Insurance"
)

// productValueFields maps each product variant to the attribute that carries
// its monetary value in the graph store.
var productValueFields = map[ProductType]string{
	ProductProperty:          "p_prop_total_value",
	ProductInvestmentAccount: "p_val_investment",
	ProductBankAccount:       "p_holding_bank_deposits_2023",
	ProductOccuPension:       "p_pens_sav",
	ProductPrivatePension:    "p_pens_sav",
	ProductInsurance:         "p_insur_exp",
}

// productSynonyms maps common natural-language aliases to product variants.
// Used during the translator's repair pass: a model answer that names a
// plain-English alias instead of the canonical variant is still convertible.
var productSynonyms = map[string]ProductType{
	"property":             ProductProperty,
	"real estate":          ProductProperty,
	"home":                 ProductProperty,
	"house":                ProductProperty,
	"investment":           ProductInvestmentAccount,
	"investments":          ProductInvestmentAccount,
	"investment account":   ProductInvestmentAccount,
	"bank account":         ProductBankAccount,
	"savings account":      ProductBankAccount,
	"bank deposits":        ProductBankAccount,
	"savings":              ProductBankAccount,
	"pension":              ProductOccuPension,
	"occupational pension": ProductOccuPension,
	"private pension":      ProductPrivatePension,
	"insurance":            ProductInsurance,
}

// Valid reports whether p is one of the defined product variants.
func (p ProductType) Valid() bool {
	_, ok := productValueFields[p]
	return ok
}

// ValueField returns the graph attribute holding this variant's value.
// Returns the empty string for unknown variants.
func (p ProductType) ValueField() string {
	return productValueFields[p]
}

// AllProductTypes returns every defined product variant in sorted order.
func AllProductTypes() []ProductType {
	types := make([]ProductType, 0, len(productValueFields))
	for t := range productValueFields {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ProductTypeFromName resolves a product variant from its canonical name or a
// lowercase natural-language synonym.
func ProductTypeFromName(name string) (ProductType, bool) {
	if t := ProductType(name); t.Valid() {
		return t, true
	}
	t, ok := productSynonyms[name]
	return t, ok
}

// Product is a typed attribute-bearing node linked to a double.
type Product struct {
	Type       ProductType
	Attributes map[string]any
}

// Double is an entity profile with linked products. Doubles are owned by the
// graph store; this package only ever reads them during search.
type Double struct {
	ID          EntityID
	Description string
	Attributes  map[string]any
	Products    []Product
}

// StructuredMatch is one entity satisfying a filter exactly, together with the
// attributes the graph store returned for it.
type StructuredMatch struct {
	EntityID   EntityID
	Attributes map[string]any
}

// StructuredResult is the unranked outcome of a structured query.
// Membership is boolean: every entry satisfied the full conjunction.
type StructuredResult []StructuredMatch

// SemanticMatch is one entity returned by similarity search with a
// normalized score in [0, 1].
type SemanticMatch struct {
	EntityID EntityID
	Score    float64
}

// SemanticResult holds semantic matches ordered by descending score.
type SemanticResult []SemanticMatch

// Provenance records which backend(s) produced a hybrid result.
// The numeric order doubles as the tie-break priority: both > structured > semantic.
type Provenance int

const (
	ProvenanceSemantic Provenance = iota + 1
	ProvenanceStructured
	ProvenanceBoth
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceSemantic:
		return "semantic"
	case ProvenanceStructured:
		return "structured"
	case ProvenanceBoth:
		return "both"
	default:
		return fmt.Sprintf("provenance(%d)", int(p))
	}
}

// HybridResult is one entry of the merged, ranked output.
type HybridResult struct {
	EntityID   EntityID
	Provenance Provenance
	Score      float64
	Similarity float64        // raw semantic score, 0 when absent from semantic results
	Attributes map[string]any // attributes from the structured match, nil when absent
}
