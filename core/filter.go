package core

import (
	"fmt"
	"sort"
	"strings"
)

// PredicateKind tags the closed set of predicate shapes a filter may use.
type PredicateKind int

const (
	// PredicateExists requires (or forbids) ownership of a product variant.
	PredicateExists PredicateKind = iota + 1
	// PredicateRange bounds the variant's value attribute; at least one of
	// Min/Max is set, and Min <= Max when both are.
	PredicateRange
	// PredicateEquals requires the variant's value attribute to equal a number.
	PredicateEquals
)

func (k PredicateKind) String() string {
	switch k {
	case PredicateExists:
		return "exists"
	case PredicateRange:
		return "range"
	case PredicateEquals:
		return "equals"
	default:
		return fmt.Sprintf("predicate(%d)", int(k))
	}
}

// Predicate is a tagged variant over the allowed predicate shapes.
// Untyped candidate maps are converted into this closed form exactly once,
// by ValidateFilter; everything downstream works on typed values.
type Predicate struct {
	Kind   PredicateKind
	Exists bool     // valid when Kind == PredicateExists
	Min    *float64 // valid when Kind == PredicateRange
	Max    *float64 // valid when Kind == PredicateRange
	Equals float64  // valid when Kind == PredicateEquals
}

// Filter is a validated, normalized predicate tree over product variants.
// Variants combine by implicit conjunction. An empty filter matches every
// entity (empty conjunction is true).
type Filter struct {
	Products map[ProductType]Predicate
}

// NewFilter returns an empty filter that matches everything.
func NewFilter() *Filter {
	return &Filter{Products: map[ProductType]Predicate{}}
}

// Empty reports whether the filter carries no predicates.
func (f *Filter) Empty() bool {
	return f == nil || len(f.Products) == 0
}

// ProductTypes returns the constrained variants in sorted order.
// The sorted order is the canonical iteration order used by the query
// compiler and the serializer, keeping compiled queries deterministic.
func (f *Filter) ProductTypes() []ProductType {
	if f == nil {
		return nil
	}
	types := make([]ProductType, 0, len(f.Products))
	for t := range f.Products {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// AsCandidate renders the filter back into the untyped candidate shape
// accepted by ValidateFilter. Validating the result yields an equal filter,
// which is what makes validation idempotent end to end.
func (f *Filter) AsCandidate() map[string]any {
	products := map[string]any{}
	for _, t := range f.ProductTypes() {
		p := f.Products[t]
		pred := map[string]any{}
		switch p.Kind {
		case PredicateExists:
			pred["exists"] = p.Exists
		case PredicateRange:
			if p.Min != nil {
				pred["min"] = *p.Min
			}
			if p.Max != nil {
				pred["max"] = *p.Max
			}
		case PredicateEquals:
			pred["equals"] = p.Equals
		}
		products[string(t)] = pred
	}
	return map[string]any{"products": products}
}

// Describe renders a short natural-language summary of the filter, used as
// the text fed to the semantic side when a caller supplies a structured
// filter instead of free text.
func (f *Filter) Describe() string {
	if f.Empty() {
		return "all doubles"
	}
	parts := make([]string, 0, len(f.Products))
	for _, t := range f.ProductTypes() {
		p := f.Products[t]
		switch p.Kind {
		case PredicateExists:
			if p.Exists {
				parts = append(parts, fmt.Sprintf("owning a %s", t))
			} else {
				parts = append(parts, fmt.Sprintf("without a %s", t))
			}
		case PredicateRange:
			switch {
			case p.Min != nil && p.Max != nil:
				parts = append(parts, fmt.Sprintf("%s value between %.0f and %.0f", t, *p.Min, *p.Max))
			case p.Min != nil:
				parts = append(parts, fmt.Sprintf("%s value of at least %.0f", t, *p.Min))
			default:
				parts = append(parts, fmt.Sprintf("%s value of at most %.0f", t, *p.Max))
			}
		case PredicateEquals:
			parts = append(parts, fmt.Sprintf("%s value of exactly %.0f", t, p.Equals))
		}
	}
	return "doubles " + strings.Join(parts, " and ")
}
