// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"encoding/json"
	"strconv"
)

// ValidateFilter converts an untrusted candidate mapping (typically decoded
// language-model output) into a normalized Filter.
//
// Validation rules:
//   - the only allowed top-level key is "products"; a missing "products" key
//     yields the empty filter (empty conjunction is true)
//   - every nested key must name a known product variant
//   - every predicate must match exactly one of the allowed shapes:
//     {exists}, {min}, {max}, {min,max}, {equals}
//   - min and max must be numeric, with min <= max when both are present
//
// Unknown keys anywhere in the tree are rejected, not dropped: silently
// ignoring them would silently mis-query. Errors are always *ValidationError
// with the path of the offending key.
func ValidateFilter(candidate map[string]any) (*Filter, error) {
	filter := NewFilter()
	if candidate == nil {
		return filter, nil
	}

	for key := range candidate {
		if key != "products" {
			return nil, &ValidationError{Reason: "unknown key", Path: key}
		}
	}

	raw, ok := candidate["products"]
	if !ok || raw == nil {
		return filter, nil
	}

	products, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{Reason: "products must be a mapping of product variants", Path: "products"}
	}

	for name, value := range products {
		path := "products." + name

		variant := ProductType(name)
		if !variant.Valid() {
			return nil, &ValidationError{Reason: "unknown product variant", Path: path}
		}

		shape, ok := value.(map[string]any)
		if !ok {
			return nil, &ValidationError{Reason: "predicate must be a mapping", Path: path}
		}

		predicate, err := validatePredicate(shape, path)
		if err != nil {
			return nil, err
		}
		filter.Products[variant] = predicate
	}

	return filter, nil
}

func validatePredicate(shape map[string]any, path string) (Predicate, error) {
	var (
		hasExists, hasMin, hasMax, hasEquals bool
		exists                               bool
		minVal, maxVal, equalsVal            float64
	)

	for key, value := range shape {
		keyPath := path + "." + key
		switch key {
		case "exists":
			b, ok := value.(bool)
			if !ok {
				return Predicate{}, &ValidationError{Reason: "exists must be a boolean", Path: keyPath}
			}
			hasExists, exists = true, b
		case "min":
			n, ok := coerceNumber(value)
			if !ok {
				return Predicate{}, &ValidationError{Reason: "min must be numeric", Path: keyPath}
			}
			hasMin, minVal = true, n
		case "max":
			n, ok := coerceNumber(value)
			if !ok {
				return Predicate{}, &ValidationError{Reason: "max must be numeric", Path: keyPath}
			}
			hasMax, maxVal = true, n
		case "equals":
			n, ok := coerceNumber(value)
			if !ok {
				return Predicate{}, &ValidationError{Reason: "equals must be numeric", Path: keyPath}
			}
			hasEquals, equalsVal = true, n
		default:
			return Predicate{}, &ValidationError{Reason: "unknown predicate key", Path: keyPath}
		}
	}

	switch {
	case hasExists && !hasMin && !hasMax && !hasEquals:
		return Predicate{Kind: PredicateExists, Exists: exists}, nil
	case hasEquals && !hasExists && !hasMin && !hasMax:
		return Predicate{Kind: PredicateEquals, Equals: equalsVal}, nil
	case (hasMin || hasMax) && !hasExists && !hasEquals:
		if hasMin && hasMax && minVal > maxVal {
			return Predicate{}, &ValidationError{Reason: "min must not exceed max", Path: path}
		}
		p := Predicate{Kind: PredicateRange}
		if hasMin {
			p.Min = &minVal
		}
		if hasMax {
			p.Max = &maxVal
		}
		return p, nil
	case !hasExists && !hasMin && !hasMax && !hasEquals:
		return Predicate{}, &ValidationError{Reason: "predicate must not be empty", Path: path}
	default:
		return Predicate{}, &ValidationError{Reason: "predicate mixes incompatible keys", Path: path}
	}
}

// coerceNumber normalizes the numeric encodings a decoded candidate may carry
// to float64. JSON decoding yields float64, but model output routed through
// repair may surface ints, json.Number, or numeric strings.
func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
