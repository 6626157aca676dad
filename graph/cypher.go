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


package graph

import (
	"fmt"
	"strings"

	"github.com/poiesic/doublesearch/core"
)

// CompileFilter translates a validated filter into a single parameterized
// Cypher query over the (:Double)-[:OWNS]->(product) schema.
//
// Compilation is deterministic: product variants are visited in sorted order,
// so equal filters always produce the identical query text and parameter set.
// Numeric bounds travel as parameters; only product labels and value-field
// names, which come from the closed variant enum, are interpolated into the
// query text.
//
// An empty filter compiles to a match over every double.
func CompileFilter(filter *core.Filter) (string, map[string]any, error) {
	var b strings.Builder
	b.WriteString("MATCH (d:Double)")
	params := map[string]any{}
	var conditions []string

	if filter != nil {
		for i, variant := range filter.ProductTypes() {
			predicate := filter.Products[variant]
			alias := fmt.Sprintf("p%d", i)
			prefix := strings.ToLower(string(variant))

			switch predicate.Kind {
			case core.PredicateExists:
				if predicate.Exists {
					fmt.Fprintf(&b, "\nMATCH (d)-[:OWNS]->(%s:%s)", alias, variant)
				} else {
					conditions = append(conditions, fmt.Sprintf("NOT (d)-[:OWNS]->(:%s)", variant))
				}

			case core.PredicateRange:
				fmt.Fprintf(&b, "\nMATCH (d)-[:OWNS]->(%s:%s)", alias, variant)
				field := variant.ValueField()
				if predicate.Min != nil {
					param := prefix + "_min"
					conditions = append(conditions, fmt.Sprintf("%s.%s >= $%s", alias, field, param))
					params[param] = *predicate.Min
				}
				if predicate.Max != nil {
					param := prefix + "_max"
					conditions = append(conditions, fmt.Sprintf("%s.%s <= $%s", alias, field, param))
					params[param] = *predicate.Max
				}

			case core.PredicateEquals:
				fmt.Fprintf(&b, "\nMATCH (d)-[:OWNS]->(%s:%s)", alias, variant)
				param := prefix + "_equals"
				conditions = append(conditions, fmt.Sprintf("%s.%s = $%s", alias, variant.ValueField(), param))
				params[param] = predicate.Equals

			default:
				return "", nil, core.InvalidArgumentf("filter for %s has no predicate kind", variant)
			}
		}
	}

	if len(conditions) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}

	b.WriteString("\nRETURN DISTINCT d")
	return b.String(), params, nil
}
