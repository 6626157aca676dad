package openai

import (
	"strconv"
	"strings"

	"github.com/poiesic/doublesearch/core"
)

// repairCandidate applies the bounded schema repair pass to a parseable but
// invalid candidate filter. It only performs conversions that are obviously
// correct: unknown keys are stripped, product aliases are resolved through
// the synonym table, and operator-style scalar conditions (">200000") are
// rewritten into the min/max shape. It returns nil when a constraint the
// model asserted cannot be preserved; a repaired filter must never be wider
// than the candidate it came from.
func repairCandidate(candidate map[string]any) map[string]any {
	rawProducts, ok := candidate["products"].(map[string]any)
	if !ok {
		if _, present := candidate["products"]; present {
			// A products value that is not a mapping carries constraints
			// we cannot read.
			return nil
		}
		// Some models nest the object under a different container key;
		// accept a lone top-level mapping as the products block.
		if len(candidate) == 1 {
			for _, v := range candidate {
				if m, isMap := v.(map[string]any); isMap {
					rawProducts = m
				}
			}
		}
		if rawProducts == nil {
			return nil
		}
	}

	products := map[string]any{}
	for name, value := range rawProducts {
		variant, ok := core.ProductTypeFromName(name)
		if !ok {
			variant, ok = core.ProductTypeFromName(strings.ToLower(strings.TrimSpace(name)))
		}
		if !ok {
			continue
		}

		predicate := repairPredicate(value)
		if predicate == nil {
			// An unintelligible predicate on a known variant: dropping it
			// would silently widen the filter.
			return nil
		}
		products[string(variant)] = predicate
	}

	return map[string]any{"products": products}
}

// repairPredicate normalizes a single predicate value, returning nil when
// nothing usable remains.
func repairPredicate(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		repaired := map[string]any{}
		for key, val := range v {
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "exists":
				if b, ok := coerceBool(val); ok {
					repaired["exists"] = b
				}
			case "min", "minimum", "gte", "at_least":
				repaired["min"] = val
			case "max", "maximum", "lte", "at_most":
				repaired["max"] = val
			case "equals", "equal", "eq", "value":
				repaired["equals"] = val
			}
		}
		// A predicate mixing exists with bounds keeps the more specific
		// bound constraints.
		if len(repaired) > 1 {
			delete(repaired, "exists")
		}
		if len(repaired) == 0 {
			return nil
		}
		return repaired
	case string:
		return predicateFromCondition(v)
	case bool:
		return map[string]any{"exists": v}
	case float64:
		return map[string]any{"equals": v}
	default:
		return nil
	}
}

// predicateFromCondition converts an operator-style condition string such as
// ">200000" or "<= 500" into the min/max predicate shape.
func predicateFromCondition(condition string) map[string]any {
	s := strings.TrimSpace(condition)
	if b, ok := coerceBool(s); ok {
		return map[string]any{"exists": b}
	}

	op := ""
	for _, candidate := range []string{">=", "<=", ">", "<", "="} {
		if strings.HasPrefix(s, candidate) {
			op = candidate
			s = strings.TrimSpace(strings.TrimPrefix(s, candidate))
			break
		}
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	switch op {
	case ">", ">=":
		return map[string]any{"min": n}
	case "<", "<=":
		return map[string]any{"max": n}
	case "=":
		return map[string]any{"equals": n}
	default:
		return map[string]any{"equals": n}
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	}
	return false, false
}
