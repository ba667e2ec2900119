package filterexpr

import (
	"fmt"
	"slices"
	"strings"
)

// OrderKey is one sort key.
type OrderKey struct {
	Field string
	Desc  bool
}

// OrderSchema whitelists sort keys.
type OrderSchema struct {
	Fields []string
	// Default applies when order_by is empty.
	Default []OrderKey
	// Tiebreak is appended unless the caller already sorts by it.
	Tiebreak OrderKey
	// MaxKeys limits caller-supplied keys; zero means no limit.
	MaxKeys int
}

// ParseOrder parses "key [asc|desc], ..." into sort keys.
func ParseOrder(raw string, schema OrderSchema) ([]OrderKey, error) {
	var keys []OrderKey
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}

		key := OrderKey{Field: parts[0]}
		if !slices.Contains(schema.Fields, key.Field) {
			return nil, fmt.Errorf("field %q cannot be used for ordering", key.Field)
		}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				key.Desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], key.Field)
			}
		}
		if hasField(keys, key.Field) {
			return nil, fmt.Errorf("duplicate order key %q", key.Field)
		}
		keys = append(keys, key)
	}

	if schema.MaxKeys > 0 && len(keys) > schema.MaxKeys {
		return nil, fmt.Errorf("at most %d order keys are supported", schema.MaxKeys)
	}
	if len(keys) == 0 {
		keys = append(keys, schema.Default...)
	}
	if schema.Tiebreak.Field != "" && !hasField(keys, schema.Tiebreak.Field) {
		keys = append(keys, schema.Tiebreak)
	}
	return keys, nil
}

func hasField(keys []OrderKey, field string) bool {
	return slices.ContainsFunc(keys, func(k OrderKey) bool { return k.Field == field })
}
