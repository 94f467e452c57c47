package calls

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"voice-dashboard/internal/apperr"
	"voice-dashboard/pkg/utils"
)

type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindDecimal
	kindTimestamp
	kindJSON
)

// patchColumns lists the calls columns a patch may touch. call_id is the key.
var patchColumns = map[string]columnKind{
	"caller_number":  kindText,
	"agent_id":       kindText,
	"status":         kindText,
	"duration":       kindInt,
	"start_time":     kindTimestamp,
	"end_time":       kindTimestamp,
	"call_direction": kindText,
	"from_number":    kindText,
	"to_number":      kindText,
	"recording_url":  kindText,
	"transcript":     kindText,
	"cost":           kindDecimal,
	"region":         kindText,
	"metadata":       kindJSON,
}

// requiredColumns are NOT NULL in the calls table and cannot be cleared.
var requiredColumns = map[string]bool{
	"agent_id":   true,
	"status":     true,
	"start_time": true,
}

var patchAliases = map[string]string{
	"direction": "call_direction",
}

// Assignment is one typed SET clause of a patch. A nil Value clears the column.
type Assignment struct {
	Column string
	Value  any
}

// buildAssignments validates raw JSON fields against the column whitelist.
// Values must come from a decoder with UseNumber enabled.
func buildAssignments(fields map[string]any) ([]Assignment, error) {
	out := make([]Assignment, 0, len(fields))
	seen := make(map[string]bool, len(fields))

	for key, raw := range fields {
		if key == "call_id" {
			continue
		}
		col := key
		if alias, ok := patchAliases[key]; ok {
			col = alias
		}
		kind, ok := patchColumns[col]
		if !ok {
			return nil, apperr.Validation("unknown field: " + key)
		}
		if seen[col] {
			return nil, apperr.Validation("duplicate field: " + col)
		}
		seen[col] = true

		if raw == nil && requiredColumns[col] {
			return nil, apperr.Validation(key + " cannot be null")
		}
		v, err := convertValue(kind, raw)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("invalid value for %s: %v", key, err))
		}
		out = append(out, Assignment{Column: col, Value: v})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out, nil
}

func convertValue(kind columnKind, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch kind {
	case kindText:
		switch v := raw.(type) {
		case string:
			return v, nil
		case json.Number:
			return v.String(), nil
		}
	case kindInt:
		switch v := raw.(type) {
		case json.Number:
			if i, err := v.Int64(); err == nil {
				return int32Range(i)
			}
			f, err := v.Float64()
			if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
				return nil, fmt.Errorf("expected 32-bit integer")
			}
			return int64(f), nil
		case string:
			i, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("expected 32-bit integer")
			}
			return int32Range(i)
		}
	case kindDecimal:
		switch v := raw.(type) {
		case json.Number:
			return decimal.NewFromString(v.String())
		case string:
			return decimal.NewFromString(v)
		}
	case kindTimestamp:
		if v, ok := raw.(string); ok {
			return utils.ParseTimestamp(v)
		}
	case kindJSON:
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return nil, fmt.Errorf("unexpected %T", raw)
}

// int32Range keeps integers inside the INTEGER column range.
func int32Range(i int64) (any, error) {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return nil, fmt.Errorf("expected 32-bit integer")
	}
	return i, nil
}
