package metadata

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"math/big"
	"strings"
)

// Map is a flat mapping of metadata keys to values extracted from a single image.
// Values are limited to nil, bool, string, numbers, []any and map[string]any.
type Map map[string]any

// LooksLikeJSON reports whether s starts like a JSON object or array.
func LooksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// TryParse decodes s as a JSON value. Numbers are kept as json.Number so
// large integers survive intact. The second return is false when s is not a
// single valid JSON value; no error is ever surfaced.
func TryParse(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return v, true
}

// Normalize replaces a string holding a JSON document with the decoded value.
// Anything else, including strings that fail to parse, is returned as-is.
func Normalize(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if parsed, ok := TryParse(s); ok {
		return parsed
	}
	return v
}

// IsContainer reports whether v is a map or a sequence.
func IsContainer(v any) bool {
	switch v.(type) {
	case map[string]any, Map, []any:
		return true
	}
	return false
}

// AsMap returns v as a map[string]any when it is a map.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Map:
		return m, true
	}
	return nil, false
}

// AsSlice returns v as a []any when it is a sequence.
func AsSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// IsPrimitive reports whether v is nil, a bool, a string or a number.
func IsPrimitive(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case bool, string:
		return true
	}
	return isNumber(v)
}

// Primitive coerces v to a primitive value. Maps and sequences are rendered
// as compact JSON; other unknown types fall back to their JSON encoding.
func Primitive(v any) any {
	if IsPrimitive(v) {
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Equal compares two metadata values structurally. Numbers compare by exact
// value regardless of their Go type.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if am, ok := AsMap(a); ok {
		bm, ok := AsMap(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	if as, ok := AsSlice(a); ok {
		bs, ok := AsSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}

	if isNumber(a) {
		return isNumber(b) && numbersEqual(a, b)
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	}
	return false
}

// numbersEqual compares two numbers exactly. Non-finite floats fall back to
// float comparison, so NaN never equals anything.
func numbersEqual(a, b any) bool {
	an, aok := a.(json.Number)
	bn, bok := b.(json.Number)
	if aok && bok && an == bn {
		return true
	}
	ar, aok := exactNumber(a)
	br, bok := exactNumber(b)
	if aok && bok {
		return ar.Cmp(br) == 0
	}
	return asFloat(a) == asFloat(b)
}

func exactNumber(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case json.Number:
		return new(big.Rat).SetString(string(n))
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(n), true
	case float32:
		return exactNumber(float64(n))
	case int:
		return new(big.Rat).SetInt64(int64(n)), true
	case int8:
		return new(big.Rat).SetInt64(int64(n)), true
	case int16:
		return new(big.Rat).SetInt64(int64(n)), true
	case int32:
		return new(big.Rat).SetInt64(int64(n)), true
	case int64:
		return new(big.Rat).SetInt64(n), true
	case uint:
		return new(big.Rat).SetInt(new(big.Int).SetUint64(uint64(n))), true
	case uint8:
		return new(big.Rat).SetInt64(int64(n)), true
	case uint16:
		return new(big.Rat).SetInt64(int64(n)), true
	case uint32:
		return new(big.Rat).SetInt64(int64(n)), true
	case uint64:
		return new(big.Rat).SetInt(new(big.Int).SetUint64(n)), true
	}
	return nil, false
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	if r, ok := exactNumber(v); ok {
		f, _ := r.Float64()
		return f
	}
	return math.NaN()
}
