// Package query normalizes loosely-typed tool arguments into the Datagroom
// gateway's exact wire contract.
//
// The package is a pure translation layer: it validates filter, sort,
// pagination, and aggregation specifications, and builds the corresponding
// gateway request shapes. It performs no I/O and holds no state, so the same
// input always yields a byte-identical request payload. Field names are
// treated as opaque strings — whether a field exists in a dataset is the
// gateway's responsibility, not ours.
package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Operator is a filter comparison operator accepted by the gateway.
type Operator string

const (
	OpEq    Operator = "eq"
	OpNe    Operator = "ne"
	OpGt    Operator = "gt"
	OpLt    Operator = "lt"
	OpGte   Operator = "gte"
	OpLte   Operator = "lte"
	OpIn    Operator = "in"
	OpRegex Operator = "regex"
)

// IsValid reports whether o is a recognised operator.
func (o Operator) IsValid() bool {
	switch o {
	case OpEq, OpNe, OpGt, OpLt, OpGte, OpLte, OpIn, OpRegex:
		return true
	}
	return false
}

// valueKind discriminates the accepted shapes of a filter value.
type valueKind int

const (
	kindInvalid valueKind = iota
	kindString            // JSON string
	kindNumber            // JSON number
	kindBool              // JSON boolean
	kindList              // JSON array
)

// FilterValue is the tagged variant for a filter's value: a scalar (string,
// number, or boolean) or a list. Objects, nulls, and nested arrays are
// rejected at decode time so that operator validation is exhaustive.
//
// The original JSON encoding is retained verbatim, which keeps request
// building deterministic: re-marshalling a FilterValue reproduces the exact
// bytes the caller sent (no float re-formatting, no key reordering).
type FilterValue struct {
	kind valueKind
	raw  json.RawMessage
}

// StringValue returns a FilterValue holding the string s.
func StringValue(s string) FilterValue {
	raw, _ := json.Marshal(s)
	return FilterValue{kind: kindString, raw: raw}
}

// NumberValue returns a FilterValue holding the number n.
func NumberValue(n float64) FilterValue {
	raw, _ := json.Marshal(n)
	return FilterValue{kind: kindNumber, raw: raw}
}

// BoolValue returns a FilterValue holding the boolean b.
func BoolValue(b bool) FilterValue {
	raw, _ := json.Marshal(b)
	return FilterValue{kind: kindBool, raw: raw}
}

// ListValue returns a FilterValue holding the given scalars as a list.
func ListValue(items ...any) (FilterValue, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return FilterValue{}, fmt.Errorf("query: encode list value: %w", err)
	}
	return FilterValue{kind: kindList, raw: raw}, nil
}

// UnmarshalJSON decodes a scalar or list value. Objects and nulls are
// rejected here rather than during validation so that a FilterValue, once
// constructed, is always one of the accepted shapes.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("query: empty filter value")
	}

	switch trimmed[0] {
	case '"':
		v.kind = kindString
	case '[':
		if err := validateListElements(trimmed); err != nil {
			return err
		}
		v.kind = kindList
	case 't', 'f':
		v.kind = kindBool
	case '{':
		return fmt.Errorf("query: filter value must be a scalar or list, got an object")
	case 'n':
		return fmt.Errorf("query: filter value must not be null")
	default:
		if !json.Valid(trimmed) {
			return fmt.Errorf("query: invalid filter value %q", string(trimmed))
		}
		v.kind = kindNumber
	}

	if !json.Valid(trimmed) {
		return fmt.Errorf("query: invalid filter value %q", string(trimmed))
	}

	v.raw = append(v.raw[:0], trimmed...)
	return nil
}

// validateListElements ensures every element of a list value is a scalar.
// Nested arrays, objects, and nulls inside a list have no meaning in the
// gateway's filter contract.
func validateListElements(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("query: invalid list value: %w", err)
	}
	for i, item := range items {
		elem := bytes.TrimSpace(item)
		if len(elem) == 0 {
			return fmt.Errorf("query: list value element %d is empty", i)
		}
		switch elem[0] {
		case '[', '{':
			return fmt.Errorf("query: list value elements must be scalars, element %d is not", i)
		case 'n':
			return fmt.Errorf("query: list value element %d must not be null", i)
		}
	}
	return nil
}

// MarshalJSON reproduces the value exactly as it was received.
func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.kind == kindInvalid {
		return nil, fmt.Errorf("query: marshal of zero FilterValue")
	}
	return v.raw, nil
}

// IsList reports whether the value is a list.
func (v FilterValue) IsList() bool { return v.kind == kindList }

// IsString reports whether the value is a string scalar.
func (v FilterValue) IsString() bool { return v.kind == kindString }

// IsZero reports whether the value was never set.
func (v FilterValue) IsZero() bool { return v.kind == kindInvalid }

// String returns the value's JSON encoding, for error messages and logs.
func (v FilterValue) String() string { return string(v.raw) }

// Filter is one condition applied to a dataset query. The JSON field names
// match the gateway's Tabulator-style filter contract.
type Filter struct {
	Field string      `json:"field"`
	Type  Operator    `json:"type"`
	Value FilterValue `json:"value"`
}

// Validate checks the operator/value combination for this filter.
func (f Filter) Validate() error {
	if f.Field == "" {
		return &ValidationError{Kind: KindInvalidFilter, Detail: "filter field must not be empty"}
	}
	if !f.Type.IsValid() {
		return &ValidationError{
			Kind:   KindInvalidFilter,
			Field:  f.Field,
			Detail: fmt.Sprintf("unknown operator %q (valid: eq, ne, gt, lt, gte, lte, in, regex)", string(f.Type)),
		}
	}
	if f.Value.IsZero() {
		return &ValidationError{Kind: KindInvalidFilter, Field: f.Field, Detail: "filter value is required"}
	}

	switch f.Type {
	case OpIn:
		if !f.Value.IsList() {
			return &ValidationError{
				Kind:   KindInvalidFilter,
				Field:  f.Field,
				Detail: fmt.Sprintf("operator %q requires a list value, got %s", OpIn, f.Value),
			}
		}
	case OpRegex:
		if !f.Value.IsString() {
			return &ValidationError{
				Kind:   KindInvalidFilter,
				Field:  f.Field,
				Detail: fmt.Sprintf("operator %q requires a string value, got %s", OpRegex, f.Value),
			}
		}
	default:
		if f.Value.IsList() {
			return &ValidationError{
				Kind:   KindInvalidFilter,
				Field:  f.Field,
				Detail: fmt.Sprintf("operator %q requires a scalar value, got a list", string(f.Type)),
			}
		}
	}
	return nil
}

// ValidateFilters validates each filter in order and returns the first
// failure. Validation never reaches the network: a request with an invalid
// filter is rejected before any gateway call is built.
func ValidateFilters(filters []Filter) error {
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
