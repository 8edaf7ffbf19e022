package query

import (
	"fmt"
	"strings"
	"unicode"
)

// AggOp is an aggregation operation.
type AggOp string

const (
	AggCount AggOp = "count"
	AggSum   AggOp = "sum"
	AggAvg   AggOp = "avg"
	AggMin   AggOp = "min"
	AggMax   AggOp = "max"
)

// IsValid reports whether o is a recognised aggregation operation.
func (o AggOp) IsValid() bool {
	switch o {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}

// Aggregation is one requested metric over a dataset. Field is required for
// every operation except count.
type Aggregation struct {
	Operation AggOp  `json:"operation"`
	Field     string `json:"field,omitempty"`
}

// Validate checks the operation and its field requirement.
func (a Aggregation) Validate() error {
	if !a.Operation.IsValid() {
		return &ValidationError{
			Kind:   KindInvalidAggregation,
			Field:  a.Field,
			Detail: fmt.Sprintf("unknown operation %q (valid: count, sum, avg, min, max)", string(a.Operation)),
		}
	}
	if a.Operation != AggCount && a.Field == "" {
		return &ValidationError{
			Kind:   KindMissingAggregationField,
			Detail: fmt.Sprintf("operation %q requires a field", string(a.Operation)),
		}
	}
	return nil
}

// ValidateAggregations validates each aggregation in order and requires at
// least one to be present.
func ValidateAggregations(aggs []Aggregation) error {
	if len(aggs) == 0 {
		return &ValidationError{Kind: KindInvalidAggregation, Detail: "at least one aggregation is required"}
	}
	for _, a := range aggs {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGroupBy checks that groupBy, when present, is a plausible field
// name: non-empty, printable, no whitespace. Whether the field actually
// exists in the dataset is deliberately not checked — the gateway owns
// schema truth, and a group_by naming an unknown or already-filtered field
// is passed through unchanged.
func ValidateGroupBy(groupBy string) error {
	if groupBy == "" {
		return nil
	}
	if strings.TrimSpace(groupBy) != groupBy || strings.ContainsFunc(groupBy, unicode.IsSpace) {
		return &ValidationError{
			Kind:   KindInvalidGroupBy,
			Field:  groupBy,
			Detail: "group_by must be a single field name without whitespace",
		}
	}
	return nil
}
