package query

import "fmt"

// ValidationKind classifies what part of a request failed validation.
type ValidationKind string

const (
	// KindInvalidFilter covers empty fields, unknown operators, and
	// operator/value shape mismatches.
	KindInvalidFilter ValidationKind = "InvalidFilter"

	// KindMissingAggregationField is returned when an aggregation other than
	// count omits its field.
	KindMissingAggregationField ValidationKind = "MissingAggregationField"

	// KindInvalidAggregation covers unknown aggregation operations.
	KindInvalidAggregation ValidationKind = "InvalidAggregation"

	// KindInvalidGroupBy covers malformed group_by values.
	KindInvalidGroupBy ValidationKind = "InvalidGroupBy"

	// KindInvalidSort covers unknown sort directions.
	KindInvalidSort ValidationKind = "InvalidSort"
)

// ValidationError reports a caller-supplied request shape the gateway
// contract cannot express. It names the offending field so the agent can
// correct the call and retry.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Detail string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %s", e.Kind, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
