package query

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Pagination bounds. Out-of-range values are clamped rather than rejected so
// that a sloppy agent call still produces a usable page instead of an error.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// ClampLimit replaces non-positive limits with [DefaultLimit] and caps the
// result at [MaxLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ClampSkip replaces negative skips with zero.
func ClampSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}

// Request is a normalized gateway call: method, URL path, and an optional
// JSON body. It is handed to the transport client and discarded.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// SortDir is a sort direction accepted by the gateway.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Spec is the loosely-typed query portion of a tool call, before
// normalization. Skip and Limit may be out of range; Sort fields may be
// empty.
type Spec struct {
	Dataset string
	View    string
	User    string

	Filters  []Filter
	SortBy   string
	SortDir  SortDir
	Skip     int
	Limit    int
}

// sorter is the gateway's wire shape for one sort instruction.
type sorter struct {
	Field string `json:"field"`
	Dir   string `json:"dir"`
}

// queryBody is the gateway's wire shape for the viewViaPost body. Field
// order is fixed by this struct, which is what makes normalization
// byte-deterministic.
type queryBody struct {
	Filters []Filter `json:"filters"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
	Sorters []sorter `json:"sorters,omitempty"`
}

// ListDatasets builds the request for the dataset listing endpoint.
func ListDatasets(user string) Request {
	return Request{
		Method: http.MethodGet,
		Path:   "/ds/dsList/" + url.PathEscape(user),
	}
}

// SchemaColumns builds the request for the column metadata endpoint.
func SchemaColumns(dataset, view, user string) Request {
	return Request{
		Method: http.MethodGet,
		Path: "/ds/view/columns/" + url.PathEscape(dataset) +
			"/" + url.PathEscape(view) + "/" + url.PathEscape(user),
	}
}

// Normalize validates spec and builds the viewViaPost request for it.
//
// Validation failures return a [*ValidationError] and never produce a
// request. Pagination is clamped, not rejected: skip < 0 becomes 0, limit
// ≤ 0 becomes [DefaultLimit], limit > [MaxLimit] becomes [MaxLimit]. The
// gateway paginates by page number, so skip is translated to
// skip/limit + 1 — the same arithmetic on the same clamped values every
// time, keeping the payload deterministic.
func Normalize(spec Spec) (Request, error) {
	if spec.Dataset == "" {
		return Request{}, &ValidationError{Kind: KindInvalidFilter, Detail: "dataset name must not be empty"}
	}
	if err := ValidateFilters(spec.Filters); err != nil {
		return Request{}, err
	}

	limit := ClampLimit(spec.Limit)
	skip := ClampSkip(spec.Skip)

	filters := spec.Filters
	if filters == nil {
		filters = []Filter{} // gateway expects an array, not null
	}

	body := queryBody{
		Filters: filters,
		Page:    skip/limit + 1,
		PerPage: limit,
	}

	if spec.SortBy != "" {
		dir := spec.SortDir
		if dir == "" {
			dir = SortAsc
		}
		if dir != SortAsc && dir != SortDesc {
			return Request{}, &ValidationError{
				Kind:   KindInvalidSort,
				Field:  spec.SortBy,
				Detail: fmt.Sprintf("sort direction %q is invalid (valid: asc, desc)", string(dir)),
			}
		}
		body.Sorters = []sorter{{Field: spec.SortBy, Dir: string(dir)}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Request{}, fmt.Errorf("query: encode request body: %w", err)
	}

	view := spec.View
	if view == "" {
		view = "default"
	}

	return Request{
		Method: http.MethodPost,
		Path: "/ds/viewViaPost/" + url.PathEscape(spec.Dataset) +
			"/" + url.PathEscape(view) + "/" + url.PathEscape(spec.User),
		Body: payload,
	}, nil
}
