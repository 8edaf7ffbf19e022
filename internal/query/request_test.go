package query_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/datagroom-ai/datagroom-mcp/internal/query"
)

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{0, query.DefaultLimit},
		{-5, query.DefaultLimit},
		{1, 1},
		{50, 50},
		{1000, 1000},
		{1001, query.MaxLimit},
		{999999, query.MaxLimit},
	}
	for _, tt := range tests {
		if got := query.ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampSkip(t *testing.T) {
	t.Parallel()

	if got := query.ClampSkip(-1); got != 0 {
		t.Errorf("ClampSkip(-1) = %d, want 0", got)
	}
	if got := query.ClampSkip(120); got != 120 {
		t.Errorf("ClampSkip(120) = %d, want 120", got)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()

	spec := query.Spec{
		Dataset: "orders",
		User:    "mcp-user",
		Filters: []query.Filter{
			mustFilter(t, `{"field":"status","type":"eq","value":"failed"}`),
			mustFilter(t, `{"field":"amount","type":"gt","value":1000}`),
		},
		SortBy:  "amount",
		SortDir: query.SortDesc,
		Skip:    100,
		Limit:   50,
	}

	first, err := query.Normalize(spec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := query.Normalize(spec)
	if err != nil {
		t.Fatalf("Normalize (second): %v", err)
	}

	if !bytes.Equal(first.Body, second.Body) {
		t.Errorf("payloads differ:\n%s\n%s", first.Body, second.Body)
	}
	if first.Method != second.Method || first.Path != second.Path {
		t.Error("method/path differ between identical normalizations")
	}
}

func TestNormalize_WireShape(t *testing.T) {
	t.Parallel()

	req, err := query.Normalize(query.Spec{
		Dataset: "orders",
		View:    "default",
		User:    "alice",
		Filters: []query.Filter{mustFilter(t, `{"field":"status","type":"eq","value":"failed"}`)},
		SortBy:  "amount",
		Skip:    100,
		Limit:   50,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", req.Method)
	}
	if req.Path != "/ds/viewViaPost/orders/default/alice" {
		t.Errorf("path = %q", req.Path)
	}

	var body struct {
		Filters []map[string]any `json:"filters"`
		Page    int              `json:"page"`
		PerPage int              `json:"per_page"`
		Sorters []map[string]any `json:"sorters"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Page != 3 { // skip 100 / limit 50 + 1
		t.Errorf("page = %d, want 3", body.Page)
	}
	if body.PerPage != 50 {
		t.Errorf("per_page = %d, want 50", body.PerPage)
	}
	if len(body.Filters) != 1 {
		t.Fatalf("filters = %v, want 1 entry", body.Filters)
	}
	if len(body.Sorters) != 1 || body.Sorters[0]["dir"] != "asc" {
		t.Errorf("sorters = %v, want one asc sorter", body.Sorters)
	}
}

func TestNormalize_EmptyFiltersEncodeAsArray(t *testing.T) {
	t.Parallel()

	req, err := query.Normalize(query.Spec{Dataset: "d", User: "u"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(string(req.Body), `"filters":[]`) {
		t.Errorf("body = %s, want filters encoded as [] not null", req.Body)
	}
}

func TestNormalize_ClampsRatherThanRejects(t *testing.T) {
	t.Parallel()

	req, err := query.Normalize(query.Spec{Dataset: "d", User: "u", Skip: -10, Limit: 99999})
	if err != nil {
		t.Fatalf("out-of-range pagination must not be rejected, got %v", err)
	}

	var body struct {
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.PerPage != query.MaxLimit {
		t.Errorf("per_page = %d, want clamped to %d", body.PerPage, query.MaxLimit)
	}
	if body.Page != 1 {
		t.Errorf("page = %d, want 1 after negative skip clamp", body.Page)
	}
}

func TestNormalize_InvalidSortDirection(t *testing.T) {
	t.Parallel()

	_, err := query.Normalize(query.Spec{
		Dataset: "d", User: "u", SortBy: "amount", SortDir: "sideways",
	})
	if err == nil {
		t.Fatal("expected validation error for unknown sort direction")
	}
	if !strings.Contains(err.Error(), "sideways") {
		t.Errorf("error should name the bad direction, got: %v", err)
	}
}

func TestNormalize_MissingDataset(t *testing.T) {
	t.Parallel()

	_, err := query.Normalize(query.Spec{User: "u"})
	if err == nil {
		t.Fatal("expected validation error for empty dataset name")
	}
}

func TestNormalize_PathEscaping(t *testing.T) {
	t.Parallel()

	req, err := query.Normalize(query.Spec{Dataset: "my data", User: "u"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if strings.Contains(req.Path, " ") {
		t.Errorf("path %q contains unescaped space", req.Path)
	}
}

func TestListDatasets_Path(t *testing.T) {
	t.Parallel()

	req := query.ListDatasets("mcp-user")
	if req.Method != http.MethodGet {
		t.Errorf("method = %q, want GET", req.Method)
	}
	if req.Path != "/ds/dsList/mcp-user" {
		t.Errorf("path = %q", req.Path)
	}
	if req.Body != nil {
		t.Error("list request must have no body")
	}
}

func TestSchemaColumns_Path(t *testing.T) {
	t.Parallel()

	req := query.SchemaColumns("orders", "default", "alice")
	if req.Path != "/ds/view/columns/orders/default/alice" {
		t.Errorf("path = %q", req.Path)
	}
}
