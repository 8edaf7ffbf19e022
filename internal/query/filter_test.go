package query_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/datagroom-ai/datagroom-mcp/internal/query"
)

func mustFilter(t *testing.T, raw string) query.Filter {
	t.Helper()
	var f query.Filter
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("unmarshal filter %s: %v", raw, err)
	}
	return f
}

func TestFilterValidate_OperatorValueCombinations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantKind query.ValidationKind // empty means valid
	}{
		{"eq with string", `{"field":"status","type":"eq","value":"failed"}`, ""},
		{"eq with number", `{"field":"amount","type":"eq","value":42}`, ""},
		{"eq with bool", `{"field":"active","type":"eq","value":true}`, ""},
		{"gt with number", `{"field":"amount","type":"gt","value":1000}`, ""},
		{"in with list", `{"field":"status","type":"in","value":["a","b"]}`, ""},
		{"regex with string", `{"field":"name","type":"regex","value":"^foo"}`, ""},
		{"empty field", `{"field":"","type":"eq","value":1}`, query.KindInvalidFilter},
		{"unknown operator", `{"field":"a","type":"like","value":1}`, query.KindInvalidFilter},
		{"in with scalar", `{"field":"a","type":"in","value":"x"}`, query.KindInvalidFilter},
		{"in with number", `{"field":"a","type":"in","value":3}`, query.KindInvalidFilter},
		{"regex with number", `{"field":"a","type":"regex","value":7}`, query.KindInvalidFilter},
		{"regex with list", `{"field":"a","type":"regex","value":["x"]}`, query.KindInvalidFilter},
		{"eq with list", `{"field":"a","type":"eq","value":[1,2]}`, query.KindInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := mustFilter(t, tt.raw)
			err := f.Validate()

			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var verr *query.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", verr.Kind, tt.wantKind)
			}
		})
	}
}

func TestFilterValue_RejectsObjectsAndNull(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"field":"a","type":"eq","value":{"nested":1}}`,
		`{"field":"a","type":"eq","value":null}`,
	} {
		var f query.Filter
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			t.Errorf("unmarshal %s: expected error, got nil", raw)
		}
	}
}

func TestFilterValue_RejectsNonScalarListElements(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"field":"a","type":"in","value":[[1,2]]}`,
		`{"field":"a","type":"in","value":[{"x":1}]}`,
		`{"field":"a","type":"in","value":["ok",null]}`,
	} {
		var f query.Filter
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			t.Errorf("unmarshal %s: expected error, got nil", raw)
		}
	}

	// Scalar elements of mixed types stay valid.
	f := mustFilter(t, `{"field":"a","type":"in","value":["x",1,true]}`)
	if err := f.Validate(); err != nil {
		t.Errorf("mixed scalar list should validate, got %v", err)
	}
}

func TestFilterValue_RoundTripsExactBytes(t *testing.T) {
	t.Parallel()

	// 0.10 must not become 0.1: the raw encoding is retained verbatim.
	raw := `{"field":"ratio","type":"gt","value":0.10}`
	f := mustFilter(t, raw)

	out, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "0.10") {
		t.Errorf("marshalled filter = %s, want original number encoding 0.10 preserved", out)
	}
}

func TestValidateFilters_IndependentOfPosition(t *testing.T) {
	t.Parallel()

	good := mustFilter(t, `{"field":"status","type":"eq","value":"ok"}`)
	bad := mustFilter(t, `{"field":"ids","type":"in","value":"not-a-list"}`)

	if err := query.ValidateFilters([]query.Filter{good, bad}); err == nil {
		t.Error("invalid filter after a valid one should still fail validation")
	}
	if err := query.ValidateFilters([]query.Filter{bad, good}); err == nil {
		t.Error("invalid filter before a valid one should still fail validation")
	}
	if err := query.ValidateFilters([]query.Filter{good}); err != nil {
		t.Errorf("valid filters should pass, got %v", err)
	}
}

func TestAggregationValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		agg      query.Aggregation
		wantKind query.ValidationKind
	}{
		{"count without field", query.Aggregation{Operation: query.AggCount}, ""},
		{"count with field", query.Aggregation{Operation: query.AggCount, Field: "x"}, ""},
		{"sum with field", query.Aggregation{Operation: query.AggSum, Field: "amount"}, ""},
		{"sum without field", query.Aggregation{Operation: query.AggSum}, query.KindMissingAggregationField},
		{"avg without field", query.Aggregation{Operation: query.AggAvg}, query.KindMissingAggregationField},
		{"min without field", query.Aggregation{Operation: query.AggMin}, query.KindMissingAggregationField},
		{"max without field", query.Aggregation{Operation: query.AggMax}, query.KindMissingAggregationField},
		{"unknown operation", query.Aggregation{Operation: "median", Field: "x"}, query.KindInvalidAggregation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.agg.Validate()

			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var verr *query.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", verr.Kind, tt.wantKind)
			}
		})
	}
}

func TestValidateGroupBy(t *testing.T) {
	t.Parallel()

	if err := query.ValidateGroupBy(""); err != nil {
		t.Errorf("empty group_by should be valid (no grouping), got %v", err)
	}
	if err := query.ValidateGroupBy("status"); err != nil {
		t.Errorf("plain field name should be valid, got %v", err)
	}
	if err := query.ValidateGroupBy("two words"); err == nil {
		t.Error("group_by with whitespace should fail validation")
	}
}
