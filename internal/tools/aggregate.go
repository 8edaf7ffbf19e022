package tools

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/datagroom-ai/datagroom-mcp/internal/query"
	"github.com/datagroom-ai/datagroom-mcp/internal/render"
)

// aggregateFetchLimit bounds the number of rows fetched for local
// aggregation. The gateway exposes no aggregation endpoint, so metrics are
// computed here over one maximal page.
const aggregateFetchLimit = query.MaxLimit

// aggregateArgs are the arguments for datagroom_aggregate_dataset. The wire
// schema is declared in [aggregateInputSchema].
type aggregateArgs struct {
	DatasetName  string              `json:"dataset_name"`
	Aggregations []query.Aggregation `json:"aggregations"`
	GroupBy      string              `json:"group_by,omitempty"`
	Filters      []query.Filter      `json:"filters,omitempty"`
	ViewName     string              `json:"view_name,omitempty"`
	UserName     string              `json:"user_name,omitempty"`
}

func (r *Registry) aggregate(ctx context.Context, args aggregateArgs) (string, string) {
	if err := query.ValidateAggregations(args.Aggregations); err != nil {
		return render.ValidationError(err), "validationError"
	}
	if err := query.ValidateGroupBy(args.GroupBy); err != nil {
		return render.ValidationError(err), "validationError"
	}

	req, err := query.Normalize(query.Spec{
		Dataset: args.DatasetName,
		View:    args.ViewName,
		User:    r.user(args.UserName),
		Filters: args.Filters,
		Limit:   aggregateFetchLimit,
	})
	if err != nil {
		return render.ValidationError(err), "validationError"
	}

	resp := r.client.Do(ctx, req)
	if !resp.OK() {
		return render.Error(resp), string(resp.Status)
	}

	doc := gjson.ParseBytes(resp.Payload)
	rows := doc.Get("data").Array()
	if len(rows) == 0 {
		return fmt.Sprintf("No data found in dataset %q with the given filters.", args.DatasetName), "success"
	}

	results := computeAggregations(rows, args.Aggregations, args.GroupBy)
	out := render.Aggregation(results)

	// More rows matched than one page holds: the metrics cover only the
	// fetched prefix, and the agent needs to know that.
	if total := doc.Get("total").Int(); total > int64(len(rows)) {
		out += fmt.Sprintf("\n\n**Limit applied**: aggregated over the first %d of %d matching rows; results are partial. Refine filters to aggregate exactly.",
			len(rows), total)
	}
	return out, "success"
}

// computeAggregations evaluates the requested metrics over rows, optionally
// grouped by groupBy. Group order is the first-appearance order of each key
// in the data, which is the order the gateway returned — it is never
// re-sorted.
func computeAggregations(rows []gjson.Result, aggs []query.Aggregation, groupBy string) []render.GroupResult {
	if groupBy == "" {
		return []render.GroupResult{{Metrics: computeMetrics(rows, aggs)}}
	}

	var order []string
	groups := make(map[string][]gjson.Result)
	for _, row := range rows {
		key := groupKey(row, groupBy)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	results := make([]render.GroupResult, 0, len(order))
	for _, key := range order {
		results = append(results, render.GroupResult{
			Group:   key,
			Metrics: computeMetrics(groups[key], aggs),
		})
	}
	return results
}

// groupKey extracts the grouping value of a row. Rows without the field
// group under "null", matching how the gateway represents absent values.
func groupKey(row gjson.Result, field string) string {
	v := row.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return "null"
	}
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

// computeMetrics evaluates each aggregation over the given rows. Numeric
// operations consider only rows where the field holds a JSON number; when no
// such rows exist the metric is omitted rather than reported as zero.
func computeMetrics(rows []gjson.Result, aggs []query.Aggregation) []render.Metric {
	var metrics []render.Metric
	for _, agg := range aggs {
		if agg.Operation == query.AggCount {
			metrics = append(metrics, render.Metric{Name: "count", Value: int64(len(rows))})
			continue
		}

		var values []float64
		for _, row := range rows {
			if v := row.Get(agg.Field); v.Exists() && v.Type == gjson.Number {
				values = append(values, v.Num)
			}
		}
		if len(values) == 0 {
			continue
		}

		name := string(agg.Operation) + "_" + agg.Field
		switch agg.Operation {
		case query.AggSum:
			metrics = append(metrics, render.Metric{Name: name, Value: sum(values)})
		case query.AggAvg:
			metrics = append(metrics, render.Metric{Name: name, Value: sum(values) / float64(len(values))})
		case query.AggMin:
			metrics = append(metrics, render.Metric{Name: name, Value: minOf(values)})
		case query.AggMax:
			metrics = append(metrics, render.Metric{Name: name, Value: maxOf(values)})
		}
	}
	return metrics
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
