// Package render converts gateway JSON payloads into compact markdown for
// the calling model.
//
// Rendering is a pure projection: rows, columns, and group keys appear in
// the exact order the gateway (or the local aggregator) produced them. The
// package iterates JSON in document order via gjson rather than decoding
// into Go maps, which would destroy key ordering. On failed calls the
// formatter emits a single structured error line and nothing else — it
// never fabricates or partially renders data.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/datagroom-ai/datagroom-mcp/internal/gateway"
	"github.com/datagroom-ai/datagroom-mcp/internal/query"
)

// maxCellLen caps the rendered width of a single table cell. Long strings
// and nested structures are truncated with an ellipsis.
const maxCellLen = 80

// Error renders a non-success gateway response as one structured line.
func Error(resp *gateway.Response) string {
	return fmt.Sprintf("[%s] %s", resp.Status, resp.Message)
}

// ValidationError renders a request validation failure as one structured
// line, mirroring the shape of [Error].
func ValidationError(err error) string {
	return fmt.Sprintf("[validationError] %s", err.Error())
}

// QueryMeta describes the query whose result is being rendered. Used for
// the summary header above the row table.
type QueryMeta struct {
	Dataset string
	Filters []query.Filter
	Skip    int
	Limit   int
}

// QueryResult renders a viewViaPost response: a summary header, the row
// table, and — only when more rows matched than the page holds — an explicit
// note that the limit was applied, so the agent knows to paginate or refine.
func QueryResult(payload []byte, meta QueryMeta) string {
	doc := gjson.ParseBytes(payload)
	rows := doc.Get("data").Array()
	total := doc.Get("total").Int()

	var b strings.Builder
	fmt.Fprintf(&b, "# Dataset: %s\n\n", meta.Dataset)
	fmt.Fprintf(&b, "**Total matching rows**: %d\n", total)
	fmt.Fprintf(&b, "**Rows returned**: %d\n", len(rows))
	fmt.Fprintf(&b, "**Offset**: %d\n", meta.Skip)

	if len(meta.Filters) > 0 {
		b.WriteString("\n**Applied filters**:\n")
		for _, f := range meta.Filters {
			fmt.Fprintf(&b, "- `%s` %s `%s`\n", f.Field, f.Type, f.Value)
		}
	}

	b.WriteString("\n")
	b.WriteString(Table(rows))

	if int(total) > meta.Limit {
		fmt.Fprintf(&b, "\n\n**Limit applied**: %d rows match, returning %d. Use the offset parameter or refine filters to see more.",
			total, len(rows))
	}
	return b.String()
}

// Table renders rows as a markdown table. Columns come from the first row
// in document order; the internal `_id` column is dropped. Subsequent rows
// missing a column render an empty cell.
func Table(rows []gjson.Result) string {
	if len(rows) == 0 {
		return "No data to display."
	}

	var columns []string
	rows[0].ForEach(func(key, _ gjson.Result) bool {
		if key.Str != "_id" {
			columns = append(columns, key.Str)
		}
		return true
	})
	if len(columns) == 0 {
		return "No data to display."
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")

	for _, row := range rows {
		cells := make(map[string]string, len(columns))
		row.ForEach(func(key, val gjson.Result) bool {
			cells[key.Str] = cell(val)
			return true
		})
		b.WriteString("|")
		for _, col := range columns {
			b.WriteString(" " + cells[col] + " |")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// cell renders one table cell: strings unquoted, everything else as its raw
// JSON, truncated and pipe-escaped so it cannot break the table.
func cell(val gjson.Result) string {
	var s string
	if val.Type == gjson.String {
		s = val.Str
	} else {
		s = val.Raw
	}
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) > maxCellLen {
		// Back up to a rune boundary so the cut never splits a multi-byte
		// character.
		cut := maxCellLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	return s
}

// DatasetList renders a dsList response. Entries may be objects (name plus
// optional metadata) or bare strings. A missing row count renders as
// "unknown" — the entry is never dropped.
func DatasetList(payload []byte) string {
	datasets := gjson.GetBytes(payload, "dbList").Array()
	if len(datasets) == 0 {
		return "No datasets found. You may not have access to any datasets."
	}

	var b strings.Builder
	b.WriteString("# Available Datasets\n")
	for _, ds := range datasets {
		if ds.Type == gjson.String {
			fmt.Fprintf(&b, "\n- **%s** (rows: unknown)", ds.Str)
			continue
		}

		name := ds.Get("name").Str
		if name == "" {
			name = "unknown"
		}

		rowCount := "unknown"
		if rc := ds.Get("row_count"); rc.Exists() {
			rowCount = strconv.FormatInt(rc.Int(), 10)
		}

		fmt.Fprintf(&b, "\n- **%s** (rows: %s", name, rowCount)
		if owner := ds.Get("perms.owner"); owner.Exists() {
			fmt.Fprintf(&b, ", owner: %s", owner.Str)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Column is one schema entry, already ordered by the gateway's column index.
type Column struct {
	Name    string
	Type    string
	Samples []string
}

// Schema renders column metadata for a dataset: an ordered column list with
// inferred types and sample values, plus the total row count and key columns.
func Schema(dataset string, totalRows int64, keys []string, columns []Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Dataset: %s\n\n", dataset)
	fmt.Fprintf(&b, "**Total rows**: %d\n", totalRows)
	if len(keys) > 0 {
		fmt.Fprintf(&b, "**Key columns**: %s\n", strings.Join(keys, ", "))
	}
	b.WriteString("\n## Columns\n")

	for _, col := range columns {
		fmt.Fprintf(&b, "\n### %s\n- **Type**: %s", col.Name, col.Type)
		if len(col.Samples) > 0 {
			fmt.Fprintf(&b, "\n- **Sample values**: %s", strings.Join(col.Samples, ", "))
		}
	}

	if len(columns) == 0 {
		b.WriteString("\nNo columns reported by the gateway.")
	}
	return b.String()
}

// Metric is one computed aggregation value. Name is e.g. "count" or
// "avg_amount".
type Metric struct {
	Name  string
	Value any
}

// GroupResult holds the metrics for one group, in computation order.
type GroupResult struct {
	// Group is the group key, or empty for an ungrouped aggregation.
	Group string

	Metrics []Metric
}

// Aggregation renders group → metric pairs exactly in the order given. The
// caller (the aggregator) owns ordering; this function never re-sorts.
func Aggregation(results []GroupResult) string {
	if len(results) == 0 {
		return "No aggregation results."
	}

	var b strings.Builder
	b.WriteString("# Aggregation Results\n")
	for _, r := range results {
		if r.Group != "" {
			fmt.Fprintf(&b, "\n## %s\n", r.Group)
		} else {
			b.WriteString("\n")
		}
		for _, m := range r.Metrics {
			fmt.Fprintf(&b, "- **%s**: %s\n", m.Name, formatValue(m.Value))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatValue renders a metric value without spurious float noise: integral
// floats print without a decimal point, matching the gateway's own JSON
// number formatting.
func formatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case string:
		return n
	default:
		return fmt.Sprint(v)
	}
}

// Sample renders a sample-tool response: a short header plus the row table.
func Sample(payload []byte, dataset string) string {
	doc := gjson.ParseBytes(payload)
	rows := doc.Get("data").Array()
	total := doc.Get("total").Int()

	if len(rows) == 0 {
		return fmt.Sprintf("Dataset %q is empty or you don't have access.", dataset)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Sample from %s\n\n", dataset)
	fmt.Fprintf(&b, "**Total rows in dataset**: %d\n", total)
	fmt.Fprintf(&b, "**Sample size**: %d\n\n", len(rows))
	b.WriteString(Table(rows))
	return b.String()
}
