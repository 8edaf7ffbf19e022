package tools

import (
	"context"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/datagroom-ai/datagroom-mcp/internal/query"
	"github.com/datagroom-ai/datagroom-mcp/internal/render"
)

// getSchemaArgs are the arguments for datagroom_get_schema.
type getSchemaArgs struct {
	DatasetName string `json:"dataset_name" jsonschema:"Name of the dataset to describe."`
	ViewName    string `json:"view_name,omitempty" jsonschema:"View name (defaults to 'default')."`
	UserName    string `json:"user_name,omitempty" jsonschema:"User name for access control (defaults to the configured user)."`
}

func (r *Registry) getSchema(ctx context.Context, args getSchemaArgs) (string, string) {
	if args.DatasetName == "" {
		return render.ValidationError(&query.ValidationError{
			Kind: query.KindInvalidFilter, Detail: "dataset_name must not be empty",
		}), "validationError"
	}

	view := args.ViewName
	if view == "" {
		view = "default"
	}
	user := r.user(args.UserName)

	colResp := r.client.Do(ctx, query.SchemaColumns(args.DatasetName, view, user))
	if !colResp.OK() {
		return render.Error(colResp), string(colResp.Status)
	}

	// The columns endpoint carries no row count, so a one-row query supplies
	// the total — and its row doubles as the per-column sample values.
	countReq, err := query.Normalize(query.Spec{
		Dataset: args.DatasetName,
		View:    view,
		User:    user,
		Limit:   1,
	})
	if err != nil {
		return render.ValidationError(err), "validationError"
	}

	countResp := r.client.Do(ctx, countReq)
	if !countResp.OK() {
		return render.Error(countResp), string(countResp.Status)
	}

	doc := gjson.ParseBytes(countResp.Payload)
	totalRows := doc.Get("total").Int()
	var sampleRow gjson.Result
	if data := doc.Get("data").Array(); len(data) > 0 {
		sampleRow = data[0]
	}

	columns := parseColumns(colResp.Payload, sampleRow)
	keys := stringList(gjson.GetBytes(colResp.Payload, "keys"))

	return render.Schema(args.DatasetName, totalRows, keys, columns), "success"
}

// parseColumns converts the gateway's column metadata into ordered
// [render.Column] values. The gateway returns columns as an object keyed by
// 1-based index strings ({"1": "col1", "2": "col2"}); ordering follows the
// numeric index. Types come from the matching columnAttrs entry; sample
// values from the probe row when present.
func parseColumns(payload []byte, sampleRow gjson.Result) []render.Column {
	doc := gjson.ParseBytes(payload)

	type indexed struct {
		idx  int
		name string
	}
	var entries []indexed
	doc.Get("columns").ForEach(func(key, val gjson.Result) bool {
		idx, err := strconv.Atoi(key.Str)
		if err != nil {
			idx = 0
		}
		entries = append(entries, indexed{idx: idx, name: val.Str})
		return true
	})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	attrs := doc.Get("columnAttrs").Array()
	typeFor := func(name string) string {
		for _, a := range attrs {
			if a.Get("field").Str == name {
				if editor := a.Get("editor").Str; editor != "" {
					return editor
				}
				break
			}
		}
		return "string"
	}

	columns := make([]render.Column, 0, len(entries))
	for _, e := range entries {
		col := render.Column{Name: e.name, Type: typeFor(e.name)}
		if sampleRow.Exists() {
			if v := sampleRow.Get(e.name); v.Exists() {
				s := v.Raw
				if v.Type == gjson.String {
					s = v.Str
				}
				col.Samples = []string{s}
			}
		}
		columns = append(columns, col)
	}
	return columns
}

// stringList extracts a JSON string array in document order.
func stringList(arr gjson.Result) []string {
	var out []string
	for _, v := range arr.Array() {
		out = append(out, v.Str)
	}
	return out
}
