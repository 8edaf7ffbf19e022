package tools

import (
	"context"

	"github.com/datagroom-ai/datagroom-mcp/internal/query"
	"github.com/datagroom-ai/datagroom-mcp/internal/render"
)

// queryArgs are the arguments for datagroom_query_dataset. The wire schema
// is declared in [queryInputSchema].
type queryArgs struct {
	DatasetName   string         `json:"dataset_name"`
	Filters       []query.Filter `json:"filters,omitempty"`
	SortField     string         `json:"sort_field,omitempty"`
	SortDirection string         `json:"sort_direction,omitempty"`
	MaxRows       int            `json:"max_rows,omitempty"`
	Offset        int            `json:"offset,omitempty"`
	ViewName      string         `json:"view_name,omitempty"`
	UserName      string         `json:"user_name,omitempty"`
}

func (r *Registry) queryDataset(ctx context.Context, args queryArgs) (string, string) {
	spec := query.Spec{
		Dataset: args.DatasetName,
		View:    args.ViewName,
		User:    r.user(args.UserName),
		Filters: args.Filters,
		SortBy:  args.SortField,
		SortDir: query.SortDir(args.SortDirection),
		Skip:    args.Offset,
		Limit:   args.MaxRows,
	}

	req, err := query.Normalize(spec)
	if err != nil {
		return render.ValidationError(err), "validationError"
	}

	resp := r.client.Do(ctx, req)
	if !resp.OK() {
		return render.Error(resp), string(resp.Status)
	}

	return render.QueryResult(resp.Payload, render.QueryMeta{
		Dataset: args.DatasetName,
		Filters: args.Filters,
		Skip:    query.ClampSkip(args.Offset),
		Limit:   query.ClampLimit(args.MaxRows),
	}), "success"
}
