package tools

import (
	"context"

	"github.com/datagroom-ai/datagroom-mcp/internal/query"
	"github.com/datagroom-ai/datagroom-mcp/internal/render"
)

// listDatasetsArgs are the arguments for datagroom_list_datasets.
type listDatasetsArgs struct {
	UserName string `json:"user_name,omitempty" jsonschema:"User name for access control (defaults to the configured user)."`
}

func (r *Registry) listDatasets(ctx context.Context, args listDatasetsArgs) (string, string) {
	req := query.ListDatasets(r.user(args.UserName))
	resp := r.client.Do(ctx, req)
	if !resp.OK() {
		return render.Error(resp), string(resp.Status)
	}
	return render.DatasetList(resp.Payload), "success"
}
