package tools

import (
	"context"

	"github.com/datagroom-ai/datagroom-mcp/internal/query"
	"github.com/datagroom-ai/datagroom-mcp/internal/render"
)

// Sample size bounds. Out-of-range values are clamped, matching the
// forgiving pagination behaviour of the query tool.
const (
	defaultSampleSize = 20
	maxSampleSize     = 100
)

// sampleArgs are the arguments for datagroom_sample_dataset.
type sampleArgs struct {
	DatasetName string `json:"dataset_name" jsonschema:"Name of the dataset to sample."`
	SampleSize  int    `json:"sample_size,omitempty" jsonschema:"Number of rows to return (default 20, maximum 100)."`
	ViewName    string `json:"view_name,omitempty" jsonschema:"View name (defaults to 'default')."`
	UserName    string `json:"user_name,omitempty" jsonschema:"User name for access control (defaults to the configured user)."`
}

func (r *Registry) sample(ctx context.Context, args sampleArgs) (string, string) {
	size := args.SampleSize
	if size <= 0 {
		size = defaultSampleSize
	}
	if size > maxSampleSize {
		size = maxSampleSize
	}

	// The gateway has no random-sample endpoint; the first page of the
	// unfiltered view stands in for a sample.
	req, err := query.Normalize(query.Spec{
		Dataset: args.DatasetName,
		View:    args.ViewName,
		User:    r.user(args.UserName),
		Limit:   size,
	})
	if err != nil {
		return render.ValidationError(err), "validationError"
	}

	resp := r.client.Do(ctx, req)
	if !resp.OK() {
		return render.Error(resp), string(resp.Status)
	}
	return render.Sample(resp.Payload, args.DatasetName), "success"
}
