// Package tools declares the five Datagroom MCP tools and dispatches each
// call through the normalize → gateway → render pipeline.
//
// The tool set is a closed enumeration: list datasets, get schema, query,
// aggregate, sample. Every downstream failure — validation, transport, HTTP
// classification, even a handler panic — is converted here into a structured
// tool error result tagged with its status class. Raw errors never escape to
// the MCP runtime, and no tool ever returns partial data on failure.
package tools

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/datagroom-ai/datagroom-mcp/internal/gateway"
	"github.com/datagroom-ai/datagroom-mcp/internal/observe"
)

// Registry owns the gateway client shared by all tools and registers the
// tool set on an MCP server. It is immutable after construction; each tool
// call is an independent request/response cycle with no cross-call state.
type Registry struct {
	client      *gateway.Client
	metrics     *observe.Metrics
	defaultUser string
}

// New creates a Registry. defaultUser is the gateway dsUser used when a tool
// call does not name one.
func New(client *gateway.Client, defaultUser string, metrics *observe.Metrics) *Registry {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Registry{client: client, metrics: metrics, defaultUser: defaultUser}
}

// Register adds all five tools to server.
func (r *Registry) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "datagroom_list_datasets",
		Description: "List all Datagroom datasets the configured user can access. " +
			"Use this to discover which datasets are available.",
	}, wrap(r, "datagroom_list_datasets", r.listDatasets))

	mcp.AddTool(server, &mcp.Tool{
		Name: "datagroom_get_schema",
		Description: "Get schema information for a dataset: column names, types, sample " +
			"values, and total row count. Use this first when working with a new dataset.",
	}, wrap(r, "datagroom_get_schema", r.getSchema))

	mcp.AddTool(server, &mcp.Tool{
		Name: "datagroom_query_dataset",
		Description: "Query a dataset with filters, sorting, and pagination, returning " +
			"matching rows as a table. Respects all dataset and row-level ACLs.",
		InputSchema: queryInputSchema(),
	}, wrap(r, "datagroom_query_dataset", r.queryDataset))

	mcp.AddTool(server, &mcp.Tool{
		Name: "datagroom_aggregate_dataset",
		Description: "Compute count/sum/avg/min/max aggregations over a dataset, optionally " +
			"grouped by a field and filtered first. Aggregates over a bounded fetch of rows.",
		InputSchema: aggregateInputSchema(),
	}, wrap(r, "datagroom_aggregate_dataset", r.aggregate))

	mcp.AddTool(server, &mcp.Tool{
		Name: "datagroom_sample_dataset",
		Description: "Return the first N rows of a dataset. Useful for exploring data " +
			"without knowing its structure.",
	}, wrap(r, "datagroom_sample_dataset", r.sample))
}

// user resolves the effective gateway user for a call.
func (r *Registry) user(userName string) string {
	if userName != "" {
		return userName
	}
	return r.defaultUser
}

// toolFunc is the inner shape of every tool: it returns the rendered text
// and the status class ("success" or one of the error statuses).
type toolFunc[In any] func(ctx context.Context, in In) (text string, status string)

// wrap adapts a toolFunc into an SDK handler, adding metrics, logging, and
// panic containment. A panicking tool yields a serverError result, not a
// crashed session.
func wrap[In any](r *Registry, name string, fn toolFunc[In]) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (res *mcp.CallToolResult, _ any, _ error) {
		start := time.Now()
		status := "success"

		defer func() {
			if p := recover(); p != nil {
				observe.Logger(ctx).Error("tool panic",
					"tool", name, "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
				status = string(gateway.StatusServerError)
				res = errorResult(status, "internal error while executing the tool")
			}

			r.metrics.ToolDuration.Record(ctx, time.Since(start).Seconds(),
				metric.WithAttributes(attribute.String("tool", name)))
			r.metrics.ToolCalls.Add(ctx, 1, metric.WithAttributes(
				attribute.String("tool", name),
				attribute.String("status", status),
			))
			observe.Logger(ctx).Info("tool call",
				"tool", name, "status", status, "duration", time.Since(start))
		}()

		text, st := fn(ctx, in)
		status = st
		if status != "success" {
			return errorResult(status, text), nil, nil
		}
		return textResult(text), nil, nil
	}
}

// textResult builds a successful text result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult builds an error result. text is expected to already carry the
// "[status] message" shape produced by the render package; when it does not,
// the status tag is prepended.
func errorResult(status, text string) *mcp.CallToolResult {
	if len(text) == 0 || text[0] != '[' {
		text = fmt.Sprintf("[%s] %s", status, text)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
