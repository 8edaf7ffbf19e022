package tools

import "github.com/google/jsonschema-go/jsonschema"

// Hand-written input schemas for the two tools whose filter values are
// deliberately loosely typed (scalar | list | string). Schema inference
// cannot express that variant from the Go types, so the contract is spelled
// out here; the remaining tools use inferred schemas.

// filterSchema describes one filter object.
func filterSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"field", "type", "value"},
		Properties: map[string]*jsonschema.Schema{
			"field": {
				Type:        "string",
				Description: "Column name to filter on.",
			},
			"type": {
				Type:        "string",
				Description: "Comparison operator.",
				Enum:        []any{"eq", "ne", "gt", "lt", "gte", "lte", "in", "regex"},
			},
			"value": {
				Description: "Value to compare against: a scalar for comparison operators, " +
					"a list for 'in', a string pattern for 'regex'.",
			},
		},
	}
}

func filtersSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: "Filters combined with AND. May be empty.",
		Items:       filterSchema(),
	}
}

var commonProps = func() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"dataset_name": {
			Type:        "string",
			Description: "Name of the dataset to operate on.",
		},
		"view_name": {
			Type:        "string",
			Description: "View name (defaults to 'default').",
		},
		"user_name": {
			Type:        "string",
			Description: "User name for access control (defaults to the configured user).",
		},
	}
}

// queryInputSchema is the argument contract for datagroom_query_dataset.
func queryInputSchema() *jsonschema.Schema {
	props := commonProps()
	props["filters"] = filtersSchema()
	props["sort_field"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Field to sort by.",
	}
	props["sort_direction"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Sort direction (defaults to 'asc').",
		Enum:        []any{"asc", "desc"},
	}
	props["max_rows"] = &jsonschema.Schema{
		Type:        "integer",
		Description: "Maximum rows to return (default 50, hard maximum 1000; out-of-range values are clamped).",
	}
	props["offset"] = &jsonschema.Schema{
		Type:        "integer",
		Description: "Number of rows to skip for pagination.",
	}
	return &jsonschema.Schema{
		Type:       "object",
		Required:   []string{"dataset_name"},
		Properties: props,
	}
}

// aggregateInputSchema is the argument contract for datagroom_aggregate_dataset.
func aggregateInputSchema() *jsonschema.Schema {
	props := commonProps()
	props["aggregations"] = &jsonschema.Schema{
		Type:        "array",
		Description: "Aggregations to compute.",
		Items: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"operation"},
			Properties: map[string]*jsonschema.Schema{
				"operation": {
					Type: "string",
					Enum: []any{"count", "sum", "avg", "min", "max"},
				},
				"field": {
					Type:        "string",
					Description: "Column to aggregate. Required for every operation except count.",
				},
			},
		},
	}
	props["group_by"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Field to group results by.",
	}
	props["filters"] = filtersSchema()
	return &jsonschema.Schema{
		Type:       "object",
		Required:   []string{"dataset_name", "aggregations"},
		Properties: props,
	}
}
