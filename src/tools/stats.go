package tools

import (
	"context"
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/datalens-ai/datalens/src/dataset"
)

// ColumnStatsTool computes descriptive statistics over the parseable numeric
// values of one column. Cells that fail to parse are excluded from the
// aggregates; a column with zero parseable values is an error.
type ColumnStatsTool struct{}

func (t *ColumnStatsTool) Spec() Spec {
	return Spec{
		Name:        "compute_column_stats",
		Description: "Computes mean, median, standard deviation, min, max and count for a numeric column. Use the exact column name from the dataset summary.",
		InputSchema: objectSchema(map[string]any{
			"column": stringProp("Name of the numeric column to analyze."),
		}, "column"),
	}
}

func (t *ColumnStatsTool) Invoke(_ context.Context, req Request) map[string]any {
	return columnStats(req, "column")
}

// FieldStatsTool is the JSON-dataset variant of column stats; the statistical
// contract is identical, only the argument name differs so the model can keep
// field terminology for JSON collections.
type FieldStatsTool struct{}

func (t *FieldStatsTool) Spec() Spec {
	return Spec{
		Name:        "compute_field_stats",
		Description: "Computes mean, median, standard deviation, min, max and count for a numeric field of a JSON dataset. Use the exact field name from the dataset summary.",
		InputSchema: objectSchema(map[string]any{
			"field": stringProp("Name of the numeric field to analyze."),
		}, "field"),
	}
}

func (t *FieldStatsTool) Invoke(_ context.Context, req Request) map[string]any {
	return columnStats(req, "field")
}

func columnStats(req Request, argKey string) map[string]any {
	headers := headersOf(req.Dataset)
	header, msg, ok := resolveColumnArg(req, argKey)
	if !ok {
		return errorResult(msg, headers)
	}

	values := dataset.NumericValues(req.Dataset.Rows, header)
	if len(values) == 0 {
		return errorResult(fmt.Sprintf("column %q has no numeric values", header), headers)
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	// Population variance: divide by N, not N-1.
	std, _ := stats.StandardDeviationPopulation(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	return map[string]any{
		"column": header,
		"count":  len(values),
		"mean":   mean,
		"median": median,
		"std":    std,
		"min":    min,
		"max":    max,
	}
}

func headersOf(d *dataset.Dataset) []string {
	if d == nil {
		return nil
	}
	return d.Headers
}
