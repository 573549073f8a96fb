package tools

import (
	"context"

	"github.com/datalens-ai/datalens/src/dataset"
)

// ValueCountsTool builds a frequency table of the distinct non-empty values of
// a column, ranked descending by count with ties broken by first-encountered
// order.
type ValueCountsTool struct{}

func (t *ValueCountsTool) Spec() Spec {
	return Spec{
		Name:        "count_values",
		Description: "Counts the distinct values of a column and returns the most frequent ones. Use the exact column name from the dataset summary.",
		InputSchema: objectSchema(map[string]any{
			"column": stringProp("Name of the column to count values of."),
			"top_n":  integerProp("How many distinct values to return (default 10)."),
		}, "column"),
	}
}

func (t *ValueCountsTool) Invoke(_ context.Context, req Request) map[string]any {
	headers := headersOf(req.Dataset)
	header, msg, ok := resolveColumnArg(req, "column")
	if !ok {
		return errorResult(msg, headers)
	}

	topN := intArg(req.Args, "top_n", 10)
	if topN <= 0 {
		topN = 10
	}

	unique, top := dataset.TopValues(req.Dataset.Rows, header, topN)
	counts := make([]map[string]any, 0, len(top))
	for _, vc := range top {
		counts = append(counts, map[string]any{"value": vc.Value, "count": vc.Count})
	}
	return map[string]any{
		"column": header,
		"unique": unique,
		"counts": counts,
	}
}
