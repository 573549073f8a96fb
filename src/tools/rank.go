package tools

import (
	"context"
	"sort"
	"strings"

	"github.com/datalens-ai/datalens/src/dataset"
)

const rankTextLimit = 150

// metricColumns are echoed alongside each ranked row when present.
var metricColumns = []string{
	"views", "view count", "favorites", "favorite count",
	"likes", "like count", "comments", "comment count",
	dataset.EngagementColumn,
}

// textColumns are candidates for the truncated display text of a ranked row.
var textColumns = []string{"title", "name", "text", "description"}

// RankRowsTool sorts rows by a named column, including the derived engagement
// column, and returns the top or bottom N. The default order is descending
// ("best performers"). Non-numeric sort values compare as equal, so the sort
// is stable and leaves their relative order untouched.
type RankRowsTool struct{}

func (t *RankRowsTool) Spec() Spec {
	return Spec{
		Name:        "rank_rows",
		Description: "Returns the top or bottom rows ranked by a column such as views or engagement. Use the exact column name from the dataset summary.",
		InputSchema: objectSchema(map[string]any{
			"column":    stringProp("Name of the column to rank by."),
			"limit":     integerProp("How many rows to return (default 5)."),
			"ascending": booleanProp("Sort ascending (worst first) instead of descending."),
		}, "column"),
	}
}

func (t *RankRowsTool) Invoke(_ context.Context, req Request) map[string]any {
	headers := headersOf(req.Dataset)
	header, msg, ok := resolveColumnArg(req, "column")
	if !ok {
		return errorResult(msg, headers)
	}

	limit := intArg(req.Args, "limit", 5)
	if limit <= 0 {
		limit = 5
	}
	ascending, _ := req.Args["ascending"].(bool)

	rows := append([]dataset.Row(nil), req.Dataset.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := dataset.ParseNumber(rows[i][header])
		b, bok := dataset.ParseNumber(rows[j][header])
		if !aok || !bok {
			return false // non-numeric keys compare equal
		}
		if ascending {
			return a < b
		}
		return a > b
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	textCol := pickTextColumn(headers)
	ranked := make([]map[string]any, 0, len(rows))
	for i, row := range rows {
		entry := map[string]any{
			"rank":  i + 1,
			header: row[header],
		}
		if textCol != "" {
			entry[textCol] = truncateText(dataset.CellString(row[textCol]), rankTextLimit)
		}
		for _, metric := range metricColumns {
			resolved, err := dataset.ResolveColumn(headers, metric)
			if err != nil || resolved == header {
				continue
			}
			entry[resolved] = row[resolved]
		}
		ranked = append(ranked, entry)
	}

	return map[string]any{
		"column":    header,
		"ascending": ascending,
		"rows":      ranked,
	}
}

func pickTextColumn(headers []string) string {
	for _, candidate := range textColumns {
		if resolved, err := dataset.ResolveColumn(headers, candidate); err == nil {
			return resolved
		}
	}
	return ""
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
