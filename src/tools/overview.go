package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/datalens-ai/datalens/src/chart"
	"github.com/datalens-ai/datalens/src/dataset"
)

// EngagementOverviewTool charts the rows with the highest derived engagement
// ratio. It requires the enriched engagement column, so it only works on
// datasets where enrichment found both a favorites-like and a views-like
// column.
type EngagementOverviewTool struct{}

func (t *EngagementOverviewTool) Spec() Spec {
	return Spec{
		Name:        "engagement_overview",
		Description: "Charts the rows with the best engagement ratio (favorites divided by views).",
		InputSchema: objectSchema(map[string]any{
			"limit": integerProp("How many rows to chart (default 10)."),
		}),
	}
}

func (t *EngagementOverviewTool) Invoke(_ context.Context, req Request) map[string]any {
	d := req.Dataset
	headers := headersOf(d)
	if d.Empty() {
		return errorResult("no dataset is loaded", headers)
	}
	if !d.HasHeader(dataset.EngagementColumn) {
		return errorResult(fmt.Sprintf("dataset has no %q column; it could not be derived from this schema", dataset.EngagementColumn), headers)
	}

	limit := intArg(req.Args, "limit", 10)
	if limit <= 0 {
		limit = 10
	}

	type scored struct {
		row   dataset.Row
		value float64
	}
	ranked := make([]scored, 0, len(d.Rows))
	for _, row := range d.Rows {
		v, ok := dataset.ParseNumber(row[dataset.EngagementColumn])
		if !ok {
			continue
		}
		ranked = append(ranked, scored{row: row, value: v})
	}
	if len(ranked) == 0 {
		return errorResult("no rows have a computed engagement value", headers)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].value > ranked[j].value })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	labelCol := pickTextColumn(headers)
	viewsCol := firstResolved(headers, "views", "view count")
	favCol := firstResolved(headers, "favorites", "favorite count", "likes", "like count")

	items := make([]chart.EngagementItem, 0, len(ranked))
	for _, s := range ranked {
		item := chart.EngagementItem{Engagement: s.value}
		if labelCol != "" {
			item.Label = truncateText(dataset.CellString(s.row[labelCol]), rankTextLimit)
		}
		if viewsCol != "" {
			item.Views, _ = dataset.ParseNumber(s.row[viewsCol])
		}
		if favCol != "" {
			item.Favorites, _ = dataset.ParseNumber(s.row[favCol])
		}
		items = append(items, item)
	}

	return map[string]any{
		"chart": chart.Payload{Kind: chart.KindEngagement, Items: items},
	}
}
