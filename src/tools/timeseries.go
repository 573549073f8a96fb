package tools

import (
	"context"
	"sort"
	"time"

	"github.com/araddon/dateparse"

	"github.com/datalens-ai/datalens/src/chart"
	"github.com/datalens-ai/datalens/src/dataset"
)

// MetricOverTimeTool pairs a numeric column with a date column and emits a
// metric-vs-time chart payload. Rows where either cell fails to parse are
// dropped, not zero-filled; the series is sorted ascending by parsed
// timestamp.
type MetricOverTimeTool struct{}

func (t *MetricOverTimeTool) Spec() Spec {
	return Spec{
		Name:        "metric_over_time",
		Description: "Extracts a numeric metric over time for a line chart. Use exact column names from the dataset summary.",
		InputSchema: objectSchema(map[string]any{
			"metric_column": stringProp("Name of the numeric column to plot."),
			"date_column":   stringProp("Name of the date or timestamp column."),
		}, "metric_column", "date_column"),
	}
}

func (t *MetricOverTimeTool) Invoke(_ context.Context, req Request) map[string]any {
	headers := headersOf(req.Dataset)
	metricCol, msg, ok := resolveColumnArg(req, "metric_column")
	if !ok {
		return errorResult(msg, headers)
	}
	dateCol, msg, ok := resolveColumnArg(req, "date_column")
	if !ok {
		return errorResult(msg, headers)
	}

	type sample struct {
		at    time.Time
		value float64
	}
	samples := make([]sample, 0, len(req.Dataset.Rows))
	for _, row := range req.Dataset.Rows {
		value, ok := dataset.ParseNumber(row[metricCol])
		if !ok {
			continue
		}
		at, err := dateparse.ParseAny(dataset.CellString(row[dateCol]))
		if err != nil {
			continue
		}
		samples = append(samples, sample{at: at, value: value})
	}
	if len(samples) == 0 {
		return errorResult("no rows with both a parseable metric and a parseable date", headers)
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].at.Before(samples[j].at) })

	points := make([]chart.Point, len(samples))
	for i, s := range samples {
		points[i] = chart.Point{Timestamp: s.at.Format(time.RFC3339), Value: s.value}
	}
	return map[string]any{
		"chart": chart.Payload{
			Kind:       chart.KindMetricVsTime,
			Metric:     metricCol,
			DateColumn: dateCol,
			Points:     points,
		},
	}
}
