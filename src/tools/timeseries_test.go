package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/datalens-ai/datalens/src/chart"
)

func TestMetricOverTimeSortsAscending(t *testing.T) {
	ds := testDataset(t, "views,published_at\n3,2021-03-01\n1,2021-01-01\n2,2021-02-01\n")
	res := (&MetricOverTimeTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"metric_column": "views", "date_column": "published_at"},
		Dataset: ds,
	})
	payload, ok := res["chart"].(chart.Payload)
	if !ok {
		t.Fatalf("expected chart payload, got %v", res)
	}
	if payload.Kind != chart.KindMetricVsTime {
		t.Fatalf("kind = %q", payload.Kind)
	}
	if payload.Metric != "views" || payload.DateColumn != "published_at" {
		t.Fatalf("columns not echoed: %+v", payload)
	}
	if len(payload.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(payload.Points))
	}
	want := []float64{1, 2, 3}
	for i, p := range payload.Points {
		if p.Value != want[i] {
			t.Fatalf("point %d = %v, want %v (series must sort by time)", i, p.Value, want[i])
		}
	}
}

func TestMetricOverTimeDropsBadRows(t *testing.T) {
	ds := testDataset(t, "views,published_at\n1,2021-01-01\nn/a,2021-02-01\n3,not-a-date\n4,2021-04-01\n")
	res := (&MetricOverTimeTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"metric_column": "views", "date_column": "published_at"},
		Dataset: ds,
	})
	payload := res["chart"].(chart.Payload)
	if len(payload.Points) != 2 {
		t.Fatalf("rows with unparseable cells must be dropped, got %d points", len(payload.Points))
	}
}

func TestMetricOverTimeNoSamples(t *testing.T) {
	ds := testDataset(t, "views,published_at\nn/a,nope\n")
	res := (&MetricOverTimeTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"metric_column": "views", "date_column": "published_at"},
		Dataset: ds,
	})
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "parseable") {
		t.Fatalf("expected no-samples error, got %v", res)
	}
}
