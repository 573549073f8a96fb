package tools

import (
	"context"
	"strings"
	"testing"
)

func TestColumnStats(t *testing.T) {
	ds := testDataset(t, "v\n2\n4\n4\n4\n5\n5\n7\n9\n")
	res := (&ColumnStatsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "v"},
		Dataset: ds,
	})
	if msg, ok := res["error"]; ok {
		t.Fatalf("unexpected error: %v", msg)
	}
	if res["count"] != 8 {
		t.Fatalf("count = %v, want 8", res["count"])
	}
	if res["mean"] != 5.0 {
		t.Fatalf("mean = %v, want 5", res["mean"])
	}
	// Population standard deviation divides by N.
	if res["std"] != 2.0 {
		t.Fatalf("std = %v, want 2 (population)", res["std"])
	}
	mean := res["mean"].(float64)
	if res["min"].(float64) > mean || mean > res["max"].(float64) {
		t.Fatalf("ordering violated: min=%v mean=%v max=%v", res["min"], mean, res["max"])
	}
}

func TestColumnStatsSkipsUnparseable(t *testing.T) {
	ds := testDataset(t, "v\n10\nn/a\n20\n")
	res := (&ColumnStatsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "v"},
		Dataset: ds,
	})
	if res["count"] != 2 {
		t.Fatalf("unparseable cells must be excluded, count = %v", res["count"])
	}
}

func TestColumnStatsNoNumericValues(t *testing.T) {
	ds := testDataset(t, "v\nfoo\nbar\n")
	res := (&ColumnStatsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "v"},
		Dataset: ds,
	})
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "no numeric values") {
		t.Fatalf("expected no-numeric-values error, got %v", res)
	}
}

func TestColumnStatsUnknownColumn(t *testing.T) {
	ds := testDataset(t, "title,views\na,1\n")
	res := (&ColumnStatsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "nope"},
		Dataset: ds,
	})
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "Available columns: title, views") {
		t.Fatalf("error should enumerate headers: %q", msg)
	}
}

func TestFieldStatsUsesFieldArgument(t *testing.T) {
	ds := testDataset(t, "score\n1\n2\n3\n")
	res := (&FieldStatsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"field": "score"},
		Dataset: ds,
	})
	if res["mean"] != 2.0 {
		t.Fatalf("mean = %v, want 2", res["mean"])
	}
}
