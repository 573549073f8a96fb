package tools

import (
	"context"
	"testing"
)

func TestCountValues(t *testing.T) {
	ds := testDataset(t, "lang\nen\nfr\nen\nde\nfr\nen\n")
	res := (&ValueCountsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "lang"},
		Dataset: ds,
	})
	if res["unique"] != 3 {
		t.Fatalf("unique = %v, want 3", res["unique"])
	}
	counts := res["counts"].([]map[string]any)
	if counts[0]["value"] != "en" || counts[0]["count"] != 3 {
		t.Fatalf("top value wrong: %v", counts[0])
	}
}

func TestCountValuesTopN(t *testing.T) {
	ds := testDataset(t, "v\na\nb\nc\nd\n")
	res := (&ValueCountsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "v", "top_n": float64(2)},
		Dataset: ds,
	})
	counts := res["counts"].([]map[string]any)
	if len(counts) != 2 {
		t.Fatalf("top_n not honored: %d entries", len(counts))
	}
}

func TestCountValuesTieBreaksFirstSeen(t *testing.T) {
	ds := testDataset(t, "v\nbeta\nalpha\nalpha\nbeta\n")
	res := (&ValueCountsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "v"},
		Dataset: ds,
	})
	counts := res["counts"].([]map[string]any)
	if counts[0]["value"] != "beta" {
		t.Fatalf("tie must break by first-seen order: %v", counts)
	}
}
