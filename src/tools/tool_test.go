package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/datalens-ai/datalens/src/dataset"
)

func testDataset(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds := dataset.ParseCSV(csv)
	if ds.Empty() {
		t.Fatalf("test dataset is empty")
	}
	return ds
}

func enrichForTest(ds *dataset.Dataset) *dataset.Dataset {
	return dataset.Enrich(ds, dataset.DefaultEnrichPatterns())
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(&ColumnStatsTool{})
	if _, _, ok := r.Lookup("Compute_Column_Stats"); !ok {
		t.Fatalf("lookup should ignore case")
	}
	if _, _, ok := r.Lookup("  compute_column_stats  "); !ok {
		t.Fatalf("lookup should trim whitespace")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(&ColumnStatsTool{})
	if err := r.Register(&ColumnStatsTool{}); err == nil {
		t.Fatalf("duplicate registration should fail")
	}
}

func TestRegistrySpecsKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry(&RankRowsTool{}, &ColumnStatsTool{}, &ValueCountsTool{})
	specs := r.Specs()
	want := []string{"rank_rows", "compute_column_stats", "count_values"}
	if len(specs) != len(want) {
		t.Fatalf("expected %d specs, got %d", len(want), len(specs))
	}
	for i, name := range want {
		if specs[i].Name != name {
			t.Fatalf("spec %d = %q, want %q", i, specs[i].Name, name)
		}
	}
}

func TestRegistryExecuteUnknownOperation(t *testing.T) {
	r := NewRegistry(&ColumnStatsTool{}, &RankRowsTool{})
	res := r.Execute(context.Background(), "no_such_op", Request{})
	msg, _ := res["error"].(string)
	if msg == "" {
		t.Fatalf("expected error map, got %v", res)
	}
	if !strings.Contains(msg, "compute_column_stats") || !strings.Contains(msg, "rank_rows") {
		t.Fatalf("error should list registered operations: %q", msg)
	}
}

func TestErrorResultEnumeratesColumns(t *testing.T) {
	res := errorResult("column \"x\" not found", []string{"title", "views"})
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "Available columns: title, views") {
		t.Fatalf("missing column enumeration: %q", msg)
	}
}
