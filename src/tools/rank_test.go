package tools

import (
	"context"
	"testing"
)

func TestRankRowsDescendingByDefault(t *testing.T) {
	ds := testDataset(t, "title,views\na,5\nb,50\nc,1\n")
	res := (&RankRowsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "views"},
		Dataset: ds,
	})
	rows := res["rows"].([]map[string]any)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	got := []any{rows[0]["views"], rows[1]["views"], rows[2]["views"]}
	if got[0] != "50" || got[1] != "5" || got[2] != "1" {
		t.Fatalf("descending order wrong: %v", got)
	}
	if rows[0]["rank"] != 1 || rows[0]["title"] != "b" {
		t.Fatalf("rank/text wrong: %v", rows[0])
	}
}

func TestRankRowsAscending(t *testing.T) {
	ds := testDataset(t, "title,views\na,5\nb,50\nc,1\n")
	res := (&RankRowsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "views", "ascending": true},
		Dataset: ds,
	})
	rows := res["rows"].([]map[string]any)
	if rows[0]["views"] != "1" {
		t.Fatalf("ascending order wrong: %v", rows)
	}
}

func TestRankRowsLimit(t *testing.T) {
	ds := testDataset(t, "title,views\na,1\nb,2\nc,3\nd,4\ne,5\nf,6\n")
	res := (&RankRowsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "views"},
		Dataset: ds,
	})
	rows := res["rows"].([]map[string]any)
	if len(rows) != 5 {
		t.Fatalf("default limit should be 5, got %d", len(rows))
	}
}

func TestRankRowsByEngagement(t *testing.T) {
	ds := testDataset(t, "title,likes,views\na,1,100\nb,50,100\n")
	ds = enrichForTest(ds)
	res := (&RankRowsTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"column": "engagement"},
		Dataset: ds,
	})
	rows := res["rows"].([]map[string]any)
	if rows[0]["title"] != "b" {
		t.Fatalf("engagement ranking wrong: %v", rows)
	}
}

func TestTruncateText(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateText(string(long), rankTextLimit)
	if len(got) != rankTextLimit+3 {
		t.Fatalf("expected %d chars plus ellipsis, got %d", rankTextLimit, len(got))
	}
	if got[len(got)-3:] != "..." {
		t.Fatalf("missing ellipsis: %q", got[len(got)-10:])
	}
}
