package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/datalens-ai/datalens/src/chart"
)

func TestEngagementOverview(t *testing.T) {
	ds := testDataset(t, "title,likes,views\nlow,1,100\nhigh,50,100\nmid,10,100\n")
	ds = enrichForTest(ds)

	res := (&EngagementOverviewTool{}).Invoke(context.Background(), Request{
		Args:    map[string]any{"limit": float64(2)},
		Dataset: ds,
	})
	payload, ok := res["chart"].(chart.Payload)
	if !ok {
		t.Fatalf("expected chart payload, got %v", res)
	}
	if payload.Kind != chart.KindEngagement {
		t.Fatalf("kind = %q", payload.Kind)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("limit not honored: %d items", len(payload.Items))
	}
	if payload.Items[0].Label != "high" || payload.Items[0].Engagement != 0.5 {
		t.Fatalf("items must sort by engagement descending: %+v", payload.Items)
	}
	if payload.Items[0].Views != 100 || payload.Items[0].Favorites != 50 {
		t.Fatalf("views/favorites not carried: %+v", payload.Items[0])
	}
}

func TestEngagementOverviewRequiresEnrichment(t *testing.T) {
	ds := testDataset(t, "title,score\na,1\n")
	res := (&EngagementOverviewTool{}).Invoke(context.Background(), Request{Dataset: ds})
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "engagement") {
		t.Fatalf("expected missing-engagement error, got %v", res)
	}
}
