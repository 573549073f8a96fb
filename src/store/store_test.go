package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreMessages(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "1", SessionID: "s1", Role: "user", Content: "hi", CreatedAt: base},
		{ID: "2", SessionID: "s2", Role: "user", Content: "other", CreatedAt: base.Add(time.Second)},
		{ID: "3", SessionID: "s1", Role: "assistant", Content: "hello", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		if err := ms.AppendMessage(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := ms.Messages(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages for s1, got %d", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("messages out of order: %v", got)
	}
}

func TestMemoryStoreMessagesLimit(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_ = ms.AppendMessage(ctx, Message{
			ID: string(rune('a' + i)), SessionID: "s", CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	got, _ := ms.Messages(ctx, "s", 2)
	if len(got) != 2 {
		t.Fatalf("limit not applied: %d", len(got))
	}
	// Limit keeps the most recent messages.
	if got[1].ID != "e" {
		t.Fatalf("expected the newest tail, got %v", got)
	}
}

func TestMemoryStoreProvenance(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	if prov, err := ms.Provenance(ctx, "s1"); err != nil || prov != nil {
		t.Fatalf("missing provenance should be nil,nil; got %v,%v", prov, err)
	}

	first := Provenance{SessionID: "s1", FileName: "a.csv", RowCount: 10}
	if err := ms.SaveProvenance(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := Provenance{SessionID: "s1", FileName: "b.json", RowCount: 3}
	if err := ms.SaveProvenance(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	prov, err := ms.Provenance(ctx, "s1")
	if err != nil {
		t.Fatalf("provenance: %v", err)
	}
	if prov.FileName != "b.json" || prov.RowCount != 3 {
		t.Fatalf("provenance should overwrite per session: %+v", prov)
	}
}
