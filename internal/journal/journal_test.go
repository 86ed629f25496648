package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "bridge.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry(id string, kind string, outcome string) Entry {
	return Entry{
		ID:          id,
		RequestedAt: time.Now().UTC(),
		Decision:    kind,
		StopLoss:    1.0812,
		TakeProfit:  1.0954,
		LotSize:     0.5,
		TrailActive: true,
		Reason:      "Momentum breakout.",
		Dialect:     "structured",
		Outcome:     outcome,
		Model:       "gpt-4o-mini",
		DurationMS:  420,
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := sampleEntry("req-1", "BUY", "ok")
	first.RequestedAt = time.Now().UTC().Add(-time.Minute)
	if err := store.Record(ctx, first); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, sampleEntry("req-2", "HOLD", "fallback")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "req-2" {
		t.Errorf("newest first: got %s", entries[0].ID)
	}

	got := entries[1]
	if got.Decision != "BUY" || got.StopLoss != 1.0812 || got.TakeProfit != 1.0954 || got.LotSize != 0.5 {
		t.Errorf("entry round trip lost fields: %+v", got)
	}
	if !got.TrailActive {
		t.Error("trail_active lost")
	}
	if got.Reason != "Momentum breakout." || got.Dialect != "structured" || got.Model != "gpt-4o-mini" {
		t.Errorf("entry round trip lost fields: %+v", got)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := sampleEntry(string(rune('a'+i)), "HOLD", "ok")
		e.RequestedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, e := range []Entry{
		sampleEntry("s-1", "BUY", "ok"),
		sampleEntry("s-2", "BUY", "ok"),
		sampleEntry("s-3", "HOLD", "fallback"),
	} {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d", stats.Total)
	}
	if stats.ByDecision["BUY"] != 2 || stats.ByDecision["HOLD"] != 1 {
		t.Errorf("ByDecision = %v", stats.ByDecision)
	}
	if stats.Fallbacks != 1 {
		t.Errorf("Fallbacks = %d", stats.Fallbacks)
	}
	if stats.AvgDurationMS != 420 {
		t.Errorf("AvgDurationMS = %v", stats.AvgDurationMS)
	}
}

func TestDuplicateIDFails(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, sampleEntry("dup", "BUY", "ok")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, sampleEntry("dup", "SELL", "ok")); err == nil {
		t.Error("duplicate id should fail")
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bridge.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Close()
}
