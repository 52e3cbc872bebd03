package xp

import (
	"context"
	"testing"
)

func optInWithXP(t *testing.T, ledger *Ledger, userID string, quest, badge, streak int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := ledger.OptIn(ctx, userID); err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct {
		comp  Component
		delta int64
	}{
		{ComponentQuest, quest},
		{ComponentBadge, badge},
		{ComponentStreak, streak},
	} {
		if c.delta == 0 {
			continue
		}
		if _, err := ledger.Adjust(ctx, userID, c.comp, c.delta); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	lb := NewLeaderboard(ledger)

	optInWithXP(t, ledger, "user-low", 50, 0, 0)
	optInWithXP(t, ledger, "user-high", 200, 40, 15)
	optInWithXP(t, ledger, "user-mid", 100, 0, 15)

	entries, err := lb.Rank(context.Background())
	if err != nil {
		t.Fatalf("Rank() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	want := []struct {
		userID string
		total  int64
	}{
		{"user-high", 255},
		{"user-mid", 115},
		{"user-low", 50},
	}
	for i, w := range want {
		e := entries[i]
		if e.UserID != w.userID || e.TotalXP != w.total || e.Rank != i+1 {
			t.Errorf("entries[%d] = {%s %d rank=%d}, want {%s %d rank=%d}",
				i, e.UserID, e.TotalXP, e.Rank, w.userID, w.total, i+1)
		}
	}
}

func TestLeaderboardTiesKeepInsertionOrder(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	lb := NewLeaderboard(ledger)

	// Same totals; the earlier-created record must rank first.
	optInWithXP(t, ledger, "user-first", 100, 0, 0)
	optInWithXP(t, ledger, "user-second", 50, 30, 20)
	optInWithXP(t, ledger, "user-third", 0, 60, 40)

	entries, err := lb.Rank(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.UserID
	}
	want := []string{"user-first", "user-second", "user-third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order = %v, want %v", got, want)
		}
	}
}

func TestLeaderboardExcludesOptedOut(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	lb := NewLeaderboard(ledger)
	ctx := context.Background()

	optInWithXP(t, ledger, "user-in", 10, 0, 0)
	// XP without opt-in: tracked but never shown.
	if _, err := ledger.Adjust(ctx, "user-out", ComponentQuest, 500); err != nil {
		t.Fatal(err)
	}

	entries, err := lb.Rank(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].UserID != "user-in" {
		t.Fatalf("entries = %+v, want only user-in", entries)
	}
}

func TestLeaderboardEntryLevels(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	lb := NewLeaderboard(ledger)

	optInWithXP(t, ledger, "user-1", 11700, 0, 0)
	optInWithXP(t, ledger, "user-2", 0, 0, 0)

	entries, err := lb.Rank(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Level != 10 {
		t.Errorf("top level = %d, want 10", entries[0].Level)
	}
	if entries[1].Level != 1 {
		t.Errorf("zero-xp level = %d, want 1", entries[1].Level)
	}
}
