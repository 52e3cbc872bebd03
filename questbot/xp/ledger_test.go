package xp

import (
	"context"
	"errors"
	"testing"
)

func TestLedgerCreatesRecordOnFirstAccess(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	ctx := context.Background()

	rec, err := ledger.Record(ctx, "user-1")
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if rec.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", rec.UserID, "user-1")
	}
	if got := rec.TotalXP(); got != 0 {
		t.Errorf("new record total = %d, want 0", got)
	}
	if rec.OptedIn {
		t.Error("new record should not be opted in")
	}
}

func TestLedgerAdjustComponents(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	ctx := context.Background()

	if _, err := ledger.Adjust(ctx, "user-1", ComponentQuest, 50); err != nil {
		t.Fatalf("Adjust(quest) error: %v", err)
	}
	if _, err := ledger.Adjust(ctx, "user-1", ComponentBadge, 30); err != nil {
		t.Fatalf("Adjust(badge) error: %v", err)
	}
	adj, err := ledger.Adjust(ctx, "user-1", ComponentStreak, 20)
	if err != nil {
		t.Fatalf("Adjust(streak) error: %v", err)
	}

	if adj.Before != 80 || adj.After != 100 {
		t.Errorf("adjustment before/after = %d/%d, want 80/100", adj.Before, adj.After)
	}
	rec := adj.Record
	if rec.QuestXP != 50 || rec.BadgeXP != 30 || rec.StreakXP != 20 {
		t.Errorf("components = %d/%d/%d, want 50/30/20", rec.QuestXP, rec.BadgeXP, rec.StreakXP)
	}
}

func TestLedgerAdjustClampsAtZero(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	ctx := context.Background()

	if _, err := ledger.Adjust(ctx, "user-1", ComponentQuest, 40); err != nil {
		t.Fatal(err)
	}
	adj, err := ledger.Adjust(ctx, "user-1", ComponentQuest, -100)
	if err != nil {
		t.Fatalf("Adjust() error: %v", err)
	}
	if adj.Record.QuestXP != 0 {
		t.Errorf("quest xp = %d, want 0 after clamp", adj.Record.QuestXP)
	}
	if adj.After != 0 {
		t.Errorf("after = %d, want 0", adj.After)
	}

	// Clamping is per component; the others are untouched.
	if _, err := ledger.Adjust(ctx, "user-1", ComponentBadge, 25); err != nil {
		t.Fatal(err)
	}
	adj, err = ledger.Adjust(ctx, "user-1", ComponentStreak, -5)
	if err != nil {
		t.Fatal(err)
	}
	if adj.Record.BadgeXP != 25 || adj.Record.StreakXP != 0 {
		t.Errorf("badge/streak = %d/%d, want 25/0", adj.Record.BadgeXP, adj.Record.StreakXP)
	}
}

func TestLedgerSetQuestXPLeavesOtherComponents(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	ctx := context.Background()

	if _, err := ledger.Adjust(ctx, "user-1", ComponentBadge, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Adjust(ctx, "user-1", ComponentStreak, 10); err != nil {
		t.Fatal(err)
	}

	adj, err := ledger.SetQuestXP(ctx, "user-1", 1000)
	if err != nil {
		t.Fatalf("SetQuestXP() error: %v", err)
	}
	if adj.Record.QuestXP != 1000 {
		t.Errorf("quest xp = %d, want 1000", adj.Record.QuestXP)
	}
	if got := adj.After; got != 1015 {
		t.Errorf("total = %d, want 1015", got)
	}
}

func TestLedgerSetQuestXPRejectsNegative(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())

	_, err := ledger.SetQuestXP(context.Background(), "user-1", -1)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("SetQuestXP(-1) error = %v, want ErrInvalidAmount", err)
	}
}

func TestLedgerOptIn(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	ctx := context.Background()

	in, err := ledger.OptedIn(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if in {
		t.Error("unknown user should not be opted in")
	}

	if _, err := ledger.OptIn(ctx, "user-1"); err != nil {
		t.Fatalf("OptIn() error: %v", err)
	}
	// Opting in twice is harmless.
	if _, err := ledger.OptIn(ctx, "user-1"); err != nil {
		t.Fatalf("second OptIn() error: %v", err)
	}

	in, err = ledger.OptedIn(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !in {
		t.Error("user should be opted in")
	}
}

func TestAdjustmentLevelChange(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	ctx := context.Background()

	adj, err := ledger.Adjust(ctx, "user-1", ComponentQuest, 99)
	if err != nil {
		t.Fatal(err)
	}
	if adj.LevelChanged() {
		t.Errorf("0 -> 99 should stay level 1, got %d -> %d", adj.OldLevel(), adj.NewLevel())
	}

	adj, err = ledger.Adjust(ctx, "user-1", ComponentQuest, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !adj.LevelChanged() || adj.NewLevel() != 2 {
		t.Errorf("99 -> 100 should reach level 2, got %d -> %d", adj.OldLevel(), adj.NewLevel())
	}
}

func TestLedgerRecordReturnsDetachedCopy(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	ctx := context.Background()

	if _, err := ledger.Adjust(ctx, "user-1", ComponentQuest, 50); err != nil {
		t.Fatal(err)
	}

	rec, err := ledger.Record(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}

	// Scribbling on the returned record must not leak into the ledger;
	// command handlers read these snapshots concurrently with event-driven
	// writes.
	rec.QuestXP = 9999

	fresh, err := ledger.Record(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.QuestXP != 50 {
		t.Errorf("quest xp = %d, want 50 after mutating a snapshot", fresh.QuestXP)
	}

	adj, err := ledger.Adjust(ctx, "user-1", ComponentQuest, 10)
	if err != nil {
		t.Fatal(err)
	}
	adj.Record.QuestXP = 0
	fresh, err = ledger.Record(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.QuestXP != 60 {
		t.Errorf("quest xp = %d, want 60 after mutating an adjustment record", fresh.QuestXP)
	}
}

func TestAdminRejectsNonOptedTarget(t *testing.T) {
	ledger := NewLedger(newMemLedgerStore())
	registry := NewRegistry(newMemRoleStore())
	admin := NewAdmin(ledger, registry, allowAll)
	ctx := context.Background()

	if _, err := admin.AddXP(ctx, "actor", "user-1", 10); !errors.Is(err, ErrNotOptedIn) {
		t.Errorf("AddXP on non-opted user error = %v, want ErrNotOptedIn", err)
	}
	if _, err := admin.RemoveXP(ctx, "actor", "user-1", 10); !errors.Is(err, ErrNotOptedIn) {
		t.Errorf("RemoveXP on non-opted user error = %v, want ErrNotOptedIn", err)
	}
	if _, err := admin.SetXP(ctx, "actor", "user-1", 10); !errors.Is(err, ErrNotOptedIn) {
		t.Errorf("SetXP on non-opted user error = %v, want ErrNotOptedIn", err)
	}

	rec, err := ledger.Record(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TotalXP() != 0 {
		t.Errorf("total = %d, want 0 after rejected adjustments", rec.TotalXP())
	}

	mustOptIn(t, ledger, "user-1")
	adj, err := admin.AddXP(ctx, "actor", "user-1", 10)
	if err != nil {
		t.Fatalf("AddXP after opt-in error: %v", err)
	}
	if adj.Record.QuestXP != 10 {
		t.Errorf("quest xp = %d, want 10", adj.Record.QuestXP)
	}
}

func TestAdminAuthorization(t *testing.T) {
	store := newMemLedgerStore()
	ledger := NewLedger(store)
	registry := NewRegistry(newMemRoleStore())
	ctx := context.Background()

	admin := NewAdmin(ledger, registry, denyAll)
	if _, err := admin.AddXP(ctx, "actor", "user-1", 10); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("AddXP as non-staff error = %v, want ErrUnauthorized", err)
	}
	if _, err := admin.SetXP(ctx, "actor", "user-1", 10); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("SetXP as non-staff error = %v, want ErrUnauthorized", err)
	}
	if err := admin.AssignRoleXP(ctx, "actor", "role-1", 10, "badge"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("AssignRoleXP as non-staff error = %v, want ErrUnauthorized", err)
	}

	admin = NewAdmin(ledger, registry, allowAll)
	mustOptIn(t, ledger, "user-1")
	adj, err := admin.AddXP(ctx, "actor", "user-1", 10)
	if err != nil {
		t.Fatalf("AddXP() error: %v", err)
	}
	if adj.Record.QuestXP != 10 {
		t.Errorf("quest xp = %d, want 10", adj.Record.QuestXP)
	}

	if _, err := admin.AddXP(ctx, "actor", "user-1", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("AddXP(-5) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := admin.RemoveXP(ctx, "actor", "user-1", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("RemoveXP(-5) error = %v, want ErrInvalidAmount", err)
	}

	adj, err = admin.RemoveXP(ctx, "actor", "user-1", 100)
	if err != nil {
		t.Fatalf("RemoveXP() error: %v", err)
	}
	if adj.Record.QuestXP != 0 {
		t.Errorf("quest xp = %d, want 0 after over-removal", adj.Record.QuestXP)
	}
}
