package xp

import (
	"context"
	"testing"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
)

func trackQuest(t *testing.T, store *memQuestStore, messageID string, reward int64) *models.Quest {
	t.Helper()
	q := &models.Quest{
		MessageID: messageID,
		GuildID:   "guild-1",
		ChannelID: "channel-1",
		Title:     "Slay the dragon",
		XPReward:  reward,
		CreatedAt: time.Now(),
	}
	store.mu.Lock()
	store.quests[messageID] = q
	store.mu.Unlock()
	return q
}

func TestQuestCompletionAwardsOnce(t *testing.T) {
	quests := newMemQuestStore()
	ledger := NewLedger(newMemLedgerStore())
	proc := NewQuestCompletionProcessor(quests, ledger)
	ctx := context.Background()

	trackQuest(t, quests, "msg-1", DefaultQuestReward)

	res, err := proc.Process(ctx, "msg-1", "user-1")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if !res.Applied {
		t.Fatal("first completion must apply")
	}
	if res.Adjustment.After != DefaultQuestReward {
		t.Errorf("total = %d, want %d", res.Adjustment.After, DefaultQuestReward)
	}

	// Replayed signal: absorbed, no second award.
	res, err = proc.Process(ctx, "msg-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied {
		t.Error("duplicate completion must not apply")
	}

	rec, err := ledger.Record(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.QuestXP != DefaultQuestReward {
		t.Errorf("quest xp = %d, want %d", rec.QuestXP, DefaultQuestReward)
	}
}

func TestQuestCompletionPerUserAndPerQuest(t *testing.T) {
	quests := newMemQuestStore()
	ledger := NewLedger(newMemLedgerStore())
	proc := NewQuestCompletionProcessor(quests, ledger)
	ctx := context.Background()

	trackQuest(t, quests, "msg-1", 50)
	trackQuest(t, quests, "msg-2", 50)

	for _, tc := range []struct{ message, user string }{
		{"msg-1", "user-1"},
		{"msg-2", "user-1"},
		{"msg-1", "user-2"},
	} {
		res, err := proc.Process(ctx, tc.message, tc.user)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Applied {
			t.Errorf("completion (%s, %s) should apply", tc.message, tc.user)
		}
	}

	rec, err := ledger.Record(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.QuestXP != 100 {
		t.Errorf("user-1 quest xp = %d, want 100 from two quests", rec.QuestXP)
	}
}

func TestQuestCompletionCustomReward(t *testing.T) {
	quests := newMemQuestStore()
	ledger := NewLedger(newMemLedgerStore())
	proc := NewQuestCompletionProcessor(quests, ledger)
	ctx := context.Background()

	trackQuest(t, quests, "msg-1", 250)

	res, err := proc.Process(ctx, "msg-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Adjustment.After != 250 {
		t.Errorf("total = %d, want 250", res.Adjustment.After)
	}
}

func TestQuestCompletionZeroRewardFallsBack(t *testing.T) {
	quests := newMemQuestStore()
	ledger := NewLedger(newMemLedgerStore())
	proc := NewQuestCompletionProcessor(quests, ledger)
	ctx := context.Background()

	trackQuest(t, quests, "msg-1", 0)

	res, err := proc.Process(ctx, "msg-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Adjustment.After != DefaultQuestReward {
		t.Errorf("total = %d, want default reward %d", res.Adjustment.After, DefaultQuestReward)
	}
}

func TestQuestCompletionUntrackedMessage(t *testing.T) {
	quests := newMemQuestStore()
	ledger := NewLedger(newMemLedgerStore())
	proc := NewQuestCompletionProcessor(quests, ledger)

	res, err := proc.Process(context.Background(), "random-msg", "user-1")
	if err != nil {
		t.Fatalf("Process() on untracked message error: %v", err)
	}
	if res.Applied || res.Quest != nil {
		t.Error("untracked message must be ignored")
	}
}
