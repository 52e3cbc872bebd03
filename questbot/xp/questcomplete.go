package xp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
)

const (
	// DefaultQuestReward is awarded when a quest is created without an
	// explicit reward.
	DefaultQuestReward = 50
	// MaxQuestReward bounds per-quest rewards at creation time.
	MaxQuestReward = 10000
)

// CompletionResult reports the outcome of one completion signal.
type CompletionResult struct {
	// Applied is false when the signal was a duplicate or referenced an
	// untracked message.
	Applied    bool
	Quest      *models.Quest
	Adjustment *Adjustment
}

// QuestCompletionProcessor awards quest XP exactly once per (quest, user)
// pair. The completion marker is persisted before anything else can replay,
// so at-least-once delivery of reaction events never double-awards, and
// retracting a reaction never claws XP back.
type QuestCompletionProcessor struct {
	quests QuestStore
	ledger *Ledger
}

func NewQuestCompletionProcessor(quests QuestStore, ledger *Ledger) *QuestCompletionProcessor {
	return &QuestCompletionProcessor{quests: quests, ledger: ledger}
}

// Process handles one completion signal for a tracked quest message.
func (p *QuestCompletionProcessor) Process(ctx context.Context, messageID, userID string) (*CompletionResult, error) {
	quest, found, err := p.quests.FindQuest(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up quest: %w", err)
	}
	if !found {
		// Reactions on arbitrary messages are routine, not an error.
		return &CompletionResult{Applied: false}, nil
	}

	done, err := p.quests.HasCompletion(ctx, messageID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check completion: %w", err)
	}
	if done {
		return &CompletionResult{Applied: false, Quest: quest}, nil
	}

	reward := quest.XPReward
	if reward <= 0 {
		reward = DefaultQuestReward
	}

	adj, err := p.ledger.Adjust(ctx, userID, ComponentQuest, reward)
	if err != nil {
		return nil, err
	}

	completion := &models.QuestCompletion{
		MessageID: messageID,
		UserID:    userID,
		AwardedXP: reward,
		CreatedAt: time.Now(),
	}
	if err := p.quests.RecordCompletion(ctx, completion); err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	slog.Info("Quest completed",
		slog.String("type", "sys"),
		slog.String("user_id", userID),
		slog.String("quest_message_id", messageID),
		slog.String("quest_title", quest.Title),
		slog.Int64("awarded_xp", reward))

	return &CompletionResult{Applied: true, Quest: quest, Adjustment: adj}, nil
}
