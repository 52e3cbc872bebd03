package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

type QuestRepository interface {
	CreateQuest(ctx context.Context, quest *models.Quest) error
	FindQuest(ctx context.Context, messageID string) (*models.Quest, bool, error)
	ListQuests(ctx context.Context, guildID string) ([]*models.Quest, error)
	DeleteQuest(ctx context.Context, messageID string) error
	DeleteAllQuests(ctx context.Context, guildID string) (int64, error)
	HasCompletion(ctx context.Context, messageID, userID string) (bool, error)
	RecordCompletion(ctx context.Context, completion *models.QuestCompletion) error
	CompletionCount(ctx context.Context, messageID string) (int, error)
}

type questRepository struct {
	*BaseRepository
}

func NewQuestRepository(db *bun.DB) QuestRepository {
	return &questRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *questRepository) CreateQuest(ctx context.Context, quest *models.Quest) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	quest.CreatedAt = time.Now()
	_, err := r.GetDB().NewInsert().Model(quest).Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID("create", "quest", quest.MessageID, err)
	}

	slog.Info("Quest tracked",
		slog.String("type", "db"),
		slog.String("message_id", quest.MessageID),
		slog.String("guild_id", quest.GuildID),
		slog.String("title", quest.Title),
		slog.Int64("xp_reward", quest.XPReward))
	return nil
}

func (r *questRepository) FindQuest(ctx context.Context, messageID string) (*models.Quest, bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	quest := new(models.Quest)
	err := r.GetDB().NewSelect().
		Model(quest).
		Where("message_id = ?", messageID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, r.HandleErrorWithID("find", "quest", messageID, err)
	}
	return quest, true, nil
}

func (r *questRepository) ListQuests(ctx context.Context, guildID string) ([]*models.Quest, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var quests []*models.Quest
	err := r.GetDB().NewSelect().
		Model(&quests).
		Where("guild_id = ?", guildID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("list", "quest", err)
	}
	return quests, nil
}

// DeleteQuest removes a tracked quest, returning a NotFoundError when no
// quest matches the message ID.
func (r *questRepository) DeleteQuest(ctx context.Context, messageID string) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.GetDB().NewDelete().
		Model((*models.Quest)(nil)).
		Where("message_id = ?", messageID).
		Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID("delete", "quest", messageID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return r.HandleErrorWithID("delete", "quest", messageID, err)
	}
	if affected == 0 {
		return &NotFoundError{Entity: "quest", ID: messageID}
	}
	return nil
}

func (r *questRepository) DeleteAllQuests(ctx context.Context, guildID string) (int64, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.GetDB().NewDelete().
		Model((*models.Quest)(nil)).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	if err != nil {
		return 0, r.HandleError("delete_all", "quest", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, r.HandleError("delete_all", "quest", err)
	}
	return affected, nil
}

func (r *questRepository) HasCompletion(ctx context.Context, messageID, userID string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	exists, err := r.GetDB().NewSelect().
		Model((*models.QuestCompletion)(nil)).
		Where("message_id = ?", messageID).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, r.HandleError("has_completion", "quest_completion", err)
	}
	return exists, nil
}

func (r *questRepository) RecordCompletion(ctx context.Context, completion *models.QuestCompletion) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if completion.CreatedAt.IsZero() {
		completion.CreatedAt = time.Now()
	}

	// The unique (message_id, user_id) index is the real duplicate guard;
	// a conflicting insert is treated as already-recorded, not an error.
	_, err := r.GetDB().NewInsert().
		Model(completion).
		On("CONFLICT (message_id, user_id) DO NOTHING").
		Exec(ctx)
	return r.HandleErrorWithID("record_completion", "quest_completion", completion.MessageID, err)
}

func (r *questRepository) CompletionCount(ctx context.Context, messageID string) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	count, err := r.GetDB().NewSelect().
		Model((*models.QuestCompletion)(nil)).
		Where("message_id = ?", messageID).
		Count(ctx)
	if err != nil {
		return 0, r.HandleErrorWithID("completion_count", "quest_completion", messageID, err)
	}
	return count, nil
}
