package models

import (
	"time"

	"github.com/uptrace/bun"
)

// QuestCompletion marks that a user has been awarded XP for a quest. The
// (message_id, user_id) pair is unique so replayed reaction events can never
// award twice, and the row outlives the quest itself.
type QuestCompletion struct {
	bun.BaseModel `bun:"table:quest_completions,alias:qc"`

	ID        int64  `bun:"id,pk,autoincrement"`
	MessageID string `bun:"message_id,notnull,unique:ux_completion_message_user"`
	UserID    string `bun:"user_id,notnull,unique:ux_completion_message_user"`
	AwardedXP int64  `bun:"awarded_xp,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
