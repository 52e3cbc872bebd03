package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Quest is a still-open quest posted as a Discord message. The message ID is
// the natural key: completions reference it and deleting the quest removes
// only this row, never XP already granted for it.
type Quest struct {
	bun.BaseModel `bun:"table:quests,alias:q"`

	MessageID string `bun:"message_id,pk"`
	GuildID   string `bun:"guild_id,notnull"`
	ChannelID string `bun:"channel_id,notnull"`
	Title     string `bun:"title,notnull"`
	Content   string `bun:"content"`
	XPReward  int64  `bun:"xp_reward,notnull,default:50"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
