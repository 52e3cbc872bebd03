package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GuildSettings holds per-guild bot configuration: where quests get posted,
// which role is pinged for new quests, and which message users react to in
// order to opt into the XP system. Empty string means unset.
type GuildSettings struct {
	bun.BaseModel `bun:"table:guild_settings,alias:gs"`

	GuildID         string `bun:"guild_id,pk"`
	QuestPingRoleID string `bun:"quest_ping_role_id"`
	QuestChannelID  string `bun:"quest_channel_id"`
	OptinMessageID  string `bun:"optin_message_id"`
	OptinChannelID  string `bun:"optin_channel_id"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
