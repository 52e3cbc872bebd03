package models

import (
	"time"

	"github.com/uptrace/bun"
)

// WhitelistedChannel restricts where the bot responds and announces. An
// empty whitelist for a guild means all channels are allowed.
type WhitelistedChannel struct {
	bun.BaseModel `bun:"table:whitelisted_channels,alias:wc"`

	ID          int64  `bun:"id,pk,autoincrement"`
	GuildID     string `bun:"guild_id,notnull,unique:ux_whitelist_guild_channel"`
	ChannelID   string `bun:"channel_id,notnull,unique:ux_whitelist_guild_channel"`
	ChannelName string `bun:"channel_name"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
