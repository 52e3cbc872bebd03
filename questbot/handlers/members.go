package handlers

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/xp"
)

// MemberUpdateHandler watches member updates and feeds role grants and
// removals into the role-change processor.
func MemberUpdateHandler(b *questbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMemberUpdate) {
		gained, lost := diffRoles(e.OldMember.RoleIDs, e.Member.RoleIDs)
		if len(gained) == 0 && len(lost) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.Member.User.ID.String()
		guildID := e.GuildID.String()

		for _, roleID := range gained {
			processTransition(ctx, b, xp.RoleTransition{
				GuildID:   guildID,
				UserID:    userID,
				RoleID:    roleID.String(),
				Direction: xp.RoleGained,
			})
		}
		for _, roleID := range lost {
			processTransition(ctx, b, xp.RoleTransition{
				GuildID:   guildID,
				UserID:    userID,
				RoleID:    roleID.String(),
				Direction: xp.RoleLost,
			})
		}
	})
}

func processTransition(ctx context.Context, b *questbot.Bot, ev xp.RoleTransition) {
	result, err := b.RoleChanges.Process(ctx, ev)
	if err != nil {
		slog.Error("Failed to process role transition",
			slog.String("type", "error"),
			slog.String("user_id", ev.UserID),
			slog.String("role_id", ev.RoleID),
			slog.String("direction", ev.Direction.String()),
			slog.Any("error", err))
		return
	}
	if result.Applied && result.Adjustment != nil && result.Adjustment.LevelChanged() {
		syncLevelRoles(b, ev.GuildID, ev.UserID, result.Adjustment)
		announceLevelChange(b, ev.GuildID, ev.UserID, result.Adjustment)
	}
}

// diffRoles returns the role IDs present only in after (gained) and only in
// before (lost).
func diffRoles(before, after []snowflake.ID) (gained, lost []snowflake.ID) {
	old := make(map[snowflake.ID]bool, len(before))
	for _, id := range before {
		old[id] = true
	}
	current := make(map[snowflake.ID]bool, len(after))
	for _, id := range after {
		current[id] = true
		if !old[id] {
			gained = append(gained, id)
		}
	}
	for _, id := range before {
		if !current[id] {
			lost = append(lost, id)
		}
	}
	return gained, lost
}
