package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/xp"
)

// ReactionHandler turns checkmark reactions into opt-ins and quest
// completions.
func ReactionHandler(b *questbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageReactionAdd) {
		if e.UserID == e.Client().ID() {
			return
		}
		if member, ok := e.Client().Caches().Member(e.GuildID, e.UserID); ok && member.User.Bot {
			return
		}
		if e.Emoji.Name == nil || *e.Emoji.Name != config.CompletionEmoji {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		guildID := e.GuildID.String()
		userID := e.UserID.String()
		messageID := e.MessageID.String()

		settings, err := b.SettingsRepository.GetGuildSettings(ctx, guildID)
		if err != nil {
			slog.Error("Failed to load guild settings",
				slog.String("type", "error"),
				slog.String("guild_id", guildID),
				slog.Any("error", err))
			return
		}

		// Reacting on the opt-in message joins the XP system.
		if settings.OptinMessageID != "" && settings.OptinMessageID == messageID {
			if _, err := b.Ledger.OptIn(ctx, userID); err != nil {
				slog.Error("Failed to opt user in",
					slog.String("type", "error"),
					slog.String("user_id", userID),
					slog.Any("error", err))
				return
			}
			slog.Info("User opted in",
				slog.String("type", "sys"),
				slog.String("user_id", userID))

			// New participants start with their current level's role.
			if b.LevelRoles != nil {
				level, err := b.Ledger.Level(ctx, userID)
				if err == nil {
					if err := b.LevelRoles.Sync(e.GuildID, e.UserID, 0, level); err != nil {
						slog.Warn("Failed to assign level role on opt-in",
							slog.String("type", "sys"),
							slog.String("user_id", userID),
							slog.Any("error", err))
					}
				}
			}
			return
		}

		optedIn, err := b.Ledger.OptedIn(ctx, userID)
		if err != nil {
			slog.Error("Failed to check opt-in",
				slog.String("type", "error"),
				slog.String("user_id", userID),
				slog.Any("error", err))
			return
		}
		if !optedIn {
			return
		}

		result, err := b.QuestCompletions.Process(ctx, messageID, userID)
		if err != nil {
			slog.Error("Failed to process quest completion",
				slog.String("type", "error"),
				slog.String("user_id", userID),
				slog.String("message_id", messageID),
				slog.Any("error", err))
			return
		}
		if !result.Applied {
			return
		}

		if result.Adjustment.LevelChanged() {
			syncLevelRoles(b, guildID, userID, result.Adjustment)
		}

		// The whitelist only silences announcements; the XP itself lands
		// wherever the quest reaction happens.
		if channelAllowed(ctx, b.SettingsRepository, guildID, e.ChannelID.String()) {
			announceCompletion(b, e.ChannelID, userID, result)
		}
	})
}

// channelAllowed reports whether the bot may post in the channel: any
// channel when no whitelist is configured, only listed ones otherwise.
func channelAllowed(ctx context.Context, repo repositories.SettingsRepository, guildID, channelID string) bool {
	whitelisted, err := repo.IsChannelWhitelisted(ctx, guildID, channelID)
	if err != nil {
		slog.Error("Failed to load channel whitelist",
			slog.String("type", "error"),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return false
	}
	if whitelisted {
		return true
	}
	channels, err := repo.ListWhitelistedChannels(ctx, guildID)
	if err != nil {
		slog.Error("Failed to load channel whitelist",
			slog.String("type", "error"),
			slog.String("guild_id", guildID),
			slog.Any("error", err))
		return false
	}
	return len(channels) == 0
}

// syncLevelRoles moves the member onto the new level's role, logging but
// not failing on Discord errors.
func syncLevelRoles(b *questbot.Bot, guildID, userID string, adj *xp.Adjustment) {
	if b.LevelRoles == nil {
		return
	}
	gid, err := snowflake.Parse(guildID)
	if err != nil {
		return
	}
	uid, err := snowflake.Parse(userID)
	if err != nil {
		return
	}
	if err := b.LevelRoles.Sync(gid, uid, adj.OldLevel(), adj.NewLevel()); err != nil {
		slog.Warn("Failed to sync level role",
			slog.String("type", "sys"),
			slog.String("user_id", userID),
			slog.Int("level", adj.NewLevel()),
			slog.Any("error", err))
	}
}

func announceCompletion(b *questbot.Bot, channelID snowflake.ID, userID string, result *xp.CompletionResult) {
	reward := result.Quest.XPReward
	if reward <= 0 {
		reward = xp.DefaultQuestReward
	}

	content := fmt.Sprintf("<@%s> completed **%s** and earned **%d XP**!", userID, result.Quest.Title, reward)
	if result.Adjustment.LevelChanged() {
		content += fmt.Sprintf(" They reached **Level %d**!", result.Adjustment.NewLevel())
	}

	if _, err := b.Client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetContent(content).
		Build()); err != nil {
		slog.Error("Failed to announce quest completion",
			slog.String("type", "error"),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}
}

// announceLevelChange posts level changes from role XP into the configured
// quest channel, when there is one.
func announceLevelChange(b *questbot.Bot, guildID, userID string, adj *xp.Adjustment) {
	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	settings, err := b.SettingsRepository.GetGuildSettings(ctx, guildID)
	if err != nil || settings.QuestChannelID == "" {
		return
	}
	channelID, err := snowflake.Parse(settings.QuestChannelID)
	if err != nil {
		return
	}

	var content string
	if adj.NewLevel() > adj.OldLevel() {
		content = fmt.Sprintf("<@%s> reached **Level %d**!", userID, adj.NewLevel())
	} else {
		content = fmt.Sprintf("<@%s> is now **Level %d**.", userID, adj.NewLevel())
	}

	if _, err := b.Client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetContent(content).
		Build()); err != nil {
		slog.Error("Failed to announce level change",
			slog.String("type", "error"),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}
}
