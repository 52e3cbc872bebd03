package questbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/database"
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/xp"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	UserXPRepository   repositories.UserXPRepository
	RoleXPRepository   repositories.RoleXPRepository
	QuestRepository    repositories.QuestRepository
	SettingsRepository repositories.SettingsRepository

	Ledger           *xp.Ledger
	Registry         *xp.Registry
	RoleChanges      *xp.RoleChangeProcessor
	QuestCompletions *xp.QuestCompletionProcessor
	Leaderboard      *xp.Leaderboard
	Admin            *xp.Admin
	LevelRoles       LevelRoleSyncer
}

// LevelRoleSyncer keeps the guild's "Level N" roles aligned with derived
// levels. The handlers package provides the disgo-backed implementation.
type LevelRoleSyncer interface {
	EnsureRoles(guildID snowflake.ID) error
	Sync(guildID, userID snowflake.ID, oldLevel, newLevel int) error
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMembers,
			gateway.IntentGuildMessages,
			gateway.IntentGuildMessageReactions,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(
			cache.FlagGuilds,
			cache.FlagMembers,
			cache.FlagRoles,
		)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("QuestBot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("quests and streaks"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}

	if b.LevelRoles != nil && b.Cfg.Bot.GuildID != 0 {
		if err := b.LevelRoles.EnsureRoles(b.Cfg.Bot.GuildID); err != nil {
			slog.Error("Failed to ensure level roles",
				slog.String("guild_id", b.Cfg.Bot.GuildID.String()),
				slog.Any("error", err))
		}
	}
}
