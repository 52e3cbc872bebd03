package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/commands"
	"github.com/questcord/questbot/questbot/database"
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/handlers"
	"github.com/questcord/questbot/questbot/logger"
	"github.com/questcord/questbot/questbot/xp"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting QuestBot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := questbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	if err := db.Ping(ctx); err != nil {
		slog.Error("Database health check failed",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}

	defer db.Close()

	b := questbot.New(*cfg, version, commit)
	b.DB = db

	// Repositories
	b.UserXPRepository = repositories.NewUserXPRepository(db.BunDB())
	b.RoleXPRepository = repositories.NewRoleXPRepository(db.BunDB())
	b.QuestRepository = repositories.NewQuestRepository(db.BunDB())
	b.SettingsRepository = repositories.NewSettingsRepository(db.BunDB())

	// Core XP services
	b.Ledger = xp.NewLedger(b.UserXPRepository)
	b.Registry = xp.NewRegistry(b.RoleXPRepository)
	b.QuestCompletions = xp.NewQuestCompletionProcessor(b.QuestRepository, b.Ledger)
	b.Leaderboard = xp.NewLeaderboard(b.Ledger)

	h := handler.New()

	// Display commands
	h.Command("/checkxp", handlers.WrapWithLogging("checkxp", commands.CheckXPHandler(b)))
	h.Command("/checkmemberxp", handlers.WrapWithLogging("checkmemberxp", commands.CheckMemberXPHandler(b)))
	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", commands.LeaderboardHandler(b)))
	h.Command("/checkrolexp", handlers.WrapWithLogging("checkrolexp", commands.CheckRoleXPHandler(b)))

	// Admin XP commands
	h.Command("/addxp", handlers.WrapWithLogging("addxp", commands.AddXPHandler(b)))
	h.Command("/removexp", handlers.WrapWithLogging("removexp", commands.RemoveXPHandler(b)))
	h.Command("/setxp", handlers.WrapWithLogging("setxp", commands.SetXPHandler(b)))

	// Role XP commands
	h.Command("/assignrolexp", handlers.WrapWithLogging("assignrolexp", commands.AssignRoleXPHandler(b)))
	h.Command("/assignbadgexp", handlers.WrapWithLogging("assignbadgexp", commands.AssignBadgeXPHandler(b)))
	h.Command("/assignstreakxp", handlers.WrapWithLogging("assignstreakxp", commands.AssignStreakXPHandler(b)))
	h.Command("/unassignrolexp", handlers.WrapWithLogging("unassignrolexp", commands.UnassignRoleXPHandler(b)))

	// Quest lifecycle commands
	h.Command("/addquest", handlers.WrapWithLogging("addquest", commands.AddQuestHandler(b)))
	h.Command("/removequest", handlers.WrapWithLogging("removequest", commands.RemoveQuestHandler(b)))
	h.Command("/deleteallquests", handlers.WrapWithLogging("deleteallquests", commands.DeleteAllQuestsHandler(b)))
	h.Command("/allquests", handlers.WrapWithLogging("allquests", commands.AllQuestsHandler(b)))

	// Server settings commands
	h.Command("/questping", handlers.WrapWithLogging("questping", commands.QuestPingHandler(b)))
	h.Command("/questchannel", handlers.WrapWithLogging("questchannel", commands.QuestChannelHandler(b)))
	h.Command("/questoptin", handlers.WrapWithLogging("questoptin", commands.QuestOptinHandler(b)))
	h.Command("/whitelist", handlers.WrapWithLogging("whitelist", commands.WhitelistHandler(b)))

	if err = b.SetupBot(h,
		bot.NewListenerFunc(b.OnReady),
		handlers.ReactionHandler(b),
		handlers.MemberUpdateHandler(b),
	); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
		)
		os.Exit(-1)
	}

	// These need the gateway client, so they wire up after SetupBot.
	b.RoleChanges = xp.NewRoleChangeProcessor(b.Registry, b.Ledger, handlers.NewCacheRoleHolder(b.Client, b.Registry))
	b.Admin = xp.NewAdmin(b.Ledger, b.Registry, handlers.NewCacheStaffChecker(b.Client, cfg.Bot.GuildID))
	b.LevelRoles = handlers.NewLevelRoles(b.Client)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("error_details", fmt.Sprintf("%+v", err)),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
