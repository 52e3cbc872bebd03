package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/utils"
)

var QuestPing = discord.SlashCommandCreate{
	Name:                     "questping",
	Description:              "🔔 Set the role pinged when a new quest is posted",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionRole{
			Name:        "role",
			Description: "The role to ping for new quests",
			Required:    true,
		},
	},
}

var QuestChannel = discord.SlashCommandCreate{
	Name:                     "questchannel",
	Description:              "📣 Set the channel where quests are posted",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionChannel{
			Name:        "channel",
			Description: "The channel for quest posts",
			Required:    true,
		},
	},
}

var QuestOptin = discord.SlashCommandCreate{
	Name:                     "questoptin",
	Description:              "✅ Post the opt-in message members react to",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionChannel{
			Name:        "channel",
			Description: "The channel to post the opt-in message in",
			Required:    true,
		},
	},
}

var Whitelist = discord.SlashCommandCreate{
	Name:                     "whitelist",
	Description:              "📃 Manage the channels where the bot announces completions",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Allow announcements in a channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "The channel to whitelist",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Remove a channel from the whitelist",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "The channel to remove",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "clear",
			Description: "Remove every channel from the whitelist",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show all whitelisted channels",
		},
	},
}

func QuestPingHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		role := e.SlashCommandInteractionData().Role("role")
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		settings, err := b.SettingsRepository.GetGuildSettings(ctx, guildID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load server settings.")
		}
		settings.QuestPingRoleID = role.ID.String()
		if err := b.SettingsRepository.UpsertGuildSettings(ctx, settings); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to save server settings.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("New quests will ping %s.", role.Mention()))
	}
}

func QuestChannelHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		channel := e.SlashCommandInteractionData().Channel("channel")
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		settings, err := b.SettingsRepository.GetGuildSettings(ctx, guildID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load server settings.")
		}
		settings.QuestChannelID = channel.ID.String()
		if err := b.SettingsRepository.UpsertGuildSettings(ctx, settings); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to save server settings.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Quests will be posted in <#%s>.", channel.ID))
	}
}

func QuestOptinHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		channel := e.SlashCommandInteractionData().Channel("channel")
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		msg, err := b.Client.Rest().CreateMessage(channel.ID, discord.NewMessageCreateBuilder().
			SetContentf("React with %s to join the XP system and appear on the leaderboard!", config.CompletionEmoji).
			Build())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to post the opt-in message.")
		}

		// Members can still add the reaction themselves if seeding fails.
		_ = b.Client.Rest().AddReaction(channel.ID, msg.ID, config.CompletionEmoji)

		settings, err := b.SettingsRepository.GetGuildSettings(ctx, guildID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load server settings.")
		}
		settings.OptinMessageID = msg.ID.String()
		settings.OptinChannelID = channel.ID.String()
		if err := b.SettingsRepository.UpsertGuildSettings(ctx, settings); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to save server settings.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Opt-in message posted in <#%s>.", channel.ID))
	}
}

func WhitelistHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		switch *data.SubCommandName {
		case "add":
			channel := data.Channel("channel")
			err := b.SettingsRepository.AddWhitelistedChannel(ctx, &models.WhitelistedChannel{
				GuildID:     guildID.String(),
				ChannelID:   channel.ID.String(),
				ChannelName: channel.Name,
			})
			if err != nil {
				return utils.EH.CreateErrorEmbed(e, "Failed to whitelist the channel.")
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("The bot will now announce in <#%s>.", channel.ID))

		case "remove":
			channel := data.Channel("channel")
			removed, err := b.SettingsRepository.RemoveWhitelistedChannel(ctx, guildID.String(), channel.ID.String())
			if err != nil {
				return utils.EH.CreateErrorEmbed(e, "Failed to update the whitelist.")
			}
			if !removed {
				return utils.EH.CreateErrorEmbed(e, "That channel was not on the whitelist.")
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("<#%s> removed from the whitelist.", channel.ID))

		case "clear":
			cleared, err := b.SettingsRepository.ClearWhitelistedChannels(ctx, guildID.String())
			if err != nil {
				return utils.EH.CreateErrorEmbed(e, "Failed to clear the whitelist.")
			}
			if cleared == 0 {
				return utils.EH.CreateInfoEmbed(e, "The whitelist was already empty.")
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Removed %d channel(s). The bot will announce anywhere again.", cleared))

		case "list":
			channels, err := b.SettingsRepository.ListWhitelistedChannels(ctx, guildID.String())
			if err != nil {
				return utils.EH.CreateErrorEmbed(e, "Failed to load the whitelist.")
			}
			if len(channels) == 0 {
				return utils.EH.CreateInfoEmbed(e, "No channels are whitelisted — the bot announces anywhere.")
			}
			var description strings.Builder
			for _, ch := range channels {
				description.WriteString(fmt.Sprintf("<#%s>\n", ch.ChannelID))
			}
			return utils.EH.CreateInfoEmbed(e, description.String())

		default:
			return utils.EH.CreateErrorEmbed(e, "Invalid subcommand")
		}
	}
}
