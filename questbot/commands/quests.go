package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/utils"
	"github.com/questcord/questbot/questbot/xp"
)

var AddQuest = discord.SlashCommandCreate{
	Name:                     "addquest",
	Description:              "📜 Post a new quest and start tracking completions",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "title",
			Description: "Short quest title",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "content",
			Description: "What members have to do",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "xp_reward",
			Description: fmt.Sprintf("XP awarded on completion (default %d)", xp.DefaultQuestReward),
			Required:    false,
			MinValue:    &[]int{1}[0],
			MaxValue:    &[]int{xp.MaxQuestReward}[0],
		},
	},
}

var RemoveQuest = discord.SlashCommandCreate{
	Name:                     "removequest",
	Description:              "🗑️ Stop tracking a quest",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "message_id",
			Description: "Message ID of the quest to remove",
			Required:    true,
		},
	},
}

var DeleteAllQuests = discord.SlashCommandCreate{
	Name:                     "deleteallquests",
	Description:              "🧹 Remove every tracked quest in this server",
	DefaultMemberPermissions: adminPermissions,
}

var AllQuests = discord.SlashCommandCreate{
	Name:        "allquests",
	Description: "📋 List all tracked quests",
}

func AddQuestHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		title := strings.TrimSpace(data.String("title"))
		content := strings.TrimSpace(data.String("content"))

		reward := int64(xp.DefaultQuestReward)
		if opt, ok := data.OptInt("xp_reward"); ok {
			reward = int64(opt)
		}

		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "Quests can only be created inside a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		settings, err := b.SettingsRepository.GetGuildSettings(ctx, guildID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load server settings. Please try again later.")
		}

		// Quests are posted into the configured quest channel, falling back
		// to the channel the command ran in.
		channelID := e.ChannelID()
		if settings.QuestChannelID != "" {
			if parsed, err := snowflake.Parse(settings.QuestChannelID); err == nil {
				channelID = parsed
			}
		}

		body := fmt.Sprintf("**%s**\n\n%s\n\nReact with %s to complete this quest and earn **%d XP**!",
			title, content, config.CompletionEmoji, reward)
		if settings.QuestPingRoleID != "" {
			body = fmt.Sprintf("<@&%s>\n%s", settings.QuestPingRoleID, body)
		}

		msg, err := b.Client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
			SetContent(body).
			Build())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to post the quest message.")
		}

		quest := &models.Quest{
			MessageID: msg.ID.String(),
			GuildID:   guildID.String(),
			ChannelID: channelID.String(),
			Title:     title,
			Content:   content,
			XPReward:  reward,
		}
		if err := b.QuestRepository.CreateQuest(ctx, quest); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to track the quest.")
		}

		// Seed the reaction so completing is one click.
		if err := b.Client.Rest().AddReaction(channelID, msg.ID, config.CompletionEmoji); err != nil {
			slog.Warn("Failed to seed quest reaction",
				slog.String("type", "sys"),
				slog.String("message_id", msg.ID.String()),
				slog.Any("error", err))
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Quest **%s** posted in <#%s> for **%d XP**.", title, channelID, reward))
	}
}

func RemoveQuestHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		messageID := strings.TrimSpace(e.SlashCommandInteractionData().String("message_id"))
		if _, err := snowflake.Parse(messageID); err != nil {
			return utils.EH.CreateErrorEmbed(e, "That doesn't look like a valid message ID.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := b.QuestRepository.DeleteQuest(ctx, messageID); err != nil {
			if repositories.IsNotFound(err) {
				return utils.EH.CreateErrorEmbed(e, "No tracked quest found for that message ID.")
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to remove the quest. Please try again later.")
		}

		return utils.EH.CreateSuccessEmbed(e, "Quest removed. Completions stay on the ledger.")
	}
}

func DeleteAllQuestsHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		removed, err := b.QuestRepository.DeleteAllQuests(ctx, guildID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to delete quests. Please try again later.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Removed **%d** tracked quests.", removed))
	}
}

func AllQuestsHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		quests, err := b.QuestRepository.ListQuests(ctx, guildID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to list quests. Please try again later.")
		}
		if len(quests) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No quests are currently tracked.")
		}

		// Completion counts are fetched up front; pagination events fire
		// long after this context is gone.
		counts := make(map[string]int, len(quests))
		for _, quest := range quests {
			n, err := b.QuestRepository.CompletionCount(ctx, quest.MessageID)
			if err != nil {
				continue
			}
			counts[quest.MessageID] = n
		}

		const questsPerPage = 5
		totalPages := int(math.Ceil(float64(len(quests)) / float64(questsPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * questsPerPage
				endIdx := min(startIdx+questsPerPage, len(quests))

				var description strings.Builder
				for _, quest := range quests[startIdx:endIdx] {
					reward := quest.XPReward
					if reward <= 0 {
						reward = xp.DefaultQuestReward
					}
					description.WriteString(fmt.Sprintf("**%s** — %d XP · %d completed\n%s\n[Jump](https://discord.com/channels/%s/%s/%s)\n\n",
						quest.Title, reward, counts[quest.MessageID], quest.Content, quest.GuildID, quest.ChannelID, quest.MessageID))
				}

				embed.
					SetTitle("📋 Tracked Quests").
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Total Quests: %d", page+1, totalPages, len(quests)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
