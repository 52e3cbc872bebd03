package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/utils"
	"github.com/questcord/questbot/questbot/xp"
)

var adminPermissions = json.NewNullablePtr(discord.PermissionManageRoles)

var AddXP = discord.SlashCommandCreate{
	Name:                     "addxp",
	Description:              "➕ Add quest XP to a member",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: "The member to award XP to",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "Amount of XP to add",
			Required:    true,
			MinValue:    &[]int{1}[0],
		},
	},
}

var RemoveXP = discord.SlashCommandCreate{
	Name:                     "removexp",
	Description:              "➖ Remove quest XP from a member",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: "The member to remove XP from",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "Amount of XP to remove",
			Required:    true,
			MinValue:    &[]int{1}[0],
		},
	},
}

var SetXP = discord.SlashCommandCreate{
	Name:                     "setxp",
	Description:              "🎯 Set a member's quest XP to an exact value",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: "The member whose XP to set",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "The new quest XP value",
			Required:    true,
			MinValue:    &[]int{0}[0],
		},
	},
}

func AddXPHandler(b *questbot.Bot) handler.CommandHandler {
	return xpMutationHandler(b, "added", func(ctx context.Context, b *questbot.Bot, actorID, userID string, amount int64) (*xp.Adjustment, error) {
		return b.Admin.AddXP(ctx, actorID, userID, amount)
	})
}

func RemoveXPHandler(b *questbot.Bot) handler.CommandHandler {
	return xpMutationHandler(b, "removed", func(ctx context.Context, b *questbot.Bot, actorID, userID string, amount int64) (*xp.Adjustment, error) {
		return b.Admin.RemoveXP(ctx, actorID, userID, amount)
	})
}

func SetXPHandler(b *questbot.Bot) handler.CommandHandler {
	return xpMutationHandler(b, "set", func(ctx context.Context, b *questbot.Bot, actorID, userID string, amount int64) (*xp.Adjustment, error) {
		return b.Admin.SetXP(ctx, actorID, userID, amount)
	})
}

func xpMutationHandler(b *questbot.Bot, verb string, mutate func(context.Context, *questbot.Bot, string, string, int64) (*xp.Adjustment, error)) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		member := data.User("member")
		amount := int64(data.Int("amount"))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		adj, err := mutate(ctx, b, e.User().ID.String(), member.ID.String(), amount)
		if err != nil {
			switch {
			case errors.Is(err, xp.ErrUnauthorized):
				return utils.EH.CreateErrorEmbed(e, "You are not allowed to manage XP.")
			case errors.Is(err, xp.ErrInvalidAmount):
				return utils.EH.CreateErrorEmbed(e, "The amount must not be negative.")
			case errors.Is(err, xp.ErrNotOptedIn):
				return utils.EH.CreateErrorEmbed(e, "That member hasn't opted into the XP system yet.")
			case repositories.IsRepositoryError(err):
				return utils.EH.CreateErrorEmbed(e, "Database error. Please try again later.")
			default:
				return utils.EH.CreateErrorEmbed(e, "Failed to update XP. Please try again later.")
			}
		}

		if adj.LevelChanged() && e.GuildID() != nil && b.LevelRoles != nil {
			if err := b.LevelRoles.Sync(*e.GuildID(), member.ID, adj.OldLevel(), adj.NewLevel()); err != nil {
				slog.Warn("Failed to sync level role",
					slog.String("type", "sys"),
					slog.String("user_id", member.ID.String()),
					slog.Any("error", err))
			}
		}

		message := fmt.Sprintf("%s **%d XP** for %s — now **%d XP** total (Level %d)",
			verb, amount, member.Mention(), adj.After, adj.NewLevel())
		if adj.LevelChanged() {
			message += fmt.Sprintf("\nLevel changed: %d → %d", adj.OldLevel(), adj.NewLevel())
		}
		return utils.EH.CreateSuccessEmbed(e, message)
	}
}
