package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/utils"
	"github.com/questcord/questbot/questbot/xp"
	"github.com/sahilm/fuzzy"
)

var AssignRoleXP = discord.SlashCommandCreate{
	Name:                     "assignrolexp",
	Description:              "🔧 Assign an XP value and kind to a role",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionRole{
			Name:        "role",
			Description: "The role to assign XP to",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "points",
			Description: "XP awarded for this role",
			Required:    true,
			MinValue:    &[]int{0}[0],
		},
		discord.ApplicationCommandOptionString{
			Name:        "kind",
			Description: "How the role awards XP",
			Required:    true,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Badge (one-shot membership flag)", Value: models.RoleKindBadge},
				{Name: "Streak (accumulates on every grant)", Value: models.RoleKindStreak},
			},
		},
	},
}

var AssignBadgeXP = discord.SlashCommandCreate{
	Name:                     "assignbadgexp",
	Description:              "🏅 Assign badge XP to a role",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionRole{
			Name:        "role",
			Description: "The role to assign badge XP to",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "points",
			Description: "XP awarded for holding a badge role",
			Required:    true,
			MinValue:    &[]int{0}[0],
		},
	},
}

var AssignStreakXP = discord.SlashCommandCreate{
	Name:                     "assignstreakxp",
	Description:              "🔥 Assign streak XP to a role",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionRole{
			Name:        "role",
			Description: "The role to assign streak XP to",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "points",
			Description: "XP awarded on every grant of the role",
			Required:    true,
			MinValue:    &[]int{0}[0],
		},
	},
}

var UnassignRoleXP = discord.SlashCommandCreate{
	Name:                     "unassignrolexp",
	Description:              "🗑️ Remove a role's XP assignment",
	DefaultMemberPermissions: adminPermissions,
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionRole{
			Name:        "role",
			Description: "The role to unassign",
			Required:    true,
		},
	},
}

var CheckRoleXP = discord.SlashCommandCreate{
	Name:        "checkrolexp",
	Description: "🔍 Look up the XP assigned to a role",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "role",
			Description: "Role name to search for (fuzzy match)",
			Required:    false,
		},
	},
}

func AssignRoleXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		role := data.Role("role")
		points := int64(data.Int("points"))
		kind := data.String("kind")
		return assignRole(b, e, role, points, kind)
	}
}

func AssignBadgeXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		return assignRole(b, e, data.Role("role"), int64(data.Int("points")), models.RoleKindBadge)
	}
}

func AssignStreakXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		return assignRole(b, e, data.Role("role"), int64(data.Int("points")), models.RoleKindStreak)
	}
}

func assignRole(b *questbot.Bot, e *handler.CommandEvent, role discord.Role, points int64, kind string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := b.Admin.AssignRoleXP(ctx, e.User().ID.String(), role.ID.String(), points, kind)
	if err != nil {
		switch {
		case errors.Is(err, xp.ErrUnauthorized):
			return utils.EH.CreateErrorEmbed(e, "You are not allowed to manage role XP.")
		case errors.Is(err, xp.ErrInvalidAmount):
			return utils.EH.CreateErrorEmbed(e, "Points must not be negative.")
		case errors.Is(err, xp.ErrInvalidRoleKind):
			return utils.EH.CreateErrorEmbed(e, "The kind must be either badge or streak.")
		default:
			return utils.EH.CreateErrorEmbed(e, "Failed to assign role XP. Please try again later.")
		}
	}

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("%s now awards **%d XP** as a **%s** role.", role.Mention(), points, kind))
}

func UnassignRoleXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		role := e.SlashCommandInteractionData().Role("role")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := b.Admin.UnassignRoleXP(ctx, e.User().ID.String(), role.ID.String()); err != nil {
			if errors.Is(err, xp.ErrUnauthorized) {
				return utils.EH.CreateErrorEmbed(e, "You are not allowed to manage role XP.")
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to unassign role XP. Please try again later.")
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("%s no longer awards XP.", role.Mention()))
	}
}

// roleNameSource adapts guild roles for fuzzy matching.
type roleNameSource []discord.Role

func (s roleNameSource) Len() int            { return len(s) }
func (s roleNameSource) String(i int) string { return s[i].Name }

func CheckRoleXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entries, err := b.RoleXPRepository.All(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load role XP assignments. Please try again later.")
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No roles have XP assigned yet.")
		}

		assigned := make(map[string]*models.RoleXP, len(entries))
		for _, entry := range entries {
			assigned[entry.RoleID] = entry
		}

		var guildRoles []discord.Role
		if guildID := e.GuildID(); guildID != nil {
			b.Client.Caches().RolesForEach(*guildID, func(role discord.Role) {
				if _, ok := assigned[role.ID.String()]; ok {
					guildRoles = append(guildRoles, role)
				}
			})
		}

		query, _ := e.SlashCommandInteractionData().OptString("role")
		if query != "" && len(guildRoles) > 0 {
			matches := fuzzy.FindFrom(query, roleNameSource(guildRoles))
			if len(matches) == 0 {
				return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("No assigned role matches `%s`.", query))
			}
			matched := make([]discord.Role, 0, len(matches))
			for _, m := range matches {
				matched = append(matched, guildRoles[m.Index])
			}
			guildRoles = matched
		}

		var description strings.Builder
		if len(guildRoles) > 0 {
			for _, role := range guildRoles {
				entry := assigned[role.ID.String()]
				description.WriteString(fmt.Sprintf("%s — **%d XP** (%s)\n", role.Mention(), entry.Points, entry.Kind))
			}
		} else {
			// Role cache miss; fall back to raw IDs.
			for _, entry := range entries {
				description.WriteString(fmt.Sprintf("<@&%s> — **%d XP** (%s)\n", entry.RoleID, entry.Points, entry.Kind))
			}
		}

		return utils.EH.CreateInfoEmbed(e, description.String())
	}
}
