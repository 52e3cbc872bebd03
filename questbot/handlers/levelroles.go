package handlers

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/leveling"
)

// LevelRoles keeps one "Level N" guild role per level and moves members
// between them as their derived level changes.
type LevelRoles struct {
	client bot.Client
}

func NewLevelRoles(client bot.Client) *LevelRoles {
	return &LevelRoles{client: client}
}

func levelRoleName(level int) string {
	return fmt.Sprintf("Level %d", level)
}

// EnsureRoles creates any level roles the guild is missing. Existing roles
// are matched by name and left alone.
func (lr *LevelRoles) EnsureRoles(guildID snowflake.ID) error {
	existing := lr.roleIDsByName(guildID)
	for level := leveling.MinLevel; level <= leveling.MaxLevel; level++ {
		name := levelRoleName(level)
		if _, ok := existing[name]; ok {
			continue
		}
		if _, err := lr.client.Rest().CreateRole(guildID, discord.RoleCreate{Name: name}); err != nil {
			return fmt.Errorf("failed to create role %q: %w", name, err)
		}
		slog.Info("Created level role",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
			slog.String("role", name))
	}
	return nil
}

// Sync swaps the member's level role: the old level's role is removed and
// the new level's role added. An oldLevel below MinLevel means there is
// nothing to remove, as on a fresh opt-in.
func (lr *LevelRoles) Sync(guildID, userID snowflake.ID, oldLevel, newLevel int) error {
	if oldLevel == newLevel {
		return nil
	}
	roles := lr.roleIDsByName(guildID)

	if oldLevel >= leveling.MinLevel {
		if roleID, ok := roles[levelRoleName(oldLevel)]; ok {
			if err := lr.client.Rest().RemoveMemberRole(guildID, userID, roleID); err != nil {
				return fmt.Errorf("failed to remove level role: %w", err)
			}
		}
	}
	if newLevel >= leveling.MinLevel {
		roleID, ok := roles[levelRoleName(newLevel)]
		if !ok {
			return fmt.Errorf("level role %q missing in guild %s", levelRoleName(newLevel), guildID)
		}
		if err := lr.client.Rest().AddMemberRole(guildID, userID, roleID); err != nil {
			return fmt.Errorf("failed to add level role: %w", err)
		}
	}
	return nil
}

func (lr *LevelRoles) roleIDsByName(guildID snowflake.ID) map[string]snowflake.ID {
	out := make(map[string]snowflake.ID)
	lr.client.Caches().RolesForEach(guildID, func(role discord.Role) {
		out[role.Name] = role.ID
	})
	return out
}
