package handlers

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/xp"
)

// CacheStaffChecker answers staff checks from the member cache. A member
// counts as staff when they can manage roles in the community guild.
type CacheStaffChecker struct {
	client  bot.Client
	guildID snowflake.ID
}

func NewCacheStaffChecker(client bot.Client, guildID snowflake.ID) *CacheStaffChecker {
	return &CacheStaffChecker{client: client, guildID: guildID}
}

func (c *CacheStaffChecker) IsStaff(userID string) bool {
	id, err := snowflake.Parse(userID)
	if err != nil {
		return false
	}
	member, ok := c.client.Caches().Member(c.guildID, id)
	if !ok {
		slog.Debug("Member not cached for staff check",
			slog.String("type", "sys"),
			slog.String("user_id", userID))
		return false
	}
	perms := c.client.Caches().MemberPermissions(member)
	return perms.Has(discord.PermissionAdministrator) || perms.Has(discord.PermissionManageRoles)
}

// CacheRoleHolder answers the remaining-badge-role check from the member
// cache plus the role registry.
type CacheRoleHolder struct {
	client   bot.Client
	registry *xp.Registry
}

func NewCacheRoleHolder(client bot.Client, registry *xp.Registry) *CacheRoleHolder {
	return &CacheRoleHolder{client: client, registry: registry}
}

// HoldsOtherBadgeRole reports whether the user still holds a badge-kind role
// other than excludeRoleID.
func (h *CacheRoleHolder) HoldsOtherBadgeRole(ctx context.Context, guildID, userID, excludeRoleID string) (bool, error) {
	gid, err := snowflake.Parse(guildID)
	if err != nil {
		return false, err
	}
	uid, err := snowflake.Parse(userID)
	if err != nil {
		return false, err
	}

	member, ok := h.client.Caches().Member(gid, uid)
	if !ok {
		// An uncached member has, as far as we can tell, no other badge
		// roles; the badge reset proceeds.
		return false, nil
	}

	for _, roleID := range member.RoleIDs {
		rid := roleID.String()
		if rid == excludeRoleID {
			continue
		}
		entry, assigned, err := h.registry.Lookup(ctx, rid)
		if err != nil {
			return false, err
		}
		if assigned && entry.Kind == models.RoleKindBadge {
			return true, nil
		}
	}
	return false, nil
}
