package xp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
)

// Registry manages which roles carry XP and how much. Assignments are
// point-in-time configuration: changing or removing one never rewrites XP
// users already earned under the old value.
type Registry struct {
	store RoleXPStore
}

func NewRegistry(store RoleXPStore) *Registry {
	return &Registry{store: store}
}

// Assign upserts the XP entry for a role, overwriting any previous points
// and kind.
func (r *Registry) Assign(ctx context.Context, roleID string, points int64, kind string) error {
	if points < 0 {
		return ErrInvalidAmount
	}
	if kind != models.RoleKindBadge && kind != models.RoleKindStreak {
		return ErrInvalidRoleKind
	}

	entry := &models.RoleXP{
		RoleID:    roleID,
		Points:    points,
		Kind:      kind,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := r.store.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to assign role xp: %w", err)
	}

	slog.Info("Role XP assigned",
		slog.String("type", "sys"),
		slog.String("role_id", roleID),
		slog.Int64("points", points),
		slog.String("kind", kind))
	return nil
}

// Unassign removes the entry for a role. Removing an unassigned role is a
// no-op, not an error.
func (r *Registry) Unassign(ctx context.Context, roleID string) error {
	removed, err := r.store.Delete(ctx, roleID)
	if err != nil {
		return fmt.Errorf("failed to unassign role xp: %w", err)
	}
	if removed {
		slog.Info("Role XP unassigned",
			slog.String("type", "sys"),
			slog.String("role_id", roleID))
	}
	return nil
}

// Lookup resolves the XP entry for a role. Absence means the role carries
// no XP and is not an error.
func (r *Registry) Lookup(ctx context.Context, roleID string) (*models.RoleXP, bool, error) {
	return r.store.Find(ctx, roleID)
}
