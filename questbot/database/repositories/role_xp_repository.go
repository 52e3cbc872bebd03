package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

type RoleXPRepository interface {
	Find(ctx context.Context, roleID string) (*models.RoleXP, bool, error)
	Upsert(ctx context.Context, entry *models.RoleXP) error
	Delete(ctx context.Context, roleID string) (bool, error)
	All(ctx context.Context) ([]*models.RoleXP, error)
}

type roleXPRepository struct {
	*BaseRepository
}

func NewRoleXPRepository(db *bun.DB) RoleXPRepository {
	return &roleXPRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *roleXPRepository) Find(ctx context.Context, roleID string) (*models.RoleXP, bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	entry := new(models.RoleXP)
	err := r.GetDB().NewSelect().
		Model(entry).
		Where("role_id = ?", roleID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, r.HandleErrorWithID("find", "role_xp", roleID, err)
	}
	return entry, true, nil
}

func (r *roleXPRepository) Upsert(ctx context.Context, entry *models.RoleXP) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	_, err := r.GetDB().NewInsert().
		Model(entry).
		On("CONFLICT (role_id) DO UPDATE").
		Set("points = EXCLUDED.points").
		Set("kind = EXCLUDED.kind").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return r.HandleErrorWithID("upsert", "role_xp", entry.RoleID, err)
}

func (r *roleXPRepository) Delete(ctx context.Context, roleID string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.GetDB().NewDelete().
		Model((*models.RoleXP)(nil)).
		Where("role_id = ?", roleID).
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("delete", "role_xp", roleID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, r.HandleErrorWithID("delete", "role_xp", roleID, err)
	}
	return affected > 0, nil
}

// All returns every role assignment; used by the role overview command.
func (r *roleXPRepository) All(ctx context.Context) ([]*models.RoleXP, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var entries []*models.RoleXP
	err := r.GetDB().NewSelect().
		Model(&entries).
		Order("role_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("all", "role_xp", err)
	}
	return entries, nil
}
