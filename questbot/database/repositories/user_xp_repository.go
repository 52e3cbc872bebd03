package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/uptrace/bun"
)

type UserXPRepository interface {
	Find(ctx context.Context, userID string) (*models.UserXP, bool, error)
	Create(ctx context.Context, rec *models.UserXP) error
	Update(ctx context.Context, rec *models.UserXP) error
	All(ctx context.Context) ([]*models.UserXP, error)
}

type userXPRepository struct {
	*BaseRepository
}

func NewUserXPRepository(db *bun.DB) UserXPRepository {
	return &userXPRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *userXPRepository) Find(ctx context.Context, userID string) (*models.UserXP, bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	rec := new(models.UserXP)
	err := r.GetDB().NewSelect().
		Model(rec).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Error("Database error when loading xp record",
			slog.String("type", "db"),
			slog.String("operation", "Find"),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, false, r.HandleErrorWithID("find", "user_xp", userID, err)
	}
	return rec, true, nil
}

func (r *userXPRepository) Create(ctx context.Context, rec *models.UserXP) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	_, err := r.GetDB().NewInsert().Model(rec).Exec(ctx)
	return r.HandleErrorWithID("create", "user_xp", rec.UserID, err)
}

func (r *userXPRepository) Update(ctx context.Context, rec *models.UserXP) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	rec.UpdatedAt = time.Now()
	_, err := r.GetDB().NewUpdate().
		Model(rec).
		WherePK().
		Exec(ctx)
	return r.HandleErrorWithID("update", "user_xp", rec.UserID, err)
}

// All returns every record ordered by creation, which keeps leaderboard ties
// deterministic.
func (r *userXPRepository) All(ctx context.Context) ([]*models.UserXP, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var records []*models.UserXP
	err := r.GetDB().NewSelect().
		Model(&records).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("all", "user_xp", err)
	}
	return records, nil
}
