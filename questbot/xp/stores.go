package xp

import (
	"context"

	"github.com/questcord/questbot/questbot/database/models"
)

// LedgerStore is the persistence surface the ledger needs. Find reports
// absence via its bool rather than an error so lazy creation stays on the
// happy path. All must return records in creation order; the leaderboard
// relies on that for deterministic tie-breaking.
type LedgerStore interface {
	Find(ctx context.Context, userID string) (*models.UserXP, bool, error)
	Create(ctx context.Context, rec *models.UserXP) error
	Update(ctx context.Context, rec *models.UserXP) error
	All(ctx context.Context) ([]*models.UserXP, error)
}

// RoleXPStore persists role-to-XP assignments.
type RoleXPStore interface {
	Find(ctx context.Context, roleID string) (*models.RoleXP, bool, error)
	Upsert(ctx context.Context, entry *models.RoleXP) error
	Delete(ctx context.Context, roleID string) (bool, error)
}

// QuestStore is what the completion processor needs: the quest being
// completed and the at-most-once completion markers.
type QuestStore interface {
	FindQuest(ctx context.Context, messageID string) (*models.Quest, bool, error)
	HasCompletion(ctx context.Context, messageID, userID string) (bool, error)
	RecordCompletion(ctx context.Context, completion *models.QuestCompletion) error
}

// RoleHolder reports whether a user still holds some other role of kind
// badge that carries XP. The Discord member cache backs this in production;
// tests supply fakes.
type RoleHolder interface {
	HoldsOtherBadgeRole(ctx context.Context, guildID, userID, excludeRoleID string) (bool, error)
}

// StaffChecker is the externally-supplied authorization predicate for admin
// operations. The core trusts it and applies no policy of its own.
type StaffChecker interface {
	IsStaff(userID string) bool
}

// StaffFunc adapts a plain function to StaffChecker.
type StaffFunc func(userID string) bool

func (f StaffFunc) IsStaff(userID string) bool { return f(userID) }
