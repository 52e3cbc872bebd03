package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Role kind constants. Badge roles award their points at most once per user;
// streak roles accumulate on every grant.
const (
	RoleKindBadge  = "badge"
	RoleKindStreak = "streak"
)

// RoleXP maps a Discord role to the XP it awards and how that XP behaves.
// At most one row exists per role; unassigning deletes the row entirely.
type RoleXP struct {
	bun.BaseModel `bun:"table:role_xp,alias:rx"`

	ID     int64  `bun:"id,pk,autoincrement"`
	RoleID string `bun:"role_id,notnull,unique"`
	Points int64  `bun:"points,notnull"`
	Kind   string `bun:"kind,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
