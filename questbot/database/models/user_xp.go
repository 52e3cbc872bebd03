package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserXP is the authoritative per-user XP record. The three components are
// tracked separately so role-driven XP can never bleed into quest XP; the
// total is always derived, never stored.
type UserXP struct {
	bun.BaseModel `bun:"table:user_xp,alias:ux"`

	ID       int64  `bun:"id,pk,autoincrement"`
	UserID   string `bun:"user_id,notnull,unique"`
	QuestXP  int64  `bun:"quest_xp,notnull,default:0"`
	BadgeXP  int64  `bun:"badge_xp,notnull,default:0"`
	StreakXP int64  `bun:"streak_xp,notnull,default:0"`
	OptedIn  bool   `bun:"opted_in,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// TotalXP is the sum of all three components.
func (u *UserXP) TotalXP() int64 {
	return u.QuestXP + u.BadgeXP + u.StreakXP
}
