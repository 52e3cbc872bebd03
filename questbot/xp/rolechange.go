package xp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/questcord/questbot/questbot/database/models"
)

// Direction tells whether a role transition granted or revoked the role.
type Direction int

const (
	RoleGained Direction = iota
	RoleLost
)

func (d Direction) String() string {
	if d == RoleGained {
		return "gained"
	}
	return "lost"
}

// RoleTransition is one observed change to a user's role set.
type RoleTransition struct {
	GuildID   string
	UserID    string
	RoleID    string
	Direction Direction
}

// RoleChangeResult reports what, if anything, a transition did to the ledger.
type RoleChangeResult struct {
	Applied    bool
	Kind       string
	Points     int64
	Adjustment *Adjustment
}

// RoleChangeProcessor converts role transitions into ledger deltas. Badge
// and streak roles follow deliberately different rules:
//
//   - badge XP is a membership flag: awarded at most once no matter how many
//     badge roles the user holds, and reset only when the last badge role is
//     gone;
//   - streak XP is a counter: every grant accumulates, and losing the role
//     never deducts.
//
// The two paths are kept separate on purpose; folding them into one generic
// role-XP path is how the double-counting bugs happened.
type RoleChangeProcessor struct {
	registry *Registry
	ledger   *Ledger
	holder   RoleHolder
}

func NewRoleChangeProcessor(registry *Registry, ledger *Ledger, holder RoleHolder) *RoleChangeProcessor {
	return &RoleChangeProcessor{
		registry: registry,
		ledger:   ledger,
		holder:   holder,
	}
}

// Process applies one role transition. Transitions on roles without an XP
// assignment are silently ignored, as are transitions for users who never
// opted into the XP system; duplicate deliveries are absorbed by the
// per-kind rules rather than treated as errors.
func (p *RoleChangeProcessor) Process(ctx context.Context, ev RoleTransition) (*RoleChangeResult, error) {
	entry, assigned, err := p.registry.Lookup(ctx, ev.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up role xp: %w", err)
	}
	if !assigned {
		return &RoleChangeResult{Applied: false}, nil
	}

	optedIn, err := p.ledger.OptedIn(ctx, ev.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check opt-in: %w", err)
	}
	if !optedIn {
		return &RoleChangeResult{Applied: false, Kind: entry.Kind}, nil
	}

	var result *RoleChangeResult
	switch entry.Kind {
	case models.RoleKindBadge:
		result, err = p.processBadge(ctx, ev, entry)
	case models.RoleKindStreak:
		result, err = p.processStreak(ctx, ev, entry)
	default:
		return nil, fmt.Errorf("role %s has unknown kind %q", ev.RoleID, entry.Kind)
	}
	if err != nil {
		return nil, err
	}

	if result.Applied {
		slog.Info("Role transition applied",
			slog.String("type", "sys"),
			slog.String("user_id", ev.UserID),
			slog.String("role_id", ev.RoleID),
			slog.String("direction", ev.Direction.String()),
			slog.String("kind", entry.Kind),
			slog.Int64("points", entry.Points))
	}
	return result, nil
}

func (p *RoleChangeProcessor) processBadge(ctx context.Context, ev RoleTransition, entry *models.RoleXP) (*RoleChangeResult, error) {
	switch ev.Direction {
	case RoleGained:
		// One award total across all badge roles. AwardBadge checks and
		// writes under the user's lock, so overlapping deliveries of badge
		// grants settle on a single award.
		adj, awarded, err := p.ledger.AwardBadge(ctx, ev.UserID, entry.Points)
		if err != nil {
			return nil, err
		}
		if !awarded {
			return &RoleChangeResult{Applied: false, Kind: entry.Kind}, nil
		}
		return &RoleChangeResult{Applied: true, Kind: entry.Kind, Points: entry.Points, Adjustment: adj}, nil

	case RoleLost:
		rec, err := p.ledger.Record(ctx, ev.UserID)
		if err != nil {
			return nil, err
		}
		if rec.BadgeXP == 0 {
			return &RoleChangeResult{Applied: false, Kind: entry.Kind}, nil
		}
		holdsOther, err := p.holder.HoldsOtherBadgeRole(ctx, ev.GuildID, ev.UserID, ev.RoleID)
		if err != nil {
			return nil, fmt.Errorf("failed to check remaining badge roles: %w", err)
		}
		if holdsOther {
			return &RoleChangeResult{Applied: false, Kind: entry.Kind}, nil
		}
		adj, removed, err := p.ledger.ResetBadge(ctx, ev.UserID)
		if err != nil {
			return nil, err
		}
		if removed == 0 {
			return &RoleChangeResult{Applied: false, Kind: entry.Kind}, nil
		}
		return &RoleChangeResult{Applied: true, Kind: entry.Kind, Points: -removed, Adjustment: adj}, nil
	}

	return &RoleChangeResult{Applied: false, Kind: entry.Kind}, nil
}

func (p *RoleChangeProcessor) processStreak(ctx context.Context, ev RoleTransition, entry *models.RoleXP) (*RoleChangeResult, error) {
	// Streak XP is a historical achievement count: every grant accumulates
	// and losing the role keeps what was earned.
	if ev.Direction != RoleGained {
		return &RoleChangeResult{Applied: false, Kind: entry.Kind}, nil
	}

	adj, err := p.ledger.Adjust(ctx, ev.UserID, ComponentStreak, entry.Points)
	if err != nil {
		return nil, err
	}
	return &RoleChangeResult{Applied: true, Kind: entry.Kind, Points: entry.Points, Adjustment: adj}, nil
}
