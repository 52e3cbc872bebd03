package xp

import (
	"context"
	"log/slog"
)

// Admin is the staff-gated entry point for manual XP adjustments and role
// assignments. Authorization is the injected predicate's call; the core only
// enforces that it was consulted. Manual adjustments land on the quest
// component, keeping automatic role tracking untouched.
type Admin struct {
	ledger   *Ledger
	registry *Registry
	staff    StaffChecker
}

func NewAdmin(ledger *Ledger, registry *Registry, staff StaffChecker) *Admin {
	return &Admin{ledger: ledger, registry: registry, staff: staff}
}

func (a *Admin) authorize(actorID string) error {
	if !a.staff.IsStaff(actorID) {
		return ErrUnauthorized
	}
	return nil
}

// requireOptIn rejects adjustments targeting users outside the XP system.
// Staff can't grant XP to someone who never joined.
func (a *Admin) requireOptIn(ctx context.Context, userID string) error {
	optedIn, err := a.ledger.OptedIn(ctx, userID)
	if err != nil {
		return err
	}
	if !optedIn {
		return ErrNotOptedIn
	}
	return nil
}

// AddXP grants amount to the user's quest component.
func (a *Admin) AddXP(ctx context.Context, actorID, userID string, amount int64) (*Adjustment, error) {
	if err := a.authorize(actorID); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if err := a.requireOptIn(ctx, userID); err != nil {
		return nil, err
	}

	adj, err := a.ledger.Adjust(ctx, userID, ComponentQuest, amount)
	if err != nil {
		return nil, err
	}
	a.logAdjustment("addxp", actorID, userID, amount, adj)
	return adj, nil
}

// RemoveXP deducts amount from the user's quest component, clamped at zero.
func (a *Admin) RemoveXP(ctx context.Context, actorID, userID string, amount int64) (*Adjustment, error) {
	if err := a.authorize(actorID); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if err := a.requireOptIn(ctx, userID); err != nil {
		return nil, err
	}

	adj, err := a.ledger.Adjust(ctx, userID, ComponentQuest, -amount)
	if err != nil {
		return nil, err
	}
	a.logAdjustment("removexp", actorID, userID, -amount, adj)
	return adj, nil
}

// SetXP replaces the user's quest component with amount. Badge and streak XP
// are untouched, so the resulting total is amount plus those components.
func (a *Admin) SetXP(ctx context.Context, actorID, userID string, amount int64) (*Adjustment, error) {
	if err := a.authorize(actorID); err != nil {
		return nil, err
	}
	if err := a.requireOptIn(ctx, userID); err != nil {
		return nil, err
	}

	adj, err := a.ledger.SetQuestXP(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	a.logAdjustment("setxp", actorID, userID, amount, adj)
	return adj, nil
}

// AssignRoleXP registers or overwrites a role's XP entry.
func (a *Admin) AssignRoleXP(ctx context.Context, actorID, roleID string, points int64, kind string) error {
	if err := a.authorize(actorID); err != nil {
		return err
	}
	return a.registry.Assign(ctx, roleID, points, kind)
}

// UnassignRoleXP removes a role's XP entry.
func (a *Admin) UnassignRoleXP(ctx context.Context, actorID, roleID string) error {
	if err := a.authorize(actorID); err != nil {
		return err
	}
	return a.registry.Unassign(ctx, roleID)
}

func (a *Admin) logAdjustment(op, actorID, userID string, amount int64, adj *Adjustment) {
	slog.Info("Manual XP adjustment",
		slog.String("type", "sys"),
		slog.String("op", op),
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
		slog.Int64("total_after", adj.After))
}
