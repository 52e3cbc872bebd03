package xp

import "errors"

var (
	// ErrInvalidAmount is returned when an admin command carries a negative
	// or otherwise unusable XP amount. Nothing is mutated.
	ErrInvalidAmount = errors.New("xp: invalid amount")

	// ErrUnauthorized is returned when the staff predicate rejects the
	// caller of an admin operation. Nothing is mutated.
	ErrUnauthorized = errors.New("xp: unauthorized")

	// ErrInvalidRoleKind is returned when a role assignment names a kind
	// other than badge or streak.
	ErrInvalidRoleKind = errors.New("xp: invalid role kind")

	// ErrNotOptedIn is returned when a manual XP adjustment targets a user
	// who never joined the XP system. Nothing is mutated.
	ErrNotOptedIn = errors.New("xp: user not opted in")
)
