package xp

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/leveling"
)

// Component names one of the three XP buckets on a user record.
type Component string

const (
	ComponentQuest  Component = "quest"
	ComponentBadge  Component = "badge"
	ComponentStreak Component = "streak"
)

const recordCacheSize = 10000

// Ledger owns all mutations of user XP records. Writes for the same user are
// serialized through a per-user lock so at-least-once event delivery can't
// interleave; different users never block each other.
type Ledger struct {
	store LedgerStore
	cache *lru.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedger(store LedgerStore) *Ledger {
	cache, _ := lru.New(recordCacheSize)
	return &Ledger{
		store: store,
		cache: cache,
		locks: make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing writes for one user, creating it on
// first use. Locks are never evicted; they are tiny and bounded by the user
// population.
func (l *Ledger) userLock(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// Record returns a snapshot of the user's XP record, creating a zero record
// on first access. Callers always get their own copy: the cached record is
// mutated in place by concurrent writers, so handing it out would race.
func (l *Ledger) Record(ctx context.Context, userID string) (*models.UserXP, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.recordLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	return copyRecord(rec), nil
}

// recordLocked returns the live cached record, loading or creating it when
// missing. Must be called with the user's lock held.
func (l *Ledger) recordLocked(ctx context.Context, userID string) (*models.UserXP, error) {
	if cached, ok := l.cache.Get(userID); ok {
		if rec, ok := cached.(*models.UserXP); ok {
			return rec, nil
		}
	}
	return l.loadOrCreate(ctx, userID)
}

// loadOrCreate must be called with the user's lock held.
func (l *Ledger) loadOrCreate(ctx context.Context, userID string) (*models.UserXP, error) {
	rec, found, err := l.store.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load xp record: %w", err)
	}
	if !found {
		rec = &models.UserXP{
			UserID:    userID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := l.store.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to create xp record: %w", err)
		}
	}
	l.cache.Add(userID, rec)
	return rec, nil
}

// Adjustment describes one applied ledger mutation.
type Adjustment struct {
	Record *models.UserXP
	// Before and After are the total XP around the mutation; callers derive
	// level changes from them.
	Before int64
	After  int64
}

func (a *Adjustment) OldLevel() int { return leveling.LevelFor(a.Before) }
func (a *Adjustment) NewLevel() int { return leveling.LevelFor(a.After) }
func (a *Adjustment) LevelChanged() bool {
	return a.OldLevel() != a.NewLevel()
}

// Adjust adds delta (which may be negative) to the named component, clamping
// the component at zero. Clamping instead of erroring keeps replayed or
// duplicate negative adjustments from ever corrupting a record.
func (l *Ledger) Adjust(ctx context.Context, userID string, component Component, delta int64) (*Adjustment, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.recordLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	before := rec.TotalXP()
	switch component {
	case ComponentQuest:
		rec.QuestXP = clampZero(rec.QuestXP + delta)
	case ComponentBadge:
		rec.BadgeXP = clampZero(rec.BadgeXP + delta)
	case ComponentStreak:
		rec.StreakXP = clampZero(rec.StreakXP + delta)
	default:
		return nil, fmt.Errorf("unknown xp component %q", component)
	}
	rec.UpdatedAt = time.Now()

	if err := l.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update xp record: %w", err)
	}
	l.cache.Add(userID, rec)

	return &Adjustment{Record: copyRecord(rec), Before: before, After: rec.TotalXP()}, nil
}

// AwardBadge grants points to the badge component, but only when no badge
// award is in effect. The check and the write share the user's lock, so
// concurrent deliveries of overlapping badge grants settle on exactly one
// award. The bool reports whether the award happened.
func (l *Ledger) AwardBadge(ctx context.Context, userID string, points int64) (*Adjustment, bool, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.recordLocked(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if rec.BadgeXP != 0 {
		return nil, false, nil
	}

	before := rec.TotalXP()
	rec.BadgeXP = clampZero(points)
	rec.UpdatedAt = time.Now()

	if err := l.store.Update(ctx, rec); err != nil {
		return nil, false, fmt.Errorf("failed to update xp record: %w", err)
	}
	l.cache.Add(userID, rec)

	return &Adjustment{Record: copyRecord(rec), Before: before, After: rec.TotalXP()}, true, nil
}

// ResetBadge zeroes the badge component and reports how much was removed.
// A zero return means the badge was already clear and nothing was written.
func (l *Ledger) ResetBadge(ctx context.Context, userID string) (*Adjustment, int64, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.recordLocked(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if rec.BadgeXP == 0 {
		return nil, 0, nil
	}

	before := rec.TotalXP()
	removed := rec.BadgeXP
	rec.BadgeXP = 0
	rec.UpdatedAt = time.Now()

	if err := l.store.Update(ctx, rec); err != nil {
		return nil, 0, fmt.Errorf("failed to update xp record: %w", err)
	}
	l.cache.Add(userID, rec)

	return &Adjustment{Record: copyRecord(rec), Before: before, After: rec.TotalXP()}, removed, nil
}

// SetQuestXP replaces the quest component outright, leaving badge and streak
// XP untouched. Used by the admin setxp command.
func (l *Ledger) SetQuestXP(ctx context.Context, userID string, amount int64) (*Adjustment, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.recordLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	before := rec.TotalXP()
	rec.QuestXP = amount
	rec.UpdatedAt = time.Now()

	if err := l.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update xp record: %w", err)
	}
	l.cache.Add(userID, rec)

	return &Adjustment{Record: copyRecord(rec), Before: before, After: rec.TotalXP()}, nil
}

// OptIn flags the user as a participant, creating their record if needed.
// Opting in twice is harmless.
func (l *Ledger) OptIn(ctx context.Context, userID string) (*models.UserXP, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := l.recordLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec.OptedIn {
		return copyRecord(rec), nil
	}

	rec.OptedIn = true
	rec.UpdatedAt = time.Now()
	if err := l.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update xp record: %w", err)
	}
	l.cache.Add(userID, rec)
	return copyRecord(rec), nil
}

// OptedIn reports whether the user has joined the XP system. Unknown users
// are simply not opted in; no record is created.
func (l *Ledger) OptedIn(ctx context.Context, userID string) (bool, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if cached, ok := l.cache.Get(userID); ok {
		if rec, ok := cached.(*models.UserXP); ok {
			return rec.OptedIn, nil
		}
	}
	rec, found, err := l.store.Find(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load xp record: %w", err)
	}
	if !found {
		return false, nil
	}
	l.cache.Add(userID, rec)
	return rec.OptedIn, nil
}

// Level returns the user's current level derived from total XP.
func (l *Ledger) Level(ctx context.Context, userID string) (int, error) {
	rec, err := l.Record(ctx, userID)
	if err != nil {
		return 0, err
	}
	return leveling.LevelFor(rec.TotalXP()), nil
}

// Snapshot returns all records in creation order.
func (l *Ledger) Snapshot(ctx context.Context) ([]*models.UserXP, error) {
	return l.store.All(ctx)
}

func copyRecord(rec *models.UserXP) *models.UserXP {
	snap := *rec
	return &snap
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
