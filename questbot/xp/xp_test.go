package xp

import (
	"context"
	"sync"
	"testing"

	"github.com/questcord/questbot/questbot/database/models"
)

// In-memory store fakes shared by the package tests.

type memLedgerStore struct {
	mu      sync.Mutex
	records []*models.UserXP
	byUser  map[string]*models.UserXP
}

func newMemLedgerStore() *memLedgerStore {
	return &memLedgerStore{byUser: make(map[string]*models.UserXP)}
}

func (s *memLedgerStore) Find(_ context.Context, userID string) (*models.UserXP, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byUser[userID]
	return rec, ok, nil
}

func (s *memLedgerStore) Create(_ context.Context, rec *models.UserXP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = int64(len(s.records) + 1)
	s.records = append(s.records, rec)
	s.byUser[rec.UserID] = rec
	return nil
}

func (s *memLedgerStore) Update(_ context.Context, rec *models.UserXP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[rec.UserID] = rec
	return nil
}

func (s *memLedgerStore) All(_ context.Context) ([]*models.UserXP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.UserXP, len(s.records))
	copy(out, s.records)
	return out, nil
}

type memRoleStore struct {
	mu      sync.Mutex
	entries map[string]*models.RoleXP
}

func newMemRoleStore() *memRoleStore {
	return &memRoleStore{entries: make(map[string]*models.RoleXP)}
}

func (s *memRoleStore) Find(_ context.Context, roleID string) (*models.RoleXP, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[roleID]
	return entry, ok, nil
}

func (s *memRoleStore) Upsert(_ context.Context, entry *models.RoleXP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.RoleID] = entry
	return nil
}

func (s *memRoleStore) Delete(_ context.Context, roleID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[roleID]
	delete(s.entries, roleID)
	return ok, nil
}

type memQuestStore struct {
	mu          sync.Mutex
	quests      map[string]*models.Quest
	completions map[string]bool // messageID + "/" + userID
}

func newMemQuestStore() *memQuestStore {
	return &memQuestStore{
		quests:      make(map[string]*models.Quest),
		completions: make(map[string]bool),
	}
}

func (s *memQuestStore) FindQuest(_ context.Context, messageID string) (*models.Quest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quests[messageID]
	return q, ok, nil
}

func (s *memQuestStore) HasCompletion(_ context.Context, messageID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completions[messageID+"/"+userID], nil
}

func (s *memQuestStore) RecordCompletion(_ context.Context, c *models.QuestCompletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions[c.MessageID+"/"+c.UserID] = true
	return nil
}

// staticHolder answers the other-badge-role check from a fixed role set.
type staticHolder struct {
	mu    sync.Mutex
	roles map[string][]string // userID -> held badge role IDs
}

func newStaticHolder() *staticHolder {
	return &staticHolder{roles: make(map[string][]string)}
}

func (h *staticHolder) setRoles(userID string, roleIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roles[userID] = roleIDs
}

func (h *staticHolder) HoldsOtherBadgeRole(_ context.Context, _, userID, excludeRoleID string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range h.roles[userID] {
		if id != excludeRoleID {
			return true, nil
		}
	}
	return false, nil
}

func mustOptIn(t *testing.T, ledger *Ledger, userID string) {
	t.Helper()
	if _, err := ledger.OptIn(context.Background(), userID); err != nil {
		t.Fatalf("OptIn(%s) error: %v", userID, err)
	}
}

// allowAll is a staff predicate that accepts everyone.
var allowAll = StaffFunc(func(string) bool { return true })

// denyAll rejects everyone.
var denyAll = StaffFunc(func(string) bool { return false })
