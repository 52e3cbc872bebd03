package xp

import (
	"context"
	"sort"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/leveling"
	"golang.org/x/sync/singleflight"
)

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank     int
	UserID   string
	QuestXP  int64
	BadgeXP  int64
	StreakXP int64
	TotalXP  int64
	Level    int
}

// Leaderboard produces the ranked view of all opted-in users. It is a pure
// read over a ledger snapshot; concurrent mutations simply land in the next
// build.
type Leaderboard struct {
	ledger *Ledger
	group  singleflight.Group
}

func NewLeaderboard(ledger *Ledger) *Leaderboard {
	return &Leaderboard{ledger: ledger}
}

// Rank returns all opted-in users ordered by total XP descending. Ties keep
// record-creation order, which the snapshot already provides, so the output
// is deterministic. Concurrent callers share one build via singleflight.
func (lb *Leaderboard) Rank(ctx context.Context) ([]LeaderboardEntry, error) {
	v, err, _ := lb.group.Do("rank", func() (interface{}, error) {
		return lb.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]LeaderboardEntry), nil
}

func (lb *Leaderboard) build(ctx context.Context) ([]LeaderboardEntry, error) {
	records, err := lb.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(records))
	for _, rec := range records {
		if !rec.OptedIn {
			continue
		}
		entries = append(entries, newEntry(rec))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalXP > entries[j].TotalXP
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func newEntry(rec *models.UserXP) LeaderboardEntry {
	total := rec.TotalXP()
	return LeaderboardEntry{
		UserID:   rec.UserID,
		QuestXP:  rec.QuestXP,
		BadgeXP:  rec.BadgeXP,
		StreakXP: rec.StreakXP,
		TotalXP:  total,
		Level:    leveling.LevelFor(total),
	}
}
