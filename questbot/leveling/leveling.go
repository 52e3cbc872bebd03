// Package leveling maps cumulative XP to community levels using a fixed
// threshold table.
package leveling

const (
	MinLevel = 1
	MaxLevel = 10
)

// thresholds[i] is the minimum total XP required for level i+1. Level 1
// starts at 0 so every user has a level.
var thresholds = [MaxLevel]int64{
	0,     // Level 1
	100,   // Level 2
	500,   // Level 3
	1200,  // Level 4
	2200,  // Level 5
	3500,  // Level 6
	5100,  // Level 7
	7000,  // Level 8
	9200,  // Level 9
	11700, // Level 10
}

// LevelFor returns the highest level whose threshold is at or below xp.
// Negative xp is treated as 0.
func LevelFor(xp int64) int {
	for level := MaxLevel; level > MinLevel; level-- {
		if xp >= thresholds[level-1] {
			return level
		}
	}
	return MinLevel
}

// Threshold returns the minimum total XP for the given level. Levels outside
// [MinLevel, MaxLevel] are clamped.
func Threshold(level int) int64 {
	if level < MinLevel {
		level = MinLevel
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return thresholds[level-1]
}

// XPToNext returns how much XP is still needed to reach the next level, or 0
// at max level.
func XPToNext(xp int64) int64 {
	level := LevelFor(xp)
	if level >= MaxLevel {
		return 0
	}
	need := Threshold(level+1) - xp
	if need < 0 {
		return 0
	}
	return need
}

// Progress returns how far into the current level xp is, as a percentage in
// [0, 100]. Max level always reports 100.
func Progress(xp int64) float64 {
	level := LevelFor(xp)
	if level >= MaxLevel {
		return 100
	}
	lower := Threshold(level)
	upper := Threshold(level + 1)
	if upper <= lower {
		return 100
	}
	pct := float64(xp-lower) / float64(upper-lower) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
