package leveling

import "testing"

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name string
		xp   int64
		want int
	}{
		{name: "zero xp", xp: 0, want: 1},
		{name: "below level 2", xp: 99, want: 1},
		{name: "exactly level 2", xp: 100, want: 2},
		{name: "mid level 3", xp: 700, want: 3},
		{name: "exactly level 10", xp: 11700, want: 10},
		{name: "beyond max", xp: 1_000_000, want: 10},
		{name: "negative clamps to min", xp: -5, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFor(tt.xp); got != tt.want {
				t.Errorf("LevelFor(%d) = %d, want %d", tt.xp, got, tt.want)
			}
		})
	}
}

func TestLevelForThresholdsRoundTrip(t *testing.T) {
	for level := MinLevel; level <= MaxLevel; level++ {
		if got := LevelFor(Threshold(level)); got != level {
			t.Errorf("LevelFor(Threshold(%d)) = %d, want %d", level, got, level)
		}
	}
}

func TestLevelForMonotonic(t *testing.T) {
	prev := MinLevel
	for xp := int64(0); xp <= 12000; xp++ {
		level := LevelFor(xp)
		if level < prev {
			t.Fatalf("LevelFor not monotonic: xp=%d level=%d prev=%d", xp, level, prev)
		}
		prev = level
	}
}

func TestXPToNext(t *testing.T) {
	tests := []struct {
		name string
		xp   int64
		want int64
	}{
		{name: "fresh user", xp: 0, want: 100},
		{name: "one short of level 2", xp: 99, want: 1},
		{name: "at level 2", xp: 100, want: 400},
		{name: "max level", xp: 11700, want: 0},
		{name: "past max", xp: 99999, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := XPToNext(tt.xp); got != tt.want {
				t.Errorf("XPToNext(%d) = %d, want %d", tt.xp, got, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	if got := Progress(0); got != 0 {
		t.Errorf("Progress(0) = %f, want 0", got)
	}
	if got := Progress(50); got != 50 {
		t.Errorf("Progress(50) = %f, want 50", got)
	}
	if got := Progress(11700); got != 100 {
		t.Errorf("Progress(11700) = %f, want 100", got)
	}
}
