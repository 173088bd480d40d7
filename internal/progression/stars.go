package progression

import "bubble-defense/internal/game"

const (
	BossWaveStars      = 5
	MilestoneWaveStars = 2
	MilestoneInterval  = 5
)

// StarsForWave returns the stars earned for completing wave n.
// Base is the wave number; a perfect wave adds half again, rounded down.
// The boss wave adds a flat bonus, other milestone waves a smaller one.
func StarsForWave(n int, perfect bool) int {
	if n <= 0 {
		return 0
	}
	stars := n
	if perfect {
		stars += n / 2
	}
	switch {
	case n == game.BossWave:
		stars += BossWaveStars
	case n%MilestoneInterval == 0:
		stars += MilestoneWaveStars
	}
	return stars
}
