package game

import "math"

const (
	ComboStep     = 5 // pops per multiplier step
	MaxMultiplier = 10

	WaveRewardBase   = 15
	WaveRewardGrowth = 1.4
	BossWaveBonus    = 100
	MilestoneBonus   = 40 // every 5th wave other than the boss wave
)

// ComboPolicy decides when the combo counter resets
type ComboPolicy string

const (
	ComboNever    ComboPolicy = "never"     // only an explicit ResetCombo
	ComboOnDamage ComboPolicy = "on_damage" // also whenever the player takes a hit
)

// MultiplierFor returns the score multiplier for a combo count
func MultiplierFor(combo int) int {
	m := 1 + combo/ComboStep
	if m > MaxMultiplier {
		m = MaxMultiplier
	}
	return m
}

// WaveReward returns the coin bonus for completing wave n
func WaveReward(n int) int {
	if n < 1 {
		return 0
	}
	reward := int(math.Floor(WaveRewardBase * math.Pow(WaveRewardGrowth, float64(n-1))))
	switch {
	case n == BossWave:
		reward += BossWaveBonus
	case n%5 == 0:
		reward += MilestoneBonus
	}
	return reward
}

// Ledger tracks score, combo and coins for one run
type Ledger struct {
	score       int
	combo       int
	maxCombo    int
	multiplier  int
	coins       int
	coinsEarned int
	coinRate    float64

	bus *Bus
}

func NewLedger(coinRate float64, bus *Bus) *Ledger {
	l := &Ledger{coinRate: coinRate, bus: bus}
	l.Reset()
	return l
}

// Reset zeroes the ledger for a new run
func (l *Ledger) Reset() {
	l.score = 0
	l.combo = 0
	l.maxCombo = 0
	l.multiplier = 1
	l.coins = 0
	l.coinsEarned = 0
}

func (l *Ledger) Score() int      { return l.score }
func (l *Ledger) Combo() int      { return l.combo }
func (l *Ledger) MaxCombo() int   { return l.maxCombo }
func (l *Ledger) Multiplier() int { return l.multiplier }
func (l *Ledger) Coins() int      { return l.coins }

// CoinsEarned is the total coins accrued this run, before spending
func (l *Ledger) CoinsEarned() int { return l.coinsEarned }

func (l *Ledger) CoinRate() float64 { return l.coinRate }

// AddScore awards base points at the current multiplier, then advances the
// combo. Coins accrue from the unmultiplied base. Returns the points scored.
func (l *Ledger) AddScore(base int) int {
	if base <= 0 {
		return 0
	}
	awarded := base * l.multiplier
	l.score += awarded
	l.bus.Emit(ScoreChanged{Total: l.score, Delta: awarded})

	l.combo++
	if l.combo > l.maxCombo {
		l.maxCombo = l.combo
	}
	if m := MultiplierFor(l.combo); m != l.multiplier {
		l.multiplier = m
		l.bus.Emit(MultiplierChanged{Multiplier: m})
	}

	l.addCoins(int(math.Floor(float64(base) * l.coinRate)))
	return awarded
}

// AddWaveReward grants the one-time completion bonus for wave n
func (l *Ledger) AddWaveReward(n int) int {
	reward := WaveReward(n)
	l.addCoins(reward)
	return reward
}

func (l *Ledger) ResetCombo() {
	l.combo = 0
	if l.multiplier != 1 {
		l.multiplier = 1
		l.bus.Emit(MultiplierChanged{Multiplier: 1})
	}
}

// SpendCoins deducts amount, or returns false without touching the balance
func (l *Ledger) SpendCoins(amount int) bool {
	if amount < 0 || amount > l.coins {
		return false
	}
	if amount == 0 {
		return true
	}
	l.coins -= amount
	l.bus.Emit(CoinsChanged{Total: l.coins, Delta: -amount})
	return true
}

func (l *Ledger) addCoins(n int) {
	if n <= 0 {
		return
	}
	l.coins += n
	l.coinsEarned += n
	l.bus.Emit(CoinsChanged{Total: l.coins, Delta: n})
}
