package progression

import (
	"log"

	"bubble-defense/internal/game"
)

// Recorder turns one player's game observations into persisted progression:
// stars per completed wave, lifetime statistics, achievements and the run
// history entry. It runs on the game loop, so callbacks must not block.
type Recorder struct {
	store     *Store
	profileID int64
	unlocks   *UnlockSet
	clock     func() float64

	// OnStars is called after stars are credited with the amount and new balance.
	OnStars func(earned, total int)
	// OnAchievement is called for each newly unlocked achievement.
	OnAchievement func(AchievementDef)

	pending       StatsDelta
	lastCommit    float64
	wave          int
	maxMultiplier int
	bestBomb      int
	active        bool
}

// NewRecorder returns a recorder for profileID. A nil store or a zero
// profile ID yields a recorder that tracks nothing persistent.
func NewRecorder(s *Store, profileID int64, unlocks *UnlockSet, clock func() float64) *Recorder {
	if clock == nil {
		clock = func() float64 { return 0 }
	}
	return &Recorder{store: s, profileID: profileID, unlocks: unlocks, clock: clock}
}

func (r *Recorder) persistent() bool {
	return r.store != nil && r.profileID > 0
}

// Begin starts a new run. Call before game.Start.
func (r *Recorder) Begin() {
	r.pending = StatsDelta{}
	r.lastCommit = 0
	r.wave = 0
	r.maxMultiplier = 1
	r.bestBomb = 0
	r.active = true
}

// Active reports whether a run is in progress.
func (r *Recorder) Active() bool { return r.active }

// OnEvent implements game.Listener.
func (r *Recorder) OnEvent(e game.Event) {
	if !r.active {
		return
	}
	switch ev := e.(type) {
	case game.EnemyPopped:
		r.pending.BubblesPopped++
		r.pending.HighestCombo = max(r.pending.HighestCombo, ev.Combo)
	case game.MultiplierChanged:
		r.maxMultiplier = max(r.maxMultiplier, ev.Multiplier)
	case game.CoinsChanged:
		if ev.Delta > 0 {
			r.pending.CoinsEarned += ev.Delta
		}
	case game.BombDetonated:
		r.pending.BombsUsed++
		r.bestBomb = max(r.bestBomb, ev.Cleared)
	case game.BossDefeated:
		r.pending.BossesDefeated++
	case game.WaveStarted:
		r.wave = max(r.wave, ev.Wave)
	case game.WaveComplete:
		r.completeWave(ev)
	case game.GameOver:
		r.Finish(ev.Score, ev.Wave)
	}
}

func (r *Recorder) completeWave(ev game.WaveComplete) {
	r.pending.WavesCompleted++
	r.pending.HighestWave = max(r.pending.HighestWave, ev.Wave)
	if ev.Perfect {
		r.pending.PerfectWaves++
	}

	if r.persistent() {
		earned := StarsForWave(ev.Wave, ev.Perfect)
		total, err := r.store.AddStars(r.profileID, earned)
		if err != nil {
			log.Printf("store: add stars for %d: %v", r.profileID, err)
		} else if r.OnStars != nil {
			r.OnStars(earned, total)
		}
	}
	r.commit(ev.Perfect)
}

// Finish records the run. Safe to call more than once; only the first call
// after Begin has any effect.
func (r *Recorder) Finish(score, wave int) {
	if !r.active {
		return
	}
	r.active = false
	r.pending.RunsPlayed++
	r.commit(false)

	if !r.persistent() {
		return
	}
	if _, err := r.store.RecordRun(r.profileID, score, wave, r.clock()); err != nil {
		log.Printf("store: record run for %d: %v", r.profileID, err)
	}
}

func (r *Recorder) commit(perfectWave bool) {
	now := r.clock()
	r.pending.PlayTime += now - r.lastCommit
	r.lastCommit = now
	d := r.pending
	r.pending = StatsDelta{}

	if !r.persistent() {
		return
	}
	if !d.IsZero() {
		if err := r.store.ApplyStats(r.profileID, d); err != nil {
			log.Printf("store: apply stats for %d: %v", r.profileID, err)
			return
		}
	}
	r.evaluate(perfectWave)
}

// Recheck evaluates achievements outside of a wave, e.g. after a weapon unlock.
func (r *Recorder) Recheck() {
	if r.persistent() {
		r.evaluate(false)
	}
}

func (r *Recorder) evaluate(perfectWave bool) {
	stats, err := r.store.GetStats(r.profileID)
	if err != nil || stats == nil {
		return
	}

	p := Progress{
		Stats:         *stats,
		Wave:          r.wave,
		PerfectWave:   perfectWave,
		MaxMultiplier: r.maxMultiplier,
		BestBomb:      r.bestBomb,
	}
	if r.unlocks != nil {
		p.Unlocked = r.unlocks.Len() - 1
	}
	for _, def := range CheckAchievements(r.store, r.profileID, p) {
		if r.OnAchievement != nil {
			r.OnAchievement(def)
		}
	}
}
