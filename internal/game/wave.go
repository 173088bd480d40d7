package game

import "math"

const (
	BossWave = 10

	SpawnIntervalBase  = 3.5
	SpawnIntervalStep  = 0.2
	SpawnIntervalFloor = 1.5

	EndlessBudgetBase = 30
	EndlessBudgetStep = 4
)

// BossSpawnPosition is where the wave-10 boss appears, ahead of the player
var BossSpawnPosition = Vec3{0, 5, -25}

// waveBudgets[n] is the enemy budget of wave n (index 0 unused)
var waveBudgets = [...]int{0, 6, 8, 10, 13, 16, 19, 22, 26, 30, 1}

// SpawnBudget returns the fixed number of director spawns for wave n
func SpawnBudget(n int) int {
	if n < 1 {
		return 0
	}
	if n < len(waveBudgets) {
		return waveBudgets[n]
	}
	return EndlessBudgetBase + EndlessBudgetStep*(n-BossWave)
}

// SpawnInterval returns seconds between spawn batches for wave n
func SpawnInterval(n int) float64 {
	return math.Max(SpawnIntervalBase-SpawnIntervalStep*float64(n), SpawnIntervalFloor)
}

// BatchSize returns how many enemies one spawn batch holds in wave n
func BatchSize(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 6:
		return 2
	default:
		return 3
	}
}

// RollKind picks an enemy kind for wave n
func RollKind(n int, rng *Rand) Kind {
	r := rng.Float64()
	switch {
	case n <= 3:
		return KindStandard
	case n <= 5:
		if r < 0.25 {
			return KindSpeed
		}
	case n == 6:
		if r < 0.25 {
			return KindSpeed
		}
		if r < 0.45 {
			return KindArmor
		}
	default:
		if r < 0.20 {
			return KindSpeed
		}
		if r < 0.35 {
			return KindArmor
		}
		if r < 0.50 {
			return KindZigzag
		}
	}
	return KindStandard
}

// WaveState is the director's lifecycle phase
type WaveState int

const (
	WaveStateIdle WaveState = iota
	WaveStateSpawning
	WaveStateDraining
	WaveStateComplete
)

func (s WaveState) String() string {
	switch s {
	case WaveStateSpawning:
		return "spawning"
	case WaveStateDraining:
		return "draining"
	case WaveStateComplete:
		return "complete"
	}
	return "idle"
}

// Director paces spawning for the current wave and detects completion. It
// only ever appends to the enemy collection.
type Director struct {
	Wave          int
	State         WaveState
	Elapsed       float64
	SpawnTimer    float64
	SpawnInterval float64
	TotalSpawned  int
	SpawnBudget   int
	BossSpawned   bool

	rng *Rand
	ids *IDSeq
	bus *Bus
}

func NewDirector(rng *Rand, ids *IDSeq, bus *Bus) *Director {
	return &Director{rng: rng, ids: ids, bus: bus}
}

// Reset returns the director to Idle before wave 1
func (d *Director) Reset() {
	d.Wave = 0
	d.State = WaveStateIdle
	d.Elapsed = 0
	d.SpawnTimer = 0
	d.SpawnInterval = 0
	d.TotalSpawned = 0
	d.SpawnBudget = 0
	d.BossSpawned = false
}

// StartWave arms wave n with fresh timers
func (d *Director) StartWave(n int) {
	if n < 1 {
		n = 1
	}
	d.Wave = n
	d.State = WaveStateSpawning
	d.Elapsed = 0
	d.SpawnTimer = 0
	d.SpawnInterval = SpawnInterval(n)
	d.TotalSpawned = 0
	d.SpawnBudget = SpawnBudget(n)
	d.BossSpawned = false
	d.bus.Emit(WaveStarted{Wave: n, Budget: d.SpawnBudget})
}

// NextWave starts the wave after the current one
func (d *Director) NextWave() {
	d.StartWave(d.Wave + 1)
}

func (d *Director) IsActive() bool {
	return d.State == WaveStateSpawning || d.State == WaveStateDraining
}

func (d *Director) IsBossWave() bool {
	return d.Wave == BossWave
}

// Update advances the timers, appends any spawns to enemies and reports
// whether the wave completed on this tick. Completion is re-evaluated every
// tick until both the budget is exhausted and no enemy is alive.
func (d *Director) Update(dt float64, enemies []*Enemy) ([]*Enemy, bool) {
	if !d.IsActive() {
		return enemies, false
	}
	d.Elapsed += dt

	if d.IsBossWave() {
		if !d.BossSpawned {
			boss := NewEnemy(d.ids.Next(), SizeBoss, KindStandard, BossSpawnPosition)
			enemies = append(enemies, boss)
			d.BossSpawned = true
			d.TotalSpawned = d.SpawnBudget
			d.bus.Emit(BossSpawned{Health: boss.Health})
		}
	} else if d.TotalSpawned < d.SpawnBudget {
		d.SpawnTimer += dt
		if d.SpawnTimer >= d.SpawnInterval {
			enemies = d.spawnBatch(enemies)
			d.SpawnTimer = 0
		}
	}

	if d.TotalSpawned >= d.SpawnBudget {
		d.State = WaveStateDraining
	}
	if d.State == WaveStateDraining && liveCount(enemies) == 0 {
		d.State = WaveStateComplete
		return enemies, true
	}
	return enemies, false
}

// Finish moves a completed wave back to Idle
func (d *Director) Finish() {
	if d.State == WaveStateComplete {
		d.State = WaveStateIdle
	}
}

func (d *Director) spawnBatch(enemies []*Enemy) []*Enemy {
	n := BatchSize(d.Wave)
	if left := d.SpawnBudget - d.TotalSpawned; n > left {
		n = left
	}
	for i := 0; i < n; i++ {
		pos := Vec3{
			X: d.rng.Range(-10, 10),
			Y: d.rng.Range(2, 8),
			Z: d.rng.Range(-25, -15),
		}
		enemies = append(enemies, NewEnemy(d.ids.Next(), SizeLarge, RollKind(d.Wave, d.rng), pos))
		d.TotalSpawned++
	}
	return enemies
}

func liveCount(enemies []*Enemy) int {
	n := 0
	for _, e := range enemies {
		if e.Alive {
			n++
		}
	}
	return n
}
