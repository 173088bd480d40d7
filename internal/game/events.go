package game

// EventKind identifies an observation type
type EventKind int

const (
	EvtEnemyPopped EventKind = iota
	EvtWaveStarted
	EvtWaveComplete
	EvtBossSpawned
	EvtBossDamaged
	EvtBossDefeated
	EvtScoreChanged
	EvtMultiplierChanged
	EvtCoinsChanged
	EvtProjectileFired
	EvtPlayerHit
	EvtShieldBroken
	EvtGameOver
	EvtWeaponChanged
	EvtBombDetonated
	evtKindCount
)

var eventNames = [evtKindCount]string{
	"enemy_popped",
	"wave_started",
	"wave_complete",
	"boss_spawned",
	"boss_damaged",
	"boss_defeated",
	"score_changed",
	"multiplier_changed",
	"coins_changed",
	"projectile_fired",
	"player_hit",
	"shield_broken",
	"game_over",
	"weapon_changed",
	"bomb_detonated",
}

func (k EventKind) String() string {
	if k < 0 || k >= evtKindCount {
		return "unknown"
	}
	return eventNames[k]
}

// Event is one observation emitted by the core. The set of payloads is
// closed: every implementation lives in this file.
type Event interface {
	Kind() EventKind
}

// EnemyPopped is emitted when a weapon or bomb destroys an enemy
type EnemyPopped struct {
	Size      Size     `json:"size"`
	EnemyKind Kind     `json:"kind"`
	Combo     int      `json:"combo"`
	Weapon    WeaponID `json:"weapon"`
	Points    int      `json:"points"`
	Position  Vec3     `json:"pos"`
	ByBomb    bool     `json:"bomb,omitempty"`
}

// WaveStarted is emitted by StartWave
type WaveStarted struct {
	Wave   int `json:"wave"`
	Budget int `json:"budget"`
}

// WaveComplete carries the finished wave number
type WaveComplete struct {
	Wave    int  `json:"wave"`
	Perfect bool `json:"perfect"`
	Reward  int  `json:"reward"`
}

type BossSpawned struct {
	Health int `json:"hp"`
}

type BossDamaged struct {
	Health    int `json:"hp"`
	MaxHealth int `json:"mhp"`
}

type BossDefeated struct {
	Wave int `json:"wave"`
}

type ScoreChanged struct {
	Total int `json:"total"`
	Delta int `json:"delta"`
}

type MultiplierChanged struct {
	Multiplier int `json:"mult"`
}

type CoinsChanged struct {
	Total int `json:"total"`
	Delta int `json:"delta"`
}

type ProjectileFired struct {
	Weapon WeaponID `json:"weapon"`
	Count  int      `json:"count"`
}

// PlayerHit reports the pools after an enemy reached the player
type PlayerHit struct {
	Shield int `json:"shield"`
	Core   int `json:"core"`
}

type ShieldBroken struct{}

type GameOver struct {
	Score int `json:"score"`
	Wave  int `json:"wave"`
}

type WeaponChanged struct {
	Weapon WeaponID `json:"weapon"`
}

type BombDetonated struct {
	Cleared int `json:"cleared"`
}

func (EnemyPopped) Kind() EventKind       { return EvtEnemyPopped }
func (WaveStarted) Kind() EventKind       { return EvtWaveStarted }
func (WaveComplete) Kind() EventKind      { return EvtWaveComplete }
func (BossSpawned) Kind() EventKind       { return EvtBossSpawned }
func (BossDamaged) Kind() EventKind       { return EvtBossDamaged }
func (BossDefeated) Kind() EventKind      { return EvtBossDefeated }
func (ScoreChanged) Kind() EventKind      { return EvtScoreChanged }
func (MultiplierChanged) Kind() EventKind { return EvtMultiplierChanged }
func (CoinsChanged) Kind() EventKind      { return EvtCoinsChanged }
func (ProjectileFired) Kind() EventKind   { return EvtProjectileFired }
func (PlayerHit) Kind() EventKind         { return EvtPlayerHit }
func (ShieldBroken) Kind() EventKind      { return EvtShieldBroken }
func (GameOver) Kind() EventKind          { return EvtGameOver }
func (WeaponChanged) Kind() EventKind     { return EvtWeaponChanged }
func (BombDetonated) Kind() EventKind     { return EvtBombDetonated }

// Listener receives observations
type Listener interface {
	OnEvent(e Event)
}

// ListenerFunc adapts a plain function to Listener
type ListenerFunc func(e Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Bus fans observations out to registered listeners. It is not safe for
// concurrent use; it runs on the frame loop like everything else in the core.
type Bus struct {
	listeners [evtKindCount][]Listener
	all       []Listener
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers l for one kind of observation
func (b *Bus) Subscribe(kind EventKind, l Listener) {
	if kind < 0 || kind >= evtKindCount {
		return
	}
	b.listeners[kind] = append(b.listeners[kind], l)
}

// SubscribeAll registers l for every observation
func (b *Bus) SubscribeAll(l Listener) {
	b.all = append(b.all, l)
}

// Emit delivers e to its listeners in registration order
func (b *Bus) Emit(e Event) {
	if b == nil {
		return
	}
	for _, l := range b.listeners[e.Kind()] {
		l.OnEvent(e)
	}
	for _, l := range b.all {
		l.OnEvent(e)
	}
}
