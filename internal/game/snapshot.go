package game

// EnemyState is the wire form of an enemy
type EnemyState struct {
	ID    uint64  `msgpack:"id" json:"id"`
	Size  Size    `msgpack:"s" json:"s"`
	Kind  Kind    `msgpack:"k" json:"k"`
	X     float64 `msgpack:"x" json:"x"`
	Y     float64 `msgpack:"y" json:"y"`
	Z     float64 `msgpack:"z" json:"z"`
	R     float64 `msgpack:"r" json:"r"`
	HP    int     `msgpack:"hp" json:"hp"`
	MaxHP int     `msgpack:"mhp" json:"mhp"`
}

// ProjectileState is the wire form of a projectile
type ProjectileState struct {
	ID uint64   `msgpack:"id" json:"id"`
	W  WeaponID `msgpack:"w" json:"w"`
	X  float64  `msgpack:"x" json:"x"`
	Y  float64  `msgpack:"y" json:"y"`
	Z  float64  `msgpack:"z" json:"z"`
}

// PlayerState is the wire form of the defender
type PlayerState struct {
	Shield    int  `msgpack:"sh" json:"sh"`
	MaxShield int  `msgpack:"msh" json:"msh"`
	Core      int  `msgpack:"co" json:"co"`
	MaxCore   int  `msgpack:"mco" json:"mco"`
	Aim       Vec3 `msgpack:"aim" json:"aim"`
}

// Snapshot is the full observable state of a run at one tick
type Snapshot struct {
	Tick        uint64            `msgpack:"tick" json:"tick"`
	Wave        int               `msgpack:"wave" json:"wave"`
	WaveState   string            `msgpack:"ws" json:"ws"`
	Spawned     int               `msgpack:"spawned" json:"spawned"`
	Budget      int               `msgpack:"budget" json:"budget"`
	Score       int               `msgpack:"score" json:"score"`
	Combo       int               `msgpack:"combo" json:"combo"`
	Multiplier  int               `msgpack:"mult" json:"mult"`
	Coins       int               `msgpack:"coins" json:"coins"`
	Weapon      WeaponID          `msgpack:"weapon" json:"weapon"`
	Owned       []WeaponID        `msgpack:"owned" json:"owned"`
	Bombs       int               `msgpack:"bombs" json:"bombs"`
	GameOver    bool              `msgpack:"over" json:"over"`
	Player      PlayerState       `msgpack:"player" json:"player"`
	Enemies     []EnemyState      `msgpack:"enemies" json:"enemies"`
	Projectiles []ProjectileState `msgpack:"proj" json:"proj"`
}
