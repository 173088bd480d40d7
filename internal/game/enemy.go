package game

import "math"

// Size is the bubble size class
type Size string

const (
	SizeLarge  Size = "large"
	SizeMedium Size = "medium"
	SizeSmall  Size = "small"
	SizeBoss   Size = "boss"
)

// Kind is the bubble behaviour variant
type Kind string

const (
	KindStandard Kind = "standard"
	KindSpeed    Kind = "speed"
	KindArmor    Kind = "armor"
	KindZigzag   Kind = "zigzag"
)

const (
	ArmorHealth = 2

	SpeedKindSpeedMul  = 1.5
	SpeedKindPointsMul = 1.5
	ArmorPointsMul     = 1.3
	ZigzagPointsMul    = 1.4

	ZigzagStartAmp  = 0.5
	ZigzagAmpGrowth = 0.1 // per second
	ZigzagMaxAmp    = 2.0

	SpeedDrift       = 0.2 // fraction of base speed gained/lost by the sine drift
	BobAmplitude     = 0.5
	SplitRadius      = 0.5 // children sit on a ring this far from the parent
	SplitDepthJitter = 1.0
)

// SizeDef holds the per-size base stats
type SizeDef struct {
	Radius float64
	Speed  float64
	Points int
	Health int
}

// SizeTable is the fixed size table. Kind modifiers are applied on top once,
// at spawn.
var SizeTable = map[Size]SizeDef{
	SizeLarge:  {Radius: 1.0, Speed: 1.5, Points: 10, Health: 1},
	SizeMedium: {Radius: 0.6, Speed: 2.0, Points: 25, Health: 1},
	SizeSmall:  {Radius: 0.3, Speed: 2.5, Points: 50, Health: 1},
	SizeBoss:   {Radius: 3.0, Speed: 0.8, Points: 500, Health: 10},
}

// Enemy is a bubble chasing the player
type Enemy struct {
	ID        uint64
	Size      Size
	Kind      Kind
	Health    int
	MaxHealth int
	Position  Vec3
	Velocity  Vec3 // displacement applied on the last tick (already scaled by dt)
	Radius    float64
	Points    int
	Speed     float64 // current speed including drift
	BaseSpeed float64
	Age       float64 // seconds since spawn; drives drift/zigzag phase
	ZigzagAmp float64
	Alive     bool
}

// NewEnemy creates a bubble with its size/kind modifiers already applied
func NewEnemy(id uint64, size Size, kind Kind, pos Vec3) *Enemy {
	def, ok := SizeTable[size]
	if !ok {
		size = SizeLarge
		def = SizeTable[SizeLarge]
	}
	e := &Enemy{
		ID:        id,
		Size:      size,
		Kind:      kind,
		Health:    def.Health,
		MaxHealth: def.Health,
		Position:  pos,
		Radius:    def.Radius,
		Points:    def.Points,
		BaseSpeed: def.Speed,
		Speed:     def.Speed,
		Alive:     true,
	}

	switch kind {
	case KindSpeed:
		e.BaseSpeed *= SpeedKindSpeedMul
		e.Speed = e.BaseSpeed
		e.Points = int(math.Floor(float64(e.Points) * SpeedKindPointsMul))
	case KindArmor:
		e.Health = ArmorHealth
		e.MaxHealth = ArmorHealth
		e.Points = int(math.Floor(float64(e.Points) * ArmorPointsMul))
	case KindZigzag:
		e.Points = int(math.Floor(float64(e.Points) * ZigzagPointsMul))
		e.ZigzagAmp = ZigzagStartAmp
	default:
		e.Kind = KindStandard
	}
	return e
}

// Update advances the chase AI by dt seconds toward target
func (e *Enemy) Update(dt float64, target Vec3) {
	if !e.Alive {
		return
	}
	e.Age += dt
	t := e.Age

	e.Speed = e.BaseSpeed * (1 + math.Sin(t*2)*SpeedDrift)

	dir := target.Sub(e.Position).Normalize()
	step := dir.Scale(e.Speed * dt)

	if e.Kind == KindZigzag {
		// Sideways relative to the chase direction; falls back to X when
		// chasing straight up or down.
		side := dir.Cross(Up).Normalize()
		if side.LenSq() == 0 {
			side = Vec3{1, 0, 0}
		}
		step = step.
			Add(side.Scale(math.Sin(t*4) * e.ZigzagAmp * dt * 10)).
			Add(Up.Scale(math.Cos(t*3) * e.ZigzagAmp * dt * 8))
		e.ZigzagAmp = math.Min(e.ZigzagAmp+dt*ZigzagAmpGrowth, ZigzagMaxAmp)
	} else {
		step.X += math.Sin(t*2) * BobAmplitude * dt
		step.Y += math.Sin(t*3) * BobAmplitude * dt
	}

	e.Velocity = step
	e.Position = e.Position.Add(step)
}

// Hit removes one unit of health and returns true if the enemy died
func (e *Enemy) Hit() bool {
	if !e.Alive || e.Health <= 0 {
		return false
	}
	e.Health--
	return e.Health == 0
}

// ShouldSplit reports whether popping this enemy spawns children
func (e *Enemy) ShouldSplit() bool {
	return e.Kind == KindStandard && e.Size != SizeSmall && e.Size != SizeBoss
}

// NextSize returns the child size, or "" when the enemy does not split
func (e *Enemy) NextSize() Size {
	switch e.Size {
	case SizeLarge:
		return SizeMedium
	case SizeMedium:
		return SizeSmall
	}
	return ""
}

// OutOfBounds reports whether the enemy strayed out of the play volume
func (e *Enemy) OutOfBounds(bound float64) bool {
	return OutOfBounds(e.Position, bound)
}

// CollidesWithPlayer checks the enemy sphere against the player sphere
func (e *Enemy) CollidesWithPlayer(pos Vec3, radius float64) bool {
	return SpheresOverlap(e.Position, e.Radius, pos, radius)
}

// SplitOffsets returns the child spawn positions for a pop at the current
// position: n points on a ring around the parent with some depth jitter.
func (e *Enemy) SplitOffsets(n int, rng *Rand) []Vec3 {
	out := make([]Vec3, 0, n)
	for i := 0; i < n; i++ {
		angle := math.Pi * 2 * float64(i) / float64(n)
		offset := Vec3{
			X: math.Cos(angle) * SplitRadius,
			Y: math.Sin(angle) * SplitRadius,
			Z: rng.Range(-SplitDepthJitter, SplitDepthJitter),
		}
		out = append(out, e.Position.Add(offset))
	}
	return out
}

// ToState converts to protocol state
func (e *Enemy) ToState() EnemyState {
	return EnemyState{
		ID:    e.ID,
		Size:  e.Size,
		Kind:  e.Kind,
		X:     round2(e.Position.X),
		Y:     round2(e.Position.Y),
		Z:     round2(e.Position.Z),
		R:     e.Radius,
		HP:    e.Health,
		MaxHP: e.MaxHealth,
	}
}
