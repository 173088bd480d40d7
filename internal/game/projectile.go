package game

const (
	ProjectileLifetime = 3.0 // seconds
	ProjectileOffset   = 0.5 // spawn distance in front of the aim origin
)

// Projectile is a shot fired by the player's weapon
type Projectile struct {
	ID       uint64
	Weapon   WeaponID
	Position Vec3
	Velocity Vec3 // units/s
	Radius   float64
	Life     float64 // remaining seconds

	MaxPierces  int // 0 = stops at first hit
	PierceCount int
	hitSet      map[uint64]struct{}

	Alive bool
}

// NewProjectile creates a projectile travelling along dir at speed
func NewProjectile(id uint64, def *WeaponDef, origin, dir Vec3, lifetime float64) *Projectile {
	dir = dir.Normalize()
	p := &Projectile{
		ID:         id,
		Weapon:     def.ID,
		Position:   origin.Add(dir.Scale(ProjectileOffset)),
		Velocity:   dir.Scale(def.ProjectileSpeed),
		Radius:     def.ProjectileRadius,
		Life:       lifetime,
		MaxPierces: def.PierceCount,
		Alive:      true,
	}
	if p.MaxPierces > 0 {
		p.hitSet = make(map[uint64]struct{}, p.MaxPierces)
	}
	return p
}

// Update moves the projectile one tick and decays its lifetime
func (p *Projectile) Update(dt float64) {
	if !p.Alive {
		return
	}
	p.Position = p.Position.Add(p.Velocity.Scale(dt))
	p.Life -= dt
	if p.Life <= 0 {
		p.Alive = false
	}
}

// Pierces reports whether the projectile can pass through enemies
func (p *Projectile) Pierces() bool {
	return p.MaxPierces > 0
}

// AlreadyHit reports whether this projectile has struck the enemy before
func (p *Projectile) AlreadyHit(enemyID uint64) bool {
	_, ok := p.hitSet[enemyID]
	return ok
}

// RegisterHit records a hit and kills the projectile when its budget is spent.
// Returns false if the hit was not allowed (already struck or already dead).
func (p *Projectile) RegisterHit(enemyID uint64) bool {
	if !p.Alive {
		return false
	}
	if !p.Pierces() {
		p.Alive = false
		return true
	}
	if p.AlreadyHit(enemyID) {
		return false
	}
	p.hitSet[enemyID] = struct{}{}
	p.PierceCount++
	if p.PierceCount >= p.MaxPierces {
		p.Alive = false
	}
	return true
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID: p.ID,
		W:  p.Weapon,
		X:  round2(p.Position.X),
		Y:  round2(p.Position.Y),
		Z:  round2(p.Position.Z),
	}
}
