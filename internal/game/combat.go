package game

import "slices"

// TickResult summarises one resolver pass
type TickResult struct {
	Hits          int // projectile hits that damaged an enemy
	Destroyed     int // enemies killed by weapons this tick
	PlayerDamaged int // enemies that reached the player
}

// Resolver is the single writer that removes enemies and projectiles. It
// applies hits, splits, scoring and player damage, then compacts both
// collections.
type Resolver struct {
	bound       float64
	comboPolicy ComboPolicy
	ledger      *Ledger
	bus         *Bus
	rng         *Rand
	ids         *IDSeq

	grid     *SpatialGrid
	candBuf  []int
	children []*Enemy

	// Wave is reported on BossDefeated
	Wave int
}

func NewResolver(bound float64, policy ComboPolicy, ledger *Ledger, bus *Bus, rng *Rand, ids *IDSeq) *Resolver {
	return &Resolver{
		bound:       bound,
		comboPolicy: policy,
		ledger:      ledger,
		bus:         bus,
		rng:         rng,
		ids:         ids,
		grid:        NewSpatialGrid(bound),
	}
}

// Resolve runs one collision pass: enemy-player contact, out-of-bounds
// cleanup, then projectile advance and hit tests. Both slices are returned
// compacted; split children are appended after the survivors.
func (r *Resolver) Resolve(dt float64, enemies []*Enemy, projectiles []*Projectile, player *Player) ([]*Enemy, []*Projectile, TickResult) {
	var res TickResult
	r.children = r.children[:0]

	// Contact with the player is not a kill: no score, no split.
	for _, e := range enemies {
		if !e.Alive || !e.CollidesWithPlayer(player.Position, player.Radius) {
			continue
		}
		e.Alive = false
		res.PlayerDamaged++
		r.damagePlayer(player)
	}

	for _, e := range enemies {
		if e.Alive && e.OutOfBounds(r.bound) {
			e.Alive = false
		}
	}

	r.grid.Clear()
	for i, e := range enemies {
		if e.Alive {
			r.grid.InsertSphere(e.Position, e.Radius, i)
		}
	}

	for _, p := range projectiles {
		p.Update(dt)
		if !p.Alive {
			continue
		}
		if OutOfBounds(p.Position, r.bound) {
			p.Alive = false
			continue
		}
		r.candBuf = r.grid.QueryBuf(p.Position, p.Radius, r.candBuf[:0])
		for _, idx := range r.candBuf {
			e := enemies[idx]
			if !e.Alive || p.AlreadyHit(e.ID) {
				continue
			}
			if !SpheresOverlap(p.Position, p.Radius, e.Position, e.Radius) {
				continue
			}
			if !p.RegisterHit(e.ID) {
				continue
			}
			res.Hits++
			if r.applyHit(e, p.Weapon) {
				res.Destroyed++
			}
			if !p.Alive {
				break
			}
		}
	}

	enemies = compactEnemies(enemies)
	enemies = append(enemies, r.children...)
	projectiles = slices.DeleteFunc(projectiles, func(p *Projectile) bool { return !p.Alive })
	return enemies, projectiles, res
}

// ClearAll routes every live enemy through the kill path without splitting.
// Returns the survivors slice (empty) and the number cleared.
func (r *Resolver) ClearAll(enemies []*Enemy) ([]*Enemy, int) {
	cleared := 0
	for _, e := range enemies {
		if !e.Alive {
			continue
		}
		e.Health = 0
		r.kill(e, "", true)
		cleared++
	}
	return compactEnemies(enemies), cleared
}

// applyHit removes one health unit and returns true if the enemy died
func (r *Resolver) applyHit(e *Enemy, weapon WeaponID) bool {
	if !e.Hit() {
		if e.Size == SizeBoss {
			r.bus.Emit(BossDamaged{Health: e.Health, MaxHealth: e.MaxHealth})
		}
		return false
	}
	r.kill(e, weapon, false)
	return true
}

func (r *Resolver) kill(e *Enemy, weapon WeaponID, byBomb bool) {
	e.Alive = false
	points := r.ledger.AddScore(e.Points)
	r.bus.Emit(EnemyPopped{
		Size:      e.Size,
		EnemyKind: e.Kind,
		Combo:     r.ledger.Combo(),
		Weapon:    weapon,
		Points:    points,
		Position:  e.Position,
		ByBomb:    byBomb,
	})
	if e.Size == SizeBoss {
		r.bus.Emit(BossDefeated{Wave: r.Wave})
		return
	}
	if !byBomb && e.ShouldSplit() {
		r.split(e)
	}
}

func (r *Resolver) split(e *Enemy) {
	size := e.NextSize()
	if size == "" {
		return
	}
	n := 2 + r.rng.IntN(2)
	for _, pos := range e.SplitOffsets(n, r.rng) {
		r.children = append(r.children, NewEnemy(r.ids.Next(), size, KindStandard, pos))
	}
}

func (r *Resolver) damagePlayer(p *Player) {
	if !p.Alive() {
		return
	}
	broken, _ := p.TakeDamage()
	r.bus.Emit(PlayerHit{Shield: p.Shield, Core: p.Core})
	if broken {
		r.bus.Emit(ShieldBroken{})
	}
	if r.comboPolicy == ComboOnDamage {
		r.ledger.ResetCombo()
	}
}

// compactEnemies drops dead entries in place, keeping order
func compactEnemies(enemies []*Enemy) []*Enemy {
	return slices.DeleteFunc(enemies, func(e *Enemy) bool { return !e.Alive })
}
