package game

// Game is one run of the simulation. It owns the live enemy and projectile
// collections and advances every component in a fixed order per frame:
// enemy movement, firing, collision resolution, wave evaluation.
//
// A Game is not safe for concurrent use; the caller drives it from one
// goroutine or serializes access.
type Game struct {
	cfg Config
	rng *Rand
	ids IDSeq
	bus *Bus

	clock float64
	tick  uint64

	player      *Player
	enemies     []*Enemy
	projectiles []*Projectile

	arsenal  *Arsenal
	ledger   *Ledger
	director *Director
	resolver *Resolver

	perfect bool // no player damage during the current wave
	over    bool
}

// New creates an idle run. unlocks gates weapon selection; nil unlocks all.
func New(cfg Config, unlocks Unlocks) *Game {
	g := &Game{
		cfg: cfg,
		rng: NewRand(cfg.Seed),
		bus: NewBus(),
	}
	g.player = NewPlayer(cfg.Player)
	g.ledger = NewLedger(cfg.CoinRate, g.bus)
	g.arsenal = NewArsenal(unlocks, g.rng)
	g.director = NewDirector(g.rng, &g.ids, g.bus)
	g.resolver = NewResolver(cfg.Bound, cfg.ComboPolicy, g.ledger, g.bus, g.rng, &g.ids)
	g.perfect = true
	return g
}

// Bus is where observers register
func (g *Game) Bus() *Bus { return g.bus }

func (g *Game) Config() Config             { return g.cfg }
func (g *Game) Player() *Player            { return g.player }
func (g *Game) Ledger() *Ledger            { return g.ledger }
func (g *Game) Arsenal() *Arsenal          { return g.arsenal }
func (g *Game) Director() *Director        { return g.director }
func (g *Game) Enemies() []*Enemy          { return g.enemies }
func (g *Game) Projectiles() []*Projectile { return g.projectiles }
func (g *Game) Clock() float64             { return g.clock }
func (g *Game) Tick() uint64               { return g.tick }
func (g *Game) Over() bool                 { return g.over }

// SetUnlocks swaps the progression collaborator, e.g. after login
func (g *Game) SetUnlocks(u Unlocks) {
	g.arsenal.SetUnlocks(u)
}

// Reset clears every collection, the ledger, the arsenal and the player and
// puts the director back to Idle.
func (g *Game) Reset() {
	g.enemies = g.enemies[:0]
	g.projectiles = g.projectiles[:0]
	g.ids.Reset()
	g.ledger.Reset()
	g.arsenal.Reset()
	g.player.Reset()
	g.director.Reset()
	g.resolver.Wave = 0
	g.clock = 0
	g.tick = 0
	g.perfect = true
	g.over = false
}

// Start resets the run and begins wave 1
func (g *Game) Start() {
	g.Reset()
	g.StartWave(1)
}

// StartWave begins wave n
func (g *Game) StartWave(n int) {
	if g.over {
		return
	}
	g.perfect = true
	g.director.StartWave(n)
	g.resolver.Wave = g.director.Wave
}

// NextWave starts the following wave; only valid between waves
func (g *Game) NextWave() bool {
	if g.over || g.director.IsActive() {
		return false
	}
	g.StartWave(g.director.Wave + 1)
	return true
}

// SetAim points the weapon; the vector need not be normalized
func (g *Game) SetAim(dir Vec3) {
	if d := dir.Normalize(); d.LenSq() > 0 {
		g.player.Aim = d
	}
}

// SetFiring holds or releases the trigger
func (g *Game) SetFiring(on bool) {
	g.player.Firing = on
}

// Fire attempts one shot with the current weapon along the player's aim
func (g *Game) Fire() []*Projectile {
	if g.over {
		return nil
	}
	shots := g.arsenal.Fire(g.clock, g.player.Position, g.player.Aim, g.cfg.ProjectileLifetime, &g.ids)
	if len(shots) == 0 {
		return nil
	}
	g.projectiles = append(g.projectiles, shots...)
	g.bus.Emit(ProjectileFired{Weapon: g.arsenal.CurrentID(), Count: len(shots)})
	return shots
}

// Update advances the run by dt seconds
func (g *Game) Update(dt float64) TickResult {
	if g.over {
		return TickResult{}
	}
	g.clock += dt
	g.tick++

	for _, e := range g.enemies {
		e.Update(dt, g.player.Position)
	}

	if g.player.Firing {
		g.Fire()
	}

	var res TickResult
	g.enemies, g.projectiles, res = g.resolver.Resolve(dt, g.enemies, g.projectiles, g.player)
	if res.PlayerDamaged > 0 {
		g.perfect = false
	}
	if !g.player.Alive() {
		g.over = true
		g.bus.Emit(GameOver{Score: g.ledger.Score(), Wave: g.director.Wave})
		return res
	}

	var done bool
	g.enemies, done = g.director.Update(dt, g.enemies)
	if done {
		g.completeWave()
	}
	return res
}

func (g *Game) completeWave() {
	wave := g.director.Wave
	reward := g.ledger.AddWaveReward(wave)
	if g.cfg.RegenShieldOnWave {
		g.player.RegenerateShield()
	}
	g.bus.Emit(WaveComplete{Wave: wave, Perfect: g.perfect, Reward: reward})
	g.director.Finish()
}

// SelectWeapon makes id current; fails unless unlocked and purchased
func (g *Game) SelectWeapon(id WeaponID) bool {
	if !g.arsenal.SetActive(id) {
		return false
	}
	g.bus.Emit(WeaponChanged{Weapon: id})
	return true
}

// ShopOpen reports whether purchases are allowed: between waves of a live run
func (g *Game) ShopOpen() bool {
	return !g.over && !g.director.IsActive()
}

// PurchaseWeapon buys a weapon with coins
func (g *Game) PurchaseWeapon(id WeaponID) bool {
	if !g.ShopOpen() {
		return false
	}
	return g.arsenal.Purchase(id, g.ledger)
}

// Buy purchases a shop item. Coins are only spent when the item applies.
func (g *Game) Buy(itemID string) bool {
	if !g.ShopOpen() {
		return false
	}
	item, ok := ShopCatalogMap[itemID]
	if !ok {
		return false
	}
	switch itemID {
	case ItemRestoreShield:
		if g.player.Shield >= g.player.MaxShield || !g.ledger.SpendCoins(item.Price) {
			return false
		}
		g.player.RestoreShield()
	case ItemFireRate:
		if g.arsenal.FireRateUpgrades() >= MaxFireRateUpgrades || !g.ledger.SpendCoins(item.Price) {
			return false
		}
		g.arsenal.UpgradeFireRate()
	case ItemBomb:
		if !g.ledger.SpendCoins(item.Price) {
			return false
		}
		g.arsenal.AddBomb()
	default:
		return false
	}
	return true
}

// Bomb detonates a screen-clear bomb: every live enemy goes through the kill
// path without splitting. An empty field keeps the bomb.
func (g *Game) Bomb() bool {
	if g.over || liveCount(g.enemies) == 0 || !g.arsenal.UseBomb() {
		return false
	}
	var cleared int
	g.enemies, cleared = g.resolver.ClearAll(g.enemies)
	g.bus.Emit(BombDetonated{Cleared: cleared})
	return true
}

// SpawnEnemy places an enemy directly into the live collection
func (g *Game) SpawnEnemy(size Size, kind Kind, pos Vec3) *Enemy {
	e := NewEnemy(g.ids.Next(), size, kind, pos)
	g.enemies = append(g.enemies, e)
	return e
}

// Snapshot captures the observable state
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Tick:        g.tick,
		Wave:        g.director.Wave,
		WaveState:   g.director.State.String(),
		Spawned:     g.director.TotalSpawned,
		Budget:      g.director.SpawnBudget,
		Score:       g.ledger.Score(),
		Combo:       g.ledger.Combo(),
		Multiplier:  g.ledger.Multiplier(),
		Coins:       g.ledger.Coins(),
		Weapon:      g.arsenal.CurrentID(),
		Owned:       g.arsenal.Purchased(),
		Bombs:       g.arsenal.Bombs(),
		GameOver:    g.over,
		Player:      g.player.ToState(),
		Enemies:     make([]EnemyState, 0, len(g.enemies)),
		Projectiles: make([]ProjectileState, 0, len(g.projectiles)),
	}
	for _, e := range g.enemies {
		s.Enemies = append(s.Enemies, e.ToState())
	}
	for _, p := range g.projectiles {
		s.Projectiles = append(s.Projectiles, p.ToState())
	}
	return s
}
