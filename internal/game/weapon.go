package game

import "math"

// WeaponID identifies a weapon archetype
type WeaponID string

const (
	WeaponStandard   WeaponID = "standard"
	WeaponRapidFire  WeaponID = "rapidFire"
	WeaponSpreadShot WeaponID = "spreadShot"
	WeaponPierceShot WeaponID = "pierceShot"
)

const (
	SpreadJitter        = 0.05 // max vertical jitter per spread projectile (radians)
	FireRateUpgradeMul  = 1.25
	MaxFireRateUpgrades = 4
)

// WeaponDef holds the stats for a weapon archetype
type WeaponDef struct {
	ID               WeaponID `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	FireRate         float64  `json:"fireRate" yaml:"fireRate"` // shots/s
	DamageMultiplier float64  `json:"damage" yaml:"damage"`
	ProjectileSpeed  float64  `json:"speed" yaml:"speed"`
	ProjectileRadius float64  `json:"radius" yaml:"radius"`
	SpreadCount      int      `json:"spreadCount,omitempty" yaml:"spreadCount"`
	SpreadAngle      float64  `json:"spreadAngle,omitempty" yaml:"spreadAngle"` // radians, full fan width
	PierceCount      int      `json:"pierce,omitempty" yaml:"pierce"`
	UnlockCost       int      `json:"unlockCost" yaml:"unlockCost"`     // stars
	PurchaseCost     int      `json:"purchaseCost" yaml:"purchaseCost"` // coins
}

var WeaponCatalog = []WeaponDef{
	{
		ID: WeaponStandard, Name: "Standard Blaster",
		FireRate: 8, DamageMultiplier: 1.0, ProjectileSpeed: 50, ProjectileRadius: 0.10,
	},
	{
		ID: WeaponRapidFire, Name: "Rapid Fire",
		FireRate: 16, DamageMultiplier: 0.7, ProjectileSpeed: 45, ProjectileRadius: 0.08,
		UnlockCost: 10, PurchaseCost: 200,
	},
	// Spread: three projectiles across a 30 degree fan
	{
		ID: WeaponSpreadShot, Name: "Spread Shot",
		FireRate: 6, DamageMultiplier: 0.5, ProjectileSpeed: 40, ProjectileRadius: 0.09,
		SpreadCount: 3, SpreadAngle: math.Pi / 6,
		UnlockCost: 25, PurchaseCost: 350,
	},
	{
		ID: WeaponPierceShot, Name: "Pierce Shot",
		FireRate: 4, DamageMultiplier: 1.0, ProjectileSpeed: 60, ProjectileRadius: 0.12,
		PierceCount: 3,
		UnlockCost: 40, PurchaseCost: 500,
	},
}

var weaponCatalogMap map[WeaponID]*WeaponDef

func init() {
	weaponCatalogMap = make(map[WeaponID]*WeaponDef, len(WeaponCatalog))
	for i := range WeaponCatalog {
		weaponCatalogMap[WeaponCatalog[i].ID] = &WeaponCatalog[i]
	}
}

// GetWeaponDef returns the catalog entry for id
func GetWeaponDef(id WeaponID) (*WeaponDef, bool) {
	def, ok := weaponCatalogMap[id]
	return def, ok
}

// Unlocks answers whether a weapon archetype has been unlocked by progression
type Unlocks interface {
	IsWeaponUnlocked(id WeaponID) bool
}

// AllUnlocked treats every weapon as unlocked
type AllUnlocked struct{}

func (AllUnlocked) IsWeaponUnlocked(WeaponID) bool { return true }

// Arsenal is the player's weapon state for a run: the purchased set, the
// current weapon, the fire-rate gate, upgrades and screen-clear bombs.
type Arsenal struct {
	current          WeaponID
	purchased        map[WeaponID]bool
	lastFire         float64 // sim seconds
	fireRateMul      float64
	fireRateUpgrades int
	bombs            int

	unlocks Unlocks
	rng     *Rand
}

func NewArsenal(unlocks Unlocks, rng *Rand) *Arsenal {
	if unlocks == nil {
		unlocks = AllUnlocked{}
	}
	a := &Arsenal{unlocks: unlocks, rng: rng}
	a.Reset()
	return a
}

// Reset returns the arsenal to the start-of-run state
func (a *Arsenal) Reset() {
	a.current = WeaponStandard
	a.purchased = map[WeaponID]bool{WeaponStandard: true}
	a.lastFire = math.Inf(-1)
	a.fireRateMul = 1
	a.fireRateUpgrades = 0
	a.bombs = 0
}

func (a *Arsenal) SetUnlocks(u Unlocks) {
	if u == nil {
		u = AllUnlocked{}
	}
	a.unlocks = u
}

func (a *Arsenal) Current() *WeaponDef {
	def, _ := GetWeaponDef(a.current)
	return def
}

func (a *Arsenal) CurrentID() WeaponID { return a.current }

func (a *Arsenal) IsPurchased(id WeaponID) bool {
	return id == WeaponStandard || a.purchased[id]
}

func (a *Arsenal) IsUnlocked(id WeaponID) bool {
	return id == WeaponStandard || a.unlocks.IsWeaponUnlocked(id)
}

// Purchased lists the owned weapons in catalog order
func (a *Arsenal) Purchased() []WeaponID {
	out := make([]WeaponID, 0, len(WeaponCatalog))
	for _, w := range WeaponCatalog {
		if a.IsPurchased(w.ID) {
			out = append(out, w.ID)
		}
	}
	return out
}

// FireInterval is the minimum time between shots of the current weapon
func (a *Arsenal) FireInterval() float64 {
	return 1 / (a.Current().FireRate * a.fireRateMul)
}

// CanFire reports whether the rate gate has elapsed at time now
func (a *Arsenal) CanFire(now float64) bool {
	return now-a.lastFire >= a.FireInterval()
}

// Fire produces the projectiles for one shot, or nil when gated
func (a *Arsenal) Fire(now float64, origin, aim Vec3, lifetime float64, ids *IDSeq) []*Projectile {
	if !a.CanFire(now) {
		return nil
	}
	aim = aim.Normalize()
	if aim.LenSq() == 0 {
		return nil
	}
	def := a.Current()
	dirs := SpreadDirections(aim, def.SpreadCount, def.SpreadAngle, a.rng)
	out := make([]*Projectile, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, NewProjectile(ids.Next(), def, origin, d, lifetime))
	}
	a.lastFire = now
	return out
}

// SpreadDirections fans count directions evenly across [-angle/2, +angle/2]
// around the vertical axis, each with a small independent vertical jitter.
// A count below 2 yields the aim direction unchanged.
func SpreadDirections(aim Vec3, count int, angle float64, rng *Rand) []Vec3 {
	if count < 2 {
		return []Vec3{aim}
	}
	dirs := make([]Vec3, 0, count)
	step := angle / float64(count-1)
	for i := 0; i < count; i++ {
		offset := -angle/2 + step*float64(i)
		d := aim.RotateAround(Up, offset)
		if rng != nil {
			if side := d.Cross(Up).Normalize(); side.LenSq() > 0 {
				d = d.RotateAround(side, rng.Range(-SpreadJitter, SpreadJitter))
			}
		}
		dirs = append(dirs, d.Normalize())
	}
	return dirs
}

// SetActive switches weapon; fails for weapons not unlocked and purchased
func (a *Arsenal) SetActive(id WeaponID) bool {
	if _, ok := GetWeaponDef(id); !ok {
		return false
	}
	if !a.IsUnlocked(id) || !a.IsPurchased(id) {
		return false
	}
	a.current = id
	return true
}

// Purchase buys a weapon with coins from the ledger. Nothing is spent on failure.
func (a *Arsenal) Purchase(id WeaponID, ledger *Ledger) bool {
	def, ok := GetWeaponDef(id)
	if !ok || a.IsPurchased(id) || !a.IsUnlocked(id) {
		return false
	}
	if !ledger.SpendCoins(def.PurchaseCost) {
		return false
	}
	a.purchased[id] = true
	return true
}

// UpgradeFireRate applies one multiplicative fire-rate upgrade
func (a *Arsenal) UpgradeFireRate() bool {
	if a.fireRateUpgrades >= MaxFireRateUpgrades {
		return false
	}
	a.fireRateUpgrades++
	a.fireRateMul *= FireRateUpgradeMul
	return true
}

func (a *Arsenal) FireRateMultiplier() float64 { return a.fireRateMul }
func (a *Arsenal) FireRateUpgrades() int       { return a.fireRateUpgrades }

func (a *Arsenal) Bombs() int { return a.bombs }

func (a *Arsenal) AddBomb() { a.bombs++ }

// UseBomb consumes one bomb if available
func (a *Arsenal) UseBomb() bool {
	if a.bombs <= 0 {
		return false
	}
	a.bombs--
	return true
}
