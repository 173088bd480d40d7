package game

const (
	PlayerRadius    = 1.0
	PlayerMaxShield = 3
	PlayerMaxCore   = 5
)

// PlayerStart is the default eye position of the player
var PlayerStart = Vec3{0, 1.6, 0}

// Player is the stationary defender with a two-tier health pool. The shield
// absorbs hits first and regenerates between waves; the core does not.
type Player struct {
	Position  Vec3
	Radius    float64
	Shield    int
	MaxShield int
	Core      int
	MaxCore   int
	Aim       Vec3
	Firing    bool
}

// NewPlayer creates a player from the tuning config
func NewPlayer(cfg PlayerConfig) *Player {
	p := &Player{
		Position:  cfg.Position,
		Radius:    cfg.Radius,
		MaxShield: cfg.Shield,
		MaxCore:   cfg.Core,
	}
	p.Reset()
	return p
}

// Reset restores both pools and the default aim
func (p *Player) Reset() {
	p.Shield = p.MaxShield
	p.Core = p.MaxCore
	p.Aim = Vec3{0, 0, -1}
	p.Firing = false
}

// TakeDamage applies one unit of damage, shield first. shieldBroken is true
// when this hit emptied the shield; dead when the core reached zero.
func (p *Player) TakeDamage() (shieldBroken, dead bool) {
	if p.Core <= 0 {
		return false, true
	}
	if p.Shield > 0 {
		p.Shield--
		return p.Shield == 0, false
	}
	p.Core--
	return false, p.Core <= 0
}

// RegenerateShield restores one shield unit up to the maximum
func (p *Player) RegenerateShield() {
	if p.Shield < p.MaxShield {
		p.Shield++
	}
}

// RestoreShield refills the shield completely
func (p *Player) RestoreShield() {
	p.Shield = p.MaxShield
}

func (p *Player) Alive() bool { return p.Core > 0 }

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		Shield:    p.Shield,
		MaxShield: p.MaxShield,
		Core:      p.Core,
		MaxCore:   p.MaxCore,
		Aim:       p.Aim,
	}
}
