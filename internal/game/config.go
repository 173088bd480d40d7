package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTickRate = 60
	DefaultBound    = 100.0
	DefaultCoinRate = 0.5
)

// PlayerConfig tunes the defender
type PlayerConfig struct {
	Shield   int     `yaml:"shield"`
	Core     int     `yaml:"core"`
	Radius   float64 `yaml:"radius"`
	Position Vec3    `yaml:"position"`
}

// Config holds the gameplay tuning for a run
type Config struct {
	TickRate           int          `yaml:"tick_rate"`
	CoinRate           float64      `yaml:"coin_rate"`
	ComboPolicy        ComboPolicy  `yaml:"combo_reset"`
	Bound              float64      `yaml:"bound"`
	ProjectileLifetime float64      `yaml:"projectile_lifetime"`
	RegenShieldOnWave  bool         `yaml:"regen_shield_on_wave"`
	Seed               uint64       `yaml:"seed"` // 0 = random
	Player             PlayerConfig `yaml:"player"`
}

// DefaultConfig returns the stock tuning
func DefaultConfig() Config {
	return Config{
		TickRate:           DefaultTickRate,
		CoinRate:           DefaultCoinRate,
		ComboPolicy:        ComboNever,
		Bound:              DefaultBound,
		ProjectileLifetime: ProjectileLifetime,
		RegenShieldOnWave:  true,
		Player: PlayerConfig{
			Shield:   PlayerMaxShield,
			Core:     PlayerMaxCore,
			Radius:   PlayerRadius,
			Position: PlayerStart,
		},
	}
}

// LoadConfig reads a YAML tuning file over the defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Validate rejects tuning the loop cannot run with
func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0:
		return fmt.Errorf("config: tick_rate must be positive, got %d", c.TickRate)
	case c.CoinRate < 0:
		return fmt.Errorf("config: coin_rate must not be negative, got %v", c.CoinRate)
	case c.Bound <= 0:
		return fmt.Errorf("config: bound must be positive, got %v", c.Bound)
	case c.ProjectileLifetime <= 0:
		return fmt.Errorf("config: projectile_lifetime must be positive, got %v", c.ProjectileLifetime)
	case c.Player.Core <= 0 || c.Player.Shield < 0 || c.Player.Radius <= 0:
		return fmt.Errorf("config: invalid player pools or radius")
	}
	switch c.ComboPolicy {
	case ComboNever, ComboOnDamage:
	default:
		return fmt.Errorf("config: unknown combo_reset %q", c.ComboPolicy)
	}
	return nil
}

// Marshal renders the config as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
