package game

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte(`
coin_rate: 0.7
combo_reset: on_damage
seed: 99
player:
  core: 3
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.CoinRate != 0.7 || cfg.ComboPolicy != ComboOnDamage || cfg.Seed != 99 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Player.Core != 3 {
		t.Errorf("expected core 3, got %d", cfg.Player.Core)
	}
	if cfg.Player.Shield != PlayerMaxShield || cfg.Player.Position != PlayerStart {
		t.Errorf("unset player fields should keep defaults, got %+v", cfg.Player)
	}
	if cfg.TickRate != DefaultTickRate || cfg.Bound != DefaultBound {
		t.Error("unset fields should keep defaults")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"combo.yaml":  "combo_reset: sometimes\n",
		"tick.yaml":   "tick_rate: 0\n",
		"syntax.yaml": "coin_rate: [oops\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CoinRate = 0.25
	out, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatal(err)
	}
	back, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if back != cfg {
		t.Errorf("expected %+v, got %+v", cfg, back)
	}
}
