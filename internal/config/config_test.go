package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/xtding233/refine-backend/internal/pricing"
	"github.com/xtding233/refine-backend/internal/refine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults changed (-want +got):\n%s", diff)
	}
	p, err := cfg.Prices()
	if err != nil {
		t.Fatal(err)
	}
	if p != pricing.Defaults() {
		t.Fatalf("default prices = %+v", p)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
http_addr: ":1111"
server: classic
reload_interval: 30s
simulation: { runs: 250, workers: 8 }
pricing:
  protection_unit: 3000000
  materials:
    armor: { perfect: 5000000 }
  bundles:
    - { id: b10, units: 10, price: 20000000 }
logging: { level: DEBUG }
`)
	t.Setenv("REFINE_HTTP_ADDR", ":2222")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":2222" || cfg.GRPCAddr != ":9090" || cfg.Server != "classic" {
		t.Fatalf("addresses/server not merged: %+v", cfg)
	}
	if cfg.ReloadInterval != 30*time.Second {
		t.Fatalf("reload interval = %v", cfg.ReloadInterval)
	}
	if cfg.Simulation.Runs != 250 || cfg.Simulation.Workers != 8 || cfg.Simulation.MaxAttempts != refine.DefaultMaxAttempts {
		t.Fatalf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Logging.Level != "DEBUG" || !cfg.Logging.ConsoleEnabled {
		t.Fatalf("logging = %+v", cfg.Logging)
	}

	p, err := cfg.Prices()
	if err != nil {
		t.Fatal(err)
	}
	if p.ProtectionUnit != 3_000_000 ||
		p.MaterialPrice(refine.Armor, refine.Perfect) != 5_000_000 ||
		p.MaterialPrice(refine.Armor, refine.Enriched) != pricing.DefaultArmorEnriched ||
		p.MaterialPrice(refine.Weapon, refine.Perfect) != pricing.DefaultWeaponPerfect {
		t.Fatalf("prices = %+v", p)
	}
	if got := cfg.Catalog().Bundles; len(got) != 1 || got[0].Units != 10 {
		t.Fatalf("bundles = %+v", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
simulation: { runs: 0 }
pricing:
  protection_unit: -1
  materials:
    shield: { perfect: 1 }
`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, frag := range []string{"simulation.runs must be >= 1", "unknown equipment category"} {
		if !strings.Contains(err.Error(), frag) {
			t.Fatalf("error %q missing %q", err, frag)
		}
	}
}
