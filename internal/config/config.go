package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/refine-backend/internal/logger"
	"github.com/xtding233/refine-backend/internal/pricing"
	"github.com/xtding233/refine-backend/internal/refine"
)

const (
	httpAddrEnvName = "REFINE_HTTP_ADDR"
	grpcAddrEnvName = "REFINE_GRPC_ADDR"
	tableDirEnvName = "REFINE_TABLE_DIR"
	serverEnvName   = "REFINE_SERVER"
)

// Config is the service configuration file.
type Config struct {
	HTTPAddr       string        `yaml:"http_addr"`
	GRPCAddr       string        `yaml:"grpc_addr"`
	TableDir       string        `yaml:"table_dir"`
	Server         string        `yaml:"server"`
	ReloadInterval time.Duration `yaml:"reload_interval"`

	Simulation Simulation    `yaml:"simulation"`
	Pricing    Pricing       `yaml:"pricing"`
	Logging    logger.Config `yaml:"logging"`
}

type Simulation struct {
	Runs        int `yaml:"runs"`
	Workers     int `yaml:"workers"`
	MaxAttempts int `yaml:"max_attempts"`
}

// Pricing mirrors pricing.Prices in YAML form; materials are keyed by
// equipment then material name.
type Pricing struct {
	ProtectionUnit int64                       `yaml:"protection_unit"`
	Materials      map[string]map[string]int64 `yaml:"materials"`
	TaxRate        float64                     `yaml:"tax_rate"`
	Bundles        []pricing.Bundle            `yaml:"bundles"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	def := pricing.Defaults()
	return Config{
		HTTPAddr:       ":8080",
		GRPCAddr:       ":9090",
		TableDir:       "./configs",
		ReloadInterval: 5 * time.Second,
		Simulation: Simulation{
			Runs:        refine.DefaultRuns,
			Workers:     1,
			MaxAttempts: refine.DefaultMaxAttempts,
		},
		Pricing: Pricing{
			ProtectionUnit: def.ProtectionUnit,
			Materials: map[string]map[string]int64{
				"weapon": {"enriched": def.Materials[refine.Weapon][refine.Enriched], "perfect": def.Materials[refine.Weapon][refine.Perfect]},
				"armor":  {"enriched": def.Materials[refine.Armor][refine.Enriched], "perfect": def.Materials[refine.Armor][refine.Perfect]},
			},
		},
		Logging: logger.DefaultConfig(),
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg = cfg.applyEnv()
	cfg.Logging = cfg.Logging.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) applyEnv() Config {
	if v := os.Getenv(httpAddrEnvName); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv(grpcAddrEnvName); v != "" {
		c.GRPCAddr = v
	}
	if v := os.Getenv(tableDirEnvName); v != "" {
		c.TableDir = v
	}
	if v := os.Getenv(serverEnvName); v != "" {
		c.Server = v
	}
	return c
}

// Validate checks semantic constraints.
func (c Config) Validate() error {
	var errs []string
	if c.Simulation.Runs <= 0 {
		errs = append(errs, "simulation.runs must be >= 1")
	}
	if c.Simulation.Workers < 0 {
		errs = append(errs, "simulation.workers must be >= 0")
	}
	if c.Simulation.MaxAttempts < 0 {
		errs = append(errs, "simulation.max_attempts must be >= 0")
	}
	if c.Pricing.TaxRate < 0 {
		errs = append(errs, "pricing.tax_rate must be >= 0")
	}
	if _, err := c.Prices(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Prices converts the pricing section. Missing materials keep their defaults.
func (c Config) Prices() (pricing.Prices, error) {
	p := pricing.Defaults()
	p.ProtectionUnit = c.Pricing.ProtectionUnit
	for equip, row := range c.Pricing.Materials {
		cat, err := refine.ParseCategory(equip)
		if err != nil {
			return pricing.Prices{}, fmt.Errorf("pricing.materials: %w", err)
		}
		for name, v := range row {
			m, err := refine.ParseMaterial(name)
			if err != nil {
				return pricing.Prices{}, fmt.Errorf("pricing.materials.%s: %w", equip, err)
			}
			p.Materials[cat][m] = v
		}
	}
	if err := p.Validate(); err != nil {
		return pricing.Prices{}, fmt.Errorf("pricing: %w", err)
	}
	return p, nil
}

// Catalog returns the protection bundle catalog.
func (c Config) Catalog() pricing.Catalog {
	return pricing.Catalog{
		TaxRate: c.Pricing.TaxRate,
		Bundles: append([]pricing.Bundle(nil), c.Pricing.Bundles...),
	}
}
