/*
Package config loads the server configuration file.

PURPOSE:
  A single optional YAML file tunes deployment-level knobs: listen port,
  database path, the proprietor's display name, and overrides for the
  follower-income table and the DM template pool. Everything has a
  default, so running with no file at all is valid.

PRECEDENCE:
  defaults < config file < command-line flags. Flags are applied by
  cmd/server after Load returns.

FILE FORMAT (config.yaml):
  port: 8080
  db: life.db
  proprietor: 사장님
  income_tiers:
    - max_followers: 1000
      min: 0
      max: 0
    - max_followers: -1      # open-ended top tier
      min: 3000000
      max: 5000000
  dm_templates:
    - from: "@regular_kim"
      message: "마카롱 10개 주문할게요!"

SEE ALSO:
  - cmd/server/main.go: flag parsing and startup
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warp/life-engine/social"
	"github.com/warp/life-engine/state"
)

// DefaultPath is where Load looks when no -config flag is given.
const DefaultPath = "config.yaml"

// TierSpec is one income_tiers entry. MaxFollowers -1 marks the
// open-ended top tier.
type TierSpec struct {
	MaxFollowers int64 `yaml:"max_followers"`
	Min          int64 `yaml:"min"`
	Max          int64 `yaml:"max"`
}

// Config models the YAML file plus computed defaults.
type Config struct {
	Port        int                 `yaml:"port"`
	DBPath      string              `yaml:"db"`
	Proprietor  string              `yaml:"proprietor"`
	IncomeTiers []TierSpec          `yaml:"income_tiers"`
	DMTemplates []social.DMTemplate `yaml:"dm_templates"`
}

// Load reads path, tolerating a missing file (defaults apply). An
// unreadable or invalid file is an error: a half-applied config is
// worse than no config.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:       8080,
		DBPath:     "life.db",
		Proprietor: "사장님",
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.DBPath == "" {
		c.DBPath = "life.db"
	}
	if c.Proprietor == "" {
		c.Proprietor = "사장님"
	}
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	for i, t := range c.IncomeTiers {
		if t.Min < 0 || t.Max < t.Min {
			return fmt.Errorf("income_tiers[%d]: need 0 <= min <= max", i)
		}
		if t.MaxFollowers < 0 && t.MaxFollowers != state.UnboundedTier {
			return fmt.Errorf("income_tiers[%d]: max_followers must be positive or -1", i)
		}
		if i == len(c.IncomeTiers)-1 && t.MaxFollowers != state.UnboundedTier {
			return fmt.Errorf("income_tiers: last tier must have max_followers -1")
		}
	}
	for i, tpl := range c.DMTemplates {
		if tpl.From == "" || tpl.Message == "" {
			return fmt.Errorf("dm_templates[%d]: from and message are required", i)
		}
	}
	return nil
}

// Tiers converts the override table, or returns the stock one when the
// file omits it.
func (c *Config) Tiers() []state.IncomeTier {
	if len(c.IncomeTiers) == 0 {
		return state.DefaultIncomeTiers()
	}
	tiers := make([]state.IncomeTier, len(c.IncomeTiers))
	for i, t := range c.IncomeTiers {
		tiers[i] = state.IncomeTier{MaxFollowers: t.MaxFollowers, Min: t.Min, Max: t.Max}
	}
	return tiers
}

// Templates returns the DM pool, falling back to the stock one.
func (c *Config) Templates() []social.DMTemplate {
	if len(c.DMTemplates) == 0 {
		return social.DefaultDMTemplates()
	}
	return c.DMTemplates
}
