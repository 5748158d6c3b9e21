package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config controls runtime behavior for the tracker.
type Config struct {
	DataDir    string `env:"OAKDEX_DATA_DIR"`
	CatalogDir string `env:"OAKDEX_CATALOG_DIR"`
	LogPath    string `env:"OAKDEX_LOG"`
	Version    string `env:"OAKDEX_VERSION"`
	CryBaseURL string `env:"OAKDEX_CRY_URL"`
	CryPlayer  string `env:"OAKDEX_CRY_PLAYER"`
	Mute       bool   `env:"OAKDEX_MUTE"`
	ASCIIOnly  bool   `env:"OAKDEX_ASCII"`
	Debug      bool   `env:"OAKDEX_DEBUG"`
	UI         UIConfig
}

type UIConfig struct {
	MotionLevel string `env:"OAKDEX_MOTION"`
}

func DefaultConfig() Config {
	return Config{
		CatalogDir: "data",
		UI: UIConfig{
			MotionLevel: "full",
		},
	}
}

// FromEnv layers environment overrides over the defaults. Flags applied by
// the caller afterwards win over both.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}

	if c.CatalogDir == "" {
		c.CatalogDir = "data"
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "oakdex")
	}

	return nil
}
