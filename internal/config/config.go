// Package config resolves console settings from .env files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvFileName = "catadmin.env"
	envDirKey   = "CATADMIN_CONFIG_DIR"
)

type Config struct {
	APIRoot       string        `env:"CATADMIN_API_ROOT" envDefault:"http://localhost:8080/api"`
	TunnelHeader  string        `env:"CATADMIN_TUNNEL_HEADER" envDefault:"ngrok-skip-browser-warning"`
	ConfigDir     string        `env:"CATADMIN_CONFIG_DIR"`
	Timeout       time.Duration `env:"CATADMIN_TIMEOUT" envDefault:"30s"`
	RedirectDelay time.Duration `env:"CATADMIN_REDIRECT_DELAY" envDefault:"2s"`
	PageSize      int           `env:"CATADMIN_PAGE_SIZE" envDefault:"10"`
	Format        string        `env:"CATADMIN_FORMAT" envDefault:"json"`
	LogLevel      string        `env:"CATADMIN_LOG_LEVEL" envDefault:"info"`
	// LogOutput is file, stderr or none.
	LogOutput string `env:"CATADMIN_LOG_OUTPUT" envDefault:"file"`
}

// Load reads ./.env and <config dir>/catadmin.env (neither overrides a
// variable already set) and parses the environment into a Config.
func Load() (Config, error) {
	if err := loadIfExists(".env"); err != nil {
		return Config{}, err
	}
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	if err := loadIfExists(filepath.Join(dir, EnvFileName)); err != nil {
		return Config{}, err
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if strings.TrimSpace(cfg.ConfigDir) == "" {
		cfg.ConfigDir = dir
	}
	return cfg.normalized()
}

func (c Config) normalized() (Config, error) {
	c.APIRoot = strings.TrimRight(strings.TrimSpace(c.APIRoot), "/")
	if c.APIRoot == "" {
		return c, errors.New("config: CATADMIN_API_ROOT is empty")
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.RedirectDelay < 0 {
		c.RedirectDelay = 0
	}
	switch c.LogOutput {
	case "file", "stderr", "none":
	default:
		return c, fmt.Errorf("config: invalid CATADMIN_LOG_OUTPUT %q (want file|stderr|none)", c.LogOutput)
	}
	return c, nil
}

// Dir is the console's config directory: CATADMIN_CONFIG_DIR, else
// ~/.catadmin.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(envDirKey)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".catadmin"), nil
}

func (c Config) LogDir() string { return filepath.Join(c.ConfigDir, "logs") }

func loadIfExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}
