// Package daemon holds process-level configuration and logging setup
// shared by the CLI and the API server.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the full configuration, read from $BEAUTYBOOST_HOME/config.toml.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Auth    AuthConfig    `toml:"auth"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Catalog CatalogConfig `toml:"catalog"`
	Metrics MetricsConfig `toml:"metrics"`
	Log     LogConfig     `toml:"log"`
}

type APIConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	CORSOrigin string `toml:"cors_origin"`
}

// Addr returns host:port for net/http.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type StorageConfig struct {
	Backend string      `toml:"backend"` // sqlite | memory | redis
	Dir     string      `toml:"dir"`     // sqlite data dir; empty = <home>/data
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type AuthConfig struct {
	// VerifyPasswords enables bcrypt password checks. Off by default:
	// the demo directory accepts any non-empty password.
	VerifyPasswords bool   `toml:"verify_passwords"`
	BcryptCost      int    `toml:"bcrypt_cost"`
	TokenSecret     string `toml:"token_secret"`
	TokenTTL        string `toml:"token_ttl"`
}

// TokenTTLDuration parses TokenTTL, falling back to 24h.
func (c AuthConfig) TokenTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

type LedgerConfig struct {
	RewardValidityDays int  `toml:"reward_validity_days"`
	SeedDemo           bool `toml:"seed_demo"`
}

type CatalogConfig struct {
	Path string `toml:"path"` // empty = embedded catalog
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug | info | warn | error
	Format string `toml:"format"` // text | json
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:       "127.0.0.1",
			Port:       8787,
			CORSOrigin: "*",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Redis: RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "beautyboost:",
			},
		},
		Auth: AuthConfig{
			BcryptCost: 10,
			TokenTTL:   "24h",
		},
		Ledger: LedgerConfig{
			RewardValidityDays: 90,
			SeedDemo:           true,
		},
		Metrics: MetricsConfig{Enabled: true},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ─── Paths ──────────────────────────────────────────────────────────────────

// Home returns $BEAUTYBOOST_HOME, or ~/.beautyboost.
func Home() string {
	if h := os.Getenv("BEAUTYBOOST_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".beautyboost"
	}
	return filepath.Join(home, ".beautyboost")
}

// ConfigPath returns the config file location inside home.
func ConfigPath(home string) string {
	return filepath.Join(home, "config.toml")
}

// DataDir returns the sqlite data directory.
func (c Config) DataDir(home string) string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(home, "data")
}

// ─── Loading ────────────────────────────────────────────────────────────────

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped; variables already set are not overwritten.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads config.toml from home over DefaultConfig, then applies
// BEAUTYBOOST_* environment overrides. A missing file is not an error.
func Load(home string) (Config, error) {
	cfg := DefaultConfig()

	path := ConfigPath(home)
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to home/config.toml, creating home if needed.
func Save(home string, cfg Config) error {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(ConfigPath(home), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BEAUTYBOOST_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("BEAUTYBOOST_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("BEAUTYBOOST_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("BEAUTYBOOST_REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := os.Getenv("BEAUTYBOOST_TOKEN_SECRET"); v != "" {
		c.Auth.TokenSecret = v
	}
	if v := os.Getenv("BEAUTYBOOST_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BEAUTYBOOST_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BEAUTYBOOST_API_PORT: %w", err)
		}
		c.API.Port = port
	}
	if v := os.Getenv("BEAUTYBOOST_VERIFY_PASSWORDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BEAUTYBOOST_VERIFY_PASSWORDS: %w", err)
		}
		c.Auth.VerifyPasswords = b
	}
	return nil
}

// Validate rejects configurations the services cannot run with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "memory", "redis":
	default:
		return fmt.Errorf("storage.backend %q: want sqlite, memory or redis", c.Storage.Backend)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Ledger.RewardValidityDays <= 0 {
		return fmt.Errorf("ledger.reward_validity_days must be positive, got %d", c.Ledger.RewardValidityDays)
	}
	if _, err := time.ParseDuration(c.Auth.TokenTTL); err != nil {
		return fmt.Errorf("auth.token_ttl: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
