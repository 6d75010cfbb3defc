// Package config loads and saves the orcalc TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all orcalc configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Calculator CalculatorConfig `toml:"calculator"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds the calculator's initial control values and storage
// location.
type GeneralConfig struct {
	DefaultBill   int64  `toml:"default_bill"`
	DefaultWaste  int    `toml:"default_waste"`
	DefaultShifts int    `toml:"default_shifts"`
	DefaultSolar  bool   `toml:"default_solar"`
	DataDir       string `toml:"data_dir,omitempty"`
}

// CalculatorConfig overrides the savings formula constants. Unset fields keep
// the built-in values.
type CalculatorConfig struct {
	HeatBonusMonthly *float64 `toml:"heat_bonus_monthly,omitempty"`
	SolarBonus       *float64 `toml:"solar_bonus,omitempty"`
	FallbackRate     *float64 `toml:"fallback_rate,omitempty"`
	// Rates maps a shift count ("1", "2", "3") to its base rate.
	Rates map[string]float64 `toml:"rates,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	RedisAddr       string `toml:"redis_addr,omitempty"`
	CacheTTLSec     int    `toml:"cache_ttl_sec"`
	LeadRateLimit   int    `toml:"lead_rate_limit"`
	TableServiceURL string `toml:"table_service_url,omitempty"`
	LeadsTable      string `toml:"leads_table,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultBill:   95000,
			DefaultWaste:  10,
			DefaultShifts: 3,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			CacheTTLSec:   300,
			LeadRateLimit: 5,
			LeadsTable:    "leads",
		},
		Appearance: AppearanceConfig{
			Theme: "upthermo",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "orcalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "orcalc")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the directory holding the local database.
func DataDir(cfg Config) string {
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "orcalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "orcalc")
}

// DBPath returns the full path to the SQLite database.
func DBPath(cfg Config) string {
	return filepath.Join(DataDir(cfg), "orcalc.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the local user's config location
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ORCALC_REDIS_ADDR"); v != "" {
		cfg.Server.RedisAddr = v
	}
	if v := os.Getenv("TABLE_SERVICE_URL"); v != "" {
		cfg.Server.TableServiceURL = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // see LoadFrom
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
