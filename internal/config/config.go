package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TAMING_TICK_RATE.
const EnvPrefix = "TAMING_"

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// TamingServer holds all configuration for the taming server.
type TamingServer struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"` // debug, info, warn, error

	// Simulation
	TickRate   int    `yaml:"tick_rate" env:"TICK_RATE"`     // ticks per second
	SpeciesDir string `yaml:"species_dir" env:"SPECIES_DIR"` // extra species definitions, optional

	// Observability
	MetricsAddress string `yaml:"metrics_address" env:"METRICS_ADDRESS"` // empty = disabled

	// Persistence
	Store       StoreConfig    `yaml:"store" envPrefix:"STORE_"`
	Database    DatabaseConfig `yaml:"database" envPrefix:"DB_"`
	SaveTimeout time.Duration  `yaml:"save_timeout" env:"SAVE_TIMEOUT"`
}

// StoreConfig selects where tamed animals are persisted.
type StoreConfig struct {
	Driver     string `yaml:"driver" env:"DRIVER"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultTamingServer returns TamingServer config with sensible defaults.
func DefaultTamingServer() TamingServer {
	return TamingServer{
		LogLevel:       "info",
		TickRate:       20,
		MetricsAddress: ":9090",
		Store: StoreConfig{
			Driver:     StoreSQLite,
			SQLitePath: "data/taming.db",
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "taming",
			Password: "taming",
			DBName:   "taming",
			SSLMode:  "disable",
		},
		SaveTimeout: 5 * time.Second,
	}
}

// LoadTamingServer loads config from a YAML file, then applies TAMING_*
// environment overrides. If the file doesn't exist, defaults are used.
func LoadTamingServer(path string) (TamingServer, error) {
	cfg := DefaultTamingServer()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	return cfg, nil
}

// Validate reports every invalid value at once.
func (c TamingServer) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate: must be > 0, got %d", c.TickRate))
	}
	if c.SaveTimeout <= 0 {
		errs = append(errs, fmt.Errorf("save_timeout: must be > 0, got %s", c.SaveTimeout))
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			errs = append(errs, errors.New("store.sqlite_path: required for sqlite driver"))
		}
	case StorePostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database: host and dbname required for postgres driver"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Errorf("database.port: out of range: %d", c.Database.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}

	return errors.Join(errs...)
}

// TickInterval returns the duration of one tick.
func (c TamingServer) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(c.TickRate)
}
