// Package config loads the YAML configuration of bruhsty and opens the database connections
// and the logger it describes.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/bruhsty/bruhsty/persistence/sqlengine"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Adapters for PostgreSQL.
const (
	AdapterPGX  = "pgx"
	AdapterSQL  = "sql"
	AdapterSQLX = "sqlx"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config models bruhsty.yml.
type Config struct {
	Env      string    `yaml:"env"`
	Log      Log       `yaml:"log"`
	Database Database  `yaml:"database"`
	Channels []Channel `yaml:"channels"`
}

// Channel is a Telegram channel open to the subscribers of one level.
type Channel struct {
	ID         int64  `yaml:"id"`
	InviteLink string `yaml:"invite_link"`
	LevelID    int64  `yaml:"level_id"`
}

// Log selects the level and the handler format of the logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Database describes the database connection.
// Path is only used by the sqlite driver, the remaining fields only by postgres.
type Database struct {
	Driver   string `yaml:"driver"`
	Adapter  string `yaml:"adapter"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Path     string `yaml:"path"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// Default returns the configuration used for values the file leaves out.
func Default() Config {
	return Config{
		Env: "dev",
		Log: Log{Level: "info", Format: "text"},
		Database: Database{
			Driver:   DriverSQLite,
			Adapter:  AdapterPGX,
			Host:     "localhost",
			Port:     5432,
			SSLMode:  "disable",
			Path:     "bruhsty.db",
			MaxConns: 8,
			MinConns: 2,
		},
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found", path)
		}

		return nil, err
	}

	return FromYAML(data)
}

// FromYAML decodes data over Default and validates the result.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports the first problem of the configuration.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return fmt.Errorf("%w: log.level must be one of debug, info, warn, error", ErrInvalidConfig)
	}

	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		return fmt.Errorf("%w: log.format must be text or json", ErrInvalidConfig)
	}

	db := c.Database
	switch db.Driver {
	case DriverSQLite:
		if db.Path == "" {
			return fmt.Errorf("%w: database.path is required for sqlite", ErrInvalidConfig)
		}

	case DriverPostgres:
		if !slices.Contains([]string{AdapterPGX, AdapterSQL, AdapterSQLX}, db.Adapter) {
			return fmt.Errorf("%w: database.adapter must be one of pgx, sql, sqlx", ErrInvalidConfig)
		}
		if db.Host == "" {
			return fmt.Errorf("%w: database.host is required for postgres", ErrInvalidConfig)
		}
		if db.Port <= 0 || db.Port > 65535 {
			return fmt.Errorf("%w: database.port %d is out of range", ErrInvalidConfig, db.Port)
		}
		if db.Database == "" {
			return fmt.Errorf("%w: database.database is required for postgres", ErrInvalidConfig)
		}
		if db.MinConns < 0 || db.MaxConns < db.MinConns {
			return fmt.Errorf("%w: database.max_conns must not be below database.min_conns", ErrInvalidConfig)
		}

	default:
		return fmt.Errorf("%w: database.driver must be postgres or sqlite", ErrInvalidConfig)
	}

	seen := make(map[int64]struct{}, len(c.Channels))
	for i, channel := range c.Channels {
		if _, ok := seen[channel.ID]; ok {
			return fmt.Errorf("%w: channels[%d].id %d is not unique", ErrInvalidConfig, i, channel.ID)
		}
		seen[channel.ID] = struct{}{}

		if channel.InviteLink == "" {
			return fmt.Errorf("%w: channels[%d].invite_link is required", ErrInvalidConfig, i)
		}
	}

	return nil
}

// Dialect returns the SQL dialect of the configured driver.
func (d Database) Dialect() sqlengine.Dialect {
	if d.Driver == DriverSQLite {
		return sqlengine.DialectSQLite
	}

	return sqlengine.DialectPostgres
}
