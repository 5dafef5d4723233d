// Package config loads tracker configuration from an optional YAML file,
// TRACKER_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. TRACKER_STORE_BACKEND.
const EnvPrefix = "TRACKER"

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendNeo4j    = "neo4j"
)

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	// DSN is the SQLite file path or a PostgreSQL connection string.
	DSN string `mapstructure:"dsn"`
}

// PostgresConfig is used to build a DSN when store.dsn is empty.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Log      LogConfig      `mapstructure:"log"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "localhost:3000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.dsn", "")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "tracker")
	v.SetDefault("postgres.password", "tracker")
	v.SetDefault("postgres.dbname", "project_tracker")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "")

	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads cfgFile into v. With an empty cfgFile it searches for
// tracker.yaml in the working directory and $HOME/.project-tracker; a
// missing file in that case is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigName("tracker")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.project-tracker")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)

	switch cfg.Store.Backend {
	case BackendSQLite:
		if cfg.Store.DSN == "" {
			cfg.Store.DSN = "project_tracker.db"
		}
	case BackendPostgres:
		if cfg.Store.DSN == "" {
			cfg.Store.DSN = cfg.Postgres.DSN()
		}
	case BackendNeo4j:
		if cfg.Neo4j.URI == "" {
			return nil, errors.New("neo4j.uri is required for the neo4j backend")
		}
	default:
		return nil, fmt.Errorf("unsupported store backend: %q", cfg.Store.Backend)
	}

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	return &cfg, nil
}

// DSN builds a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}
