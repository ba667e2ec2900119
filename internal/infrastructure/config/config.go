package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config is the merged configuration of the server and the CLI.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	User     UserConfig     `mapstructure:"user"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	HTTPPort int    `mapstructure:"http_port"`
	// Migrate creates the schema before the server starts listening.
	Migrate bool `mapstructure:"migrate"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	LogSQL   bool   `mapstructure:"log_sql"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// StoreConfig selects where the CLI keeps the course tree.
type StoreConfig struct {
	Mode      string           `mapstructure:"mode"`
	RemoteURL string           `mapstructure:"remote_url"`
	Local     LocalStoreConfig `mapstructure:"local"`
}

type LocalStoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UserConfig identifies the session user.
type UserConfig struct {
	ID string `mapstructure:"id"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	StoreLocal  = "local"
	StoreRemote = "remote"

	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Load merges defaults, an optional .env file, the environment and bound flags.
// Environment keys use underscores for dots, e.g. STORE_LOCAL_BACKEND.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.migrate", false)

	viper.SetDefault("database.driver", DriverPostgres)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "gradebook")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.path", "gradebook.db")
	viper.SetDefault("database.log_sql", false)
	viper.SetDefault("database.max_conns", 10)

	viper.SetDefault("store.mode", StoreLocal)
	viper.SetDefault("store.remote_url", "http://localhost:8080")
	viper.SetDefault("store.local.backend", BackendSQLite)
	viper.SetDefault("store.local.path", "gradebook-local.db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("user.id", "local")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver() {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch strings.ToLower(c.Store.Mode) {
	case StoreLocal:
		switch strings.ToLower(c.Store.Local.Backend) {
		case BackendSQLite, BackendRedis:
		default:
			return fmt.Errorf("unsupported local store backend %q", c.Store.Local.Backend)
		}
	case StoreRemote:
		if _, err := url.ParseRequestURI(c.Store.RemoteURL); err != nil {
			return fmt.Errorf("invalid store.remote_url: %w", err)
		}
	default:
		return fmt.Errorf("unsupported store mode %q", c.Store.Mode)
	}
	return nil
}

// DatabaseDriver returns the normalized database/sql driver name.
func (c *Config) DatabaseDriver() string {
	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if driver == "sqlite" {
		return DriverSQLite
	}
	if driver == "" || driver == "postgresql" {
		return DriverPostgres
	}
	return driver
}

// DatabaseURL returns the connection string for the configured driver.
func (c *Config) DatabaseURL() string {
	if c.DatabaseDriver() == DriverSQLite {
		return SQLiteDSN(c.Database.Path)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SQLiteDSN builds a go-sqlite3 DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "?") {
			return path + "&_fk=1"
		}
		return path + "?_fk=1"
	}
	return "file:" + path + "?_fk=1"
}
