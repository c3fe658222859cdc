package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	GinMode        string   `yaml:"gin_mode"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type                   string         `yaml:"type"`
	MySQL                  MySQLConfig    `yaml:"mysql"`
	Postgres               PostgresConfig `yaml:"postgres"`
	SQLite                 SQLiteConfig   `yaml:"sqlite"`
	MaxOpenConns           int            `yaml:"max_open_conns"`
	MaxIdleConns           int            `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int            `yaml:"conn_max_lifetime_minutes"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SQLiteConfig contains the SQLite file location (local development only)
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig contains token and password settings
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	APIKey  string `yaml:"api_key"`
	Index   string `yaml:"index"`
}

// RedisConfig contains the token revocation store settings
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig contains login rate limiting settings
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	LoginPerMinute int  `yaml:"login_per_minute"`
	LoginPerHour   int  `yaml:"login_per_hour"`
}

// SchedulerConfig contains background job settings
type SchedulerConfig struct {
	Enabled            bool   `yaml:"enabled"`
	DailyRunTime       string `yaml:"daily_run_time"`
	PaymentDueDays     int    `yaml:"payment_due_days"`
	ContractExpiryDays int    `yaml:"contract_expiry_days"`
}

// CleanupConfig contains alert retention settings
type CleanupConfig struct {
	AlertRetentionDays int `yaml:"alert_retention_days"`
	MaxDeletionCount   int `yaml:"max_deletion_count"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "3001",
			AllowedOrigins: []string{"http://localhost:3000"},
			GinMode:        "release",
		},
		Database: DatabaseConfig{
			Type: "mysql",
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "crm_user",
				Database: "real_estate_crm",
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "crm_user",
				Database: "real_estate_crm",
				SSLMode:  "disable",
			},
			SQLite: SQLiteConfig{
				Path: "crm.db",
			},
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 30,
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
			BcryptCost:    12,
		},
		Search: SearchConfig{
			Meilisearch: MeilisearchConfig{
				Enabled: false,
				Host:    "http://localhost:7700",
				Index:   "properties",
			},
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			LoginPerMinute: 10,
			LoginPerHour:   100,
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			DailyRunTime:       "06:00",
			PaymentDueDays:     5,
			ContractExpiryDays: 30,
		},
		Cleanup: CleanupConfig{
			AlertRetentionDays: 90,
			MaxDeletionCount:   10000,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "text",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overlays environment variables on top of the loaded values
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Database.Type, "DB_TYPE")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Search.Meilisearch.Host, "MEILISEARCH_HOST")
	setString(&c.Search.Meilisearch.APIKey, "MEILISEARCH_KEY")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Logging.Level, "LOG_LEVEL")

	// DB_* apply to whichever server driver is selected
	switch c.Database.Type {
	case "postgres":
		setString(&c.Database.Postgres.Host, "DB_HOST")
		setInt(&c.Database.Postgres.Port, "DB_PORT")
		setString(&c.Database.Postgres.User, "DB_USER")
		setString(&c.Database.Postgres.Password, "DB_PASSWORD")
		setString(&c.Database.Postgres.Database, "DB_NAME")
	case "sqlite":
		setString(&c.Database.SQLite.Path, "DB_NAME")
	default:
		setString(&c.Database.MySQL.Host, "DB_HOST")
		setInt(&c.Database.MySQL.Port, "DB_PORT")
		setString(&c.Database.MySQL.User, "DB_USER")
		setString(&c.Database.MySQL.Password, "DB_PASSWORD")
		setString(&c.Database.MySQL.Database, "DB_NAME")
	}
}

// Validate checks settings that would otherwise fail at first use
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Auth.JWTSecret == "" && c.Server.GinMode != "debug" {
		return fmt.Errorf("auth.jwt_secret is required (set JWT_SECRET)")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("auth.token_ttl_hours must be positive")
	}
	return nil
}

// GetTokenTTL returns the token lifetime as a duration
func (c *AuthConfig) GetTokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// GetConnMaxLifetime returns the pooled connection lifetime as a duration
func (c *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			*dst = n
		}
	}
}
