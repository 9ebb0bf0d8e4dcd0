package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken     string
	ChannelsFile string
	PuzzlesFile  string
	Global       Global
	Database     DatabaseConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Global holds the audit thresholds shared by all moderated chats
type Global struct {
	LurkThresholdDays        int `yaml:"lurk_threshold_days"`
	ProvocationIntervalHours int `yaml:"provocation_interval_hours"`
	AuditCadenceMinutes      int `yaml:"audit_cadence_minutes"`
	RateLimitPerHour         int `yaml:"rate_limit_per_hour"`
	RateLimitPerDay          int `yaml:"rate_limit_per_day"`
	ChallengeTTLMinutes      int `yaml:"challenge_ttl_minutes"`
}

// DefaultGlobal returns the built-in audit thresholds
func DefaultGlobal() Global {
	return Global{
		LurkThresholdDays:        14,
		ProvocationIntervalHours: 48,
		AuditCadenceMinutes:      15,
		RateLimitPerHour:         2,
		RateLimitPerDay:          15,
		ChallengeTTLMinutes:      30,
	}
}

// Validate checks that thresholds are within their allowed ranges
func (g Global) Validate() error {
	checks := []struct {
		name     string
		value    int
		min, max int
	}{
		{"lurk_threshold_days", g.LurkThresholdDays, 1, 365},
		{"provocation_interval_hours", g.ProvocationIntervalHours, 1, 168},
		{"audit_cadence_minutes", g.AuditCadenceMinutes, 5, 1440},
		{"rate_limit_per_hour", g.RateLimitPerHour, 1, 10},
		{"rate_limit_per_day", g.RateLimitPerDay, 1, 100},
		{"challenge_ttl_minutes", g.ChallengeTTLMinutes, 1, 1440},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%s must be between %d and %d, got %d", c.name, c.min, c.max, c.value)
		}
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:     os.Getenv("BOT_TOKEN"),
		ChannelsFile: getEnv("CHANNELS_FILE", "config/channels.yaml"),
		PuzzlesFile:  getEnv("PUZZLES_FILE", "config/puzzles.yaml"),
		Global:       DefaultGlobal(),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "antilurk"),
			User:     getEnv("DB_USER", "antilurk"),
			Password: os.Getenv("DB_PASSWORD"),
		},
	}

	// Threshold overrides from environment
	cfg.Global.LurkThresholdDays = getEnvInt("LURK_THRESHOLD_DAYS", cfg.Global.LurkThresholdDays)
	cfg.Global.ProvocationIntervalHours = getEnvInt("PROVOCATION_INTERVAL_HOURS", cfg.Global.ProvocationIntervalHours)
	cfg.Global.AuditCadenceMinutes = getEnvInt("AUDIT_CADENCE_MINUTES", cfg.Global.AuditCadenceMinutes)
	cfg.Global.RateLimitPerHour = getEnvInt("RATE_LIMIT_PER_HOUR", cfg.Global.RateLimitPerHour)
	cfg.Global.RateLimitPerDay = getEnvInt("RATE_LIMIT_PER_DAY", cfg.Global.RateLimitPerDay)
	cfg.Global.ChallengeTTLMinutes = getEnvInt("CHALLENGE_TTL_MINUTES", cfg.Global.ChallengeTTLMinutes)

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if err := cfg.Global.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
