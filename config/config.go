// Package config loads application configuration from environment
// variables with sensible defaults for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Telegram Bot
	Telegram TelegramConfig

	// Groq API (AI tutor)
	Groq GroqConfig

	// Redis
	Redis RedisConfig

	// PostgreSQL (optional analytics archive)
	Postgres PostgresConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Background jobs
	Scheduler SchedulerConfig

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// TelegramConfig holds the bot API settings.
type TelegramConfig struct {
	Token         string
	Debug         bool
	UpdateTimeout int
}

// GroqConfig holds the AI tutor settings.
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Disabled switches the bot to in-memory storage, for local
	// development without Redis. State is lost on restart.
	Disabled bool
}

// PostgresConfig holds the optional analytics archive settings. The archive
// is enabled only when Host is set.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
}

// Enabled reports whether the archive should be wired.
func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

// RateLimitConfig bounds how often a user may trigger the tutor call.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// SchedulerConfig controls the background jobs.
type SchedulerConfig struct {
	Enabled bool
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	AddCaller bool
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.App = loadAppConfig()
	cfg.Telegram = loadTelegramConfig()
	cfg.Groq = loadGroqConfig()
	cfg.Redis = loadRedisConfig()
	cfg.Postgres = loadPostgresConfig()
	cfg.RateLimit = loadRateLimitConfig()
	cfg.Scheduler = loadSchedulerConfig()
	cfg.Observability = loadObservabilityConfig()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that the required settings are present.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.RateLimit.MaxAttempts <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_ATTEMPTS must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))
	return AppConfig{
		Name:            getEnv("APP_NAME", "lingua-tutor-hub"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadTelegramConfig() TelegramConfig {
	return TelegramConfig{
		Token:         getEnv("TELEGRAM_BOT_TOKEN", ""),
		Debug:         getEnvBool("TELEGRAM_DEBUG", false),
		UpdateTimeout: getEnvInt("TELEGRAM_UPDATE_TIMEOUT", 30),
	}
}

func loadGroqConfig() GroqConfig {
	return GroqConfig{
		APIKey:      getEnv("GROQ_API_KEY", ""),
		BaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		Temperature: getEnvFloat("GROQ_TEMPERATURE", 0.7),
		MaxTokens:   getEnvInt("GROQ_MAX_TOKENS", 1000),
		Timeout:     getEnvDuration("GROQ_TIMEOUT", 30*time.Second),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnvInt("REDIS_PORT", 6379),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getEnvInt("REDIS_DB", 0),
		PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		Disabled:     getEnvBool("REDIS_DISABLED", false),
	}
}

func loadPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnvInt("POSTGRES_PORT", 5432),
		Database: getEnv("POSTGRES_DB", "lingua"),
		User:     getEnv("POSTGRES_USER", "postgres"),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns: getEnvInt("POSTGRES_MAX_CONNS", 5),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts: getEnvInt("RATE_LIMIT_MAX_ATTEMPTS", 20),
		Window:      getEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second),
	}
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: getEnvBool("SCHEDULER_ENABLED", true),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		AddCaller: getEnvBool("LOG_ADD_CALLER", true),
	}
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
