package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Extractor providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Session stores
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Extractor  ExtractorConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Session    SessionConfig
	Redis      RedisConfig
	PostgreSQL PostgreSQLConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
	Dialogue   DialogueConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins []string
	StaticDir      string // optional frontend directory, empty disables static serving
}

// ExtractorConfig selects and bounds the natural-language extractor
type ExtractorConfig struct {
	Provider string
	Timeout  time.Duration // per attempt
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON string for extra_body (e.g., {"chat_template_kwargs":{"thinking":true}})
	Enabled         bool
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	Enabled     bool
}

// SessionConfig controls the server-side session store
type SessionConfig struct {
	Store string
	TTL   time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// PostgreSQLConfig holds the confirmed-fill log database. An empty DSN disables the log.
type PostgreSQLConfig struct {
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
}

// RateLimitConfig limits turns per client IP
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// DialogueConfig tunes the dialogue engine
type DialogueConfig struct {
	ExtraConfirmWords []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("PORT", 3000),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			StaticDir:      getEnv("STATIC_DIR", ""),
		},
		Extractor: ExtractorConfig{
			Provider: strings.ToLower(getEnv("EXTRACTOR_PROVIDER", ProviderOpenAI)),
			Timeout:  getEnvAsDuration("EXTRACTOR_TIMEOUT", 20*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         strings.TrimRight(getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Temperature: getEnvAsFloat("GEMINI_TEMPERATURE", 0.2),
			Enabled:     getEnv("GEMINI_API_KEY", "") != "",
		},
		Session: SessionConfig{
			Store: strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
			TTL:   getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "skybridge:session:"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Dialogue: DialogueConfig{
			ExtraConfirmWords: getEnvAsList("CONFIRM_EXTRA_WORDS", nil),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	switch c.Extractor.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown EXTRACTOR_PROVIDER %q (want %s or %s)", c.Extractor.Provider, ProviderOpenAI, ProviderGemini)
	}
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q (want %s or %s)", c.Session.Store, StoreMemory, StoreRedis)
	}
	if c.Extractor.Timeout <= 0 {
		return fmt.Errorf("EXTRACTOR_TIMEOUT must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// ExtractorEnabled reports whether the selected provider has credentials
func (c *Config) ExtractorEnabled() bool {
	switch c.Extractor.Provider {
	case ProviderGemini:
		return c.Gemini.Enabled
	default:
		return c.OpenAI.Enabled
	}
}

// FillLogEnabled reports whether confirmed fills are written to PostgreSQL
func (c *Config) FillLogEnabled() bool {
	return c.PostgreSQL.DSN != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("15s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
