package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"vocabsheet/internal/backoff"
	"vocabsheet/internal/repository"

	"github.com/joho/godotenv"
)

// Table backends
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Backend            string
	SheetURL           string
	WorksheetName      string
	DueSheetName       string
	ServiceAccountFile string
	Database           DatabaseConfig
	Retry              backoff.Policy
	Lookup             LookupConfig
	Cache              CacheConfig
	Bot                BotConfig
	LogLevel           string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// LookupConfig holds external lookup endpoints
type LookupConfig struct {
	DictionaryURL   string
	DatamuseURL     string
	TranslateURL    string
	TranslateTarget string
	RatePerSecond   float64
	Timeout         time.Duration
}

// CacheConfig holds enrichment cache settings
type CacheConfig struct {
	Enabled bool
	Dir     string
}

// BotConfig holds Telegram bot settings
type BotConfig struct {
	Token    string
	Password string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		Backend:            strings.ToLower(getEnv("TABLE_BACKEND", BackendSheets)),
		SheetURL:           os.Getenv("SHEET_URL"),
		WorksheetName:      getEnv("WORKSHEET_NAME", "Sheet1"),
		DueSheetName:       getEnv("DUE_SHEET_NAME", "Due"),
		ServiceAccountFile: getEnv("SERVICE_ACCOUNT_FILE", "service_account.json"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "vocabsheet"),
			User:     getEnv("DB_USER", "vocabsheet"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Retry: backoff.Policy{
			MaxTries:  getEnvInt("RETRY_MAX_TRIES", 5),
			BaseDelay: getEnvDuration("RETRY_BASE_DELAY", 600*time.Millisecond),
			Factor:    getEnvFloat("RETRY_FACTOR", 2.0),
			Jitter:    getEnvDuration("RETRY_JITTER", 200*time.Millisecond),
		},
		Lookup: LookupConfig{
			DictionaryURL:   getEnv("DICTIONARY_API_URL", "https://api.dictionaryapi.dev/api/v2/entries/en"),
			DatamuseURL:     getEnv("DATAMUSE_API_URL", "https://api.datamuse.com/words"),
			TranslateURL:    getEnv("TRANSLATE_API_URL", "https://translate.googleapis.com/translate_a/single"),
			TranslateTarget: getEnv("TRANSLATE_TARGET", "zh-TW"),
			RatePerSecond:   getEnvFloat("LOOKUP_RATE_PER_SEC", 5),
			Timeout:         getEnvDuration("LOOKUP_TIMEOUT", 15*time.Second),
		},
		Cache: CacheConfig{
			Enabled: getEnvBool("CACHE_ENABLED", false),
			Dir:     getEnv("CACHE_DIR", "data/cache"),
		},
		Bot: BotConfig{
			Token:    os.Getenv("BOT_TOKEN"),
			Password: os.Getenv("BOT_PASSWORD"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Validate required fields
	switch cfg.Backend {
	case BackendSheets:
		if cfg.SheetURL == "" {
			return nil, fmt.Errorf("SHEET_URL is required: %w", repository.ErrMissingDocument)
		}
	case BackendPostgres:
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return nil, fmt.Errorf("unknown TABLE_BACKEND %q", cfg.Backend)
	}

	if cfg.DueSheetName == cfg.WorksheetName {
		return nil, fmt.Errorf("DUE_SHEET_NAME must differ from WORKSHEET_NAME")
	}

	return cfg, nil
}

// RequireBot validates settings needed only by the Telegram front end
func (c *Config) RequireBot() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Bot.Password == "" {
		return fmt.Errorf("BOT_PASSWORD is required")
	}
	return nil
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

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
