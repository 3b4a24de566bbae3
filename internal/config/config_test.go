package config

import (
	"os"
	"testing"
	"time"

	"vocabsheet/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"0", false},
		{"no", false},
		{"", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.expected, getEnvBool("TEST_BOOL", false))
		})
	}
}

func TestGetEnvNumbers(t *testing.T) {
	t.Setenv("TEST_INT", "7")
	t.Setenv("TEST_FLOAT", "1.5")
	t.Setenv("TEST_DURATION", "250ms")
	t.Setenv("TEST_BAD_INT", "seven")

	assert.Equal(t, 7, getEnvInt("TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("TEST_BAD_INT", 1))
	assert.Equal(t, 1.5, getEnvFloat("TEST_FLOAT", 2))
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION_MISSING", time.Second))
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"TABLE_BACKEND", "SHEET_URL", "WORKSHEET_NAME", "DUE_SHEET_NAME", "SERVICE_ACCOUNT_FILE",
		"DB_PASSWORD", "CACHE_ENABLED", "CACHE_DIR", "RETRY_MAX_TRIES",
		"RETRY_BASE_DELAY", "RETRY_FACTOR", "RETRY_JITTER", "BOT_TOKEN", "BOT_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingSheetURL(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, repository.ErrMissingDocument)
	assert.Contains(t, err.Error(), "SHEET_URL")
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHEET_URL", "https://docs.google.com/spreadsheets/d/abc/edit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSheets, cfg.Backend)
	assert.Equal(t, "Sheet1", cfg.WorksheetName)
	assert.Equal(t, "Due", cfg.DueSheetName)
	assert.Equal(t, "service_account.json", cfg.ServiceAccountFile)
	assert.Equal(t, 5, cfg.Retry.MaxTries)
	assert.Equal(t, 600*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 2.0, cfg.Retry.Factor)
	assert.Equal(t, 200*time.Millisecond, cfg.Retry.Jitter)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "data/cache", cfg.Cache.Dir)
	assert.Equal(t, "zh-TW", cfg.Lookup.TranslateTarget)
}

func TestLoad_PostgresBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("TABLE_BACKEND", "postgres")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	t.Setenv("DB_PASSWORD", "secret")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "vocabsheet", cfg.Database.Name)
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("TABLE_BACKEND", "excel")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "excel")
}

func TestLoad_DueSheetMustDiffer(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHEET_URL", "abc")
	t.Setenv("WORKSHEET_NAME", "Words")
	t.Setenv("DUE_SHEET_NAME", "Words")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DUE_SHEET_NAME")
}

func TestConfig_RequireBot(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireBot()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")

	cfg.Bot.Token = "token"
	err = cfg.RequireBot()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_PASSWORD")

	cfg.Bot.Password = "secret"
	assert.NoError(t, cfg.RequireBot())
}
