package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "prism", cfg.DynamoDBTable)
	assert.Equal(t, "NicknameIndex", cfg.IndexName)
	assert.Equal(t, "prism-events", cfg.EventBusName)
	assert.Equal(t, "dynamodb", cfg.StorageBackend)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 5, cfg.MinimumResponses)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, 5, cfg.RateLimitLinkGeneration)
	assert.Equal(t, 10, cfg.RateLimitVoting)
	assert.Equal(t, 30, cfg.RateLimitAPI)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("MINIMUM_RESPONSES", "10")
	t.Setenv("RETENTION_DAYS", "30")
	t.Setenv("STORE_TIMEOUT", "2s")
	t.Setenv("ENABLE_CORS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, 10, cfg.MinimumResponses)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.False(t, cfg.EnableCORS)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			StorageBackend:   "dynamodb",
			DynamoDBTable:    "prism",
			EventBusName:     "prism-events",
			MinimumResponses: 5,
			RetentionDays:    7,
			Environment:      "development",
			CronSecret:       "",
		}
	}

	t.Run("valid development", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.StorageBackend = "postgres"
		assert.Error(t, cfg.Validate())
	})

	t.Run("minimum responses", func(t *testing.T) {
		cfg := base()
		cfg.MinimumResponses = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("production needs cron secret", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		assert.Error(t, cfg.Validate())

		cfg.CronSecret = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("production forbids memory backend", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		cfg.CronSecret = "secret"
		cfg.StorageBackend = "memory"
		assert.Error(t, cfg.Validate())
	})
}
