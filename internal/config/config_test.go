package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/atacadao/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 500, cfg.Batch.MaxSize)
	assert.Equal(t, 5*time.Minute, cfg.Auth.FreshWindow)
	assert.False(t, cfg.DB.Migrate)
	assert.Equal(t, "postgres://postgres:@localhost:5432/atacadao?sslmode=disable", cfg.ConnectionString())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("BATCH_MAX_SIZE", "20")
	t.Setenv("DB_MIGRATE", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Batch.MaxSize)
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("AUTH_SECRET", "")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("ZeroBatch", func(t *testing.T) {
		t.Setenv("AUTH_SECRET", "s3cret")
		t.Setenv("BATCH_MAX_SIZE", "0")

		_, err := config.Load()
		assert.Error(t, err)
	})
}
