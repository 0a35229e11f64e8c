package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/bookshelf-api/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/books")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTP.Addr)
	assert.EqualValues(t, 1<<20, cfg.HTTP.MaxBodySize)
	assert.Equal(t, config.BackendMongo, cfg.UserDocs.Backend)
	assert.Equal(t, "Users", cfg.UserDocs.MongoCollection)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 150*time.Millisecond, cfg.Redis.CacheTimeout)
	assert.Equal(t, 5*time.Second, cfg.Redis.CacheTombstone)
	assert.Empty(t, cfg.Redis.URL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/books")
	t.Setenv("USERDOCS_BACKEND", "Badger")
	t.Setenv("BADGER_PATH", "/var/lib/users")
	t.Setenv("CATALOG_CACHE_TTL", "90")
	t.Setenv("CATALOG_CACHE_TIMEOUT_MS", "40")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MAX_BODY_SIZE", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendBadger, cfg.UserDocs.Backend)
	assert.Equal(t, "/var/lib/users", cfg.UserDocs.BadgerPath)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, 40*time.Millisecond, cfg.Redis.CacheTimeout)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.EqualValues(t, 1<<20, cfg.HTTP.MaxBodySize, "unparsable values fall back to the default")
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database url": {"MONGO_URI": "mongodb://x"},
		"missing mongo uri":    {"DATABASE_URL": "postgres://x"},
		"unknown backend":      {"DATABASE_URL": "postgres://x", "USERDOCS_BACKEND": "sqlite"},
		"zero argon2 memory":   {"DATABASE_URL": "postgres://x", "MONGO_URI": "mongodb://x", "ARGON2_MEMORY": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("MONGO_URI", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
