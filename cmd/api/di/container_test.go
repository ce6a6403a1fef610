package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"users-api/internal/adapter/repository/cached"
	"users-api/internal/adapter/repository/memory"
	"users-api/internal/config"
	"users-api/internal/usecase/user"
)

func baseConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{HTTPPort: "0", GRPCPort: "0", ShutdownTimeoutSeconds: 1},
		Store:  config.StoreConfig{Driver: config.StoreMemory},
		Logger: config.LoggerConfig{Level: "info", SlowQuerySeconds: 1},
	}
}

func TestNewContainer_Memory(t *testing.T) {
	c, err := NewContainer(context.Background(), baseConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &memory.UserRepository{}, c.Repository)
	assert.Nil(t, c.DB)
	assert.Nil(t, c.RedisClient)
	assert.Empty(t, c.HealthChecks)
	assert.NotNil(t, c.GinHandler)
	assert.NotNil(t, c.Admin)
}

func TestNewContainer_SQLiteWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.Store = config.StoreConfig{Driver: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "users.db")}
	cfg.Redis = config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mr.Port(), CacheTTL: 60, PoolSize: 2}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 10, BurstCapacity: 10}

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &cached.CachedUserRepository{}, c.Repository)
	assert.NotNil(t, c.DB)
	assert.Contains(t, c.HealthChecks, "database")
	assert.Contains(t, c.HealthChecks, "redis")
	assert.True(t, c.RateLimiter.Config().Enabled)

	// The wired use case talks to SQLite through the cache
	ctx := context.Background()
	created, err := c.UserUC.CreateUser(ctx, &user.UserFields{Login: "ivan", LastName: "Petrov"})
	require.NoError(t, err)

	got, err := c.UserUC.GetUser(ctx, user.GetUserRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "Petrov ", got.FullName)
	assert.True(t, mr.Exists("user:"+created.ID.String()))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Store.Driver = "mongo"

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
	assert.Nil(t, c)
}
