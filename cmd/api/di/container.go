package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-api/cmd/api/infrastructure"
	"users-api/internal/adapter/cache"
	"users-api/internal/adapter/db/postgres"
	ginhandler "users-api/internal/adapter/gin/handler"
	ginrouter "users-api/internal/adapter/gin/router"
	grpcadapter "users-api/internal/adapter/grpc"
	"users-api/internal/adapter/grpc/middleware"
	"users-api/internal/adapter/repository/cached"
	"users-api/internal/adapter/repository/memory"
	"users-api/internal/config"
	"users-api/internal/usecase/user"
	redisclient "users-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	RedisClient  *redisclient.Client
	Repository   user.Repository
	UserUC       user.Service
	RateLimiter  *middleware.RateLimiter
	GinHandler   *ginhandler.UserHandler
	Admin        *grpcadapter.AdminServer
	HealthChecks map[string]ginrouter.Pinger
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{
		Config:       cfg,
		Logger:       l,
		HealthChecks: make(map[string]ginrouter.Pinger),
	}

	// Initialize the user store
	var repo user.Repository
	switch cfg.Store.Driver {
	case config.StoreMemory:
		repo = memory.NewUserRepository()
	default:
		db, err := infrastructure.NewDatabase(cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		pg := postgres.NewUserRepoPG(db, l)
		c.HealthChecks["database"] = pg
		repo = pg
	}

	// Initialize Redis client, cache layer and rate limiter backend
	if cfg.Redis.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
		c.HealthChecks["redis"] = rdb

		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewCachedUserRepository(repo, userCache, l)

		c.RateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	c.Repository = repo
	c.UserUC = user.New(repo, l)
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.Admin = grpcadapter.NewAdminServer(l)

	l.Info("container initialized",
		zap.String("store", cfg.Store.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
