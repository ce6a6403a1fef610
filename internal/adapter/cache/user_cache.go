package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "users-api/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteMultiple removes multiple users from cache by IDs.
	DeleteMultiple(ctx context.Context, ids ...uuid.UUID) error
}

// cachedUser is the JSON form of a user stored in Redis.
type cachedUser struct {
	ID            uuid.UUID  `json:"id"`
	Login         string     `json:"login"`
	FirstName     *string    `json:"firstName,omitempty"`
	LastName      string     `json:"lastName"`
	GamesPlayed   int        `json:"gamesPlayed"`
	CurrentGameID *uuid.UUID `json:"currentGameId,omitempty"`
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key a user is cached under.
func Key(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		// Cache miss - not an error
		c.log.Debug("cache miss", zap.Stringer("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Stringer("user_id", id), zap.Error(err))
		return nil, err
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Stringer("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Stringer("user_id", id))
	return &domain.User{
		ID:            cached.ID,
		Login:         cached.Login,
		FirstName:     cached.FirstName,
		LastName:      cached.LastName,
		GamesPlayed:   cached.GamesPlayed,
		CurrentGameID: cached.CurrentGameID,
	}, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(cachedUser{
		ID:            user.ID,
		Login:         user.Login,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		GamesPlayed:   user.GamesPlayed,
		CurrentGameID: user.CurrentGameID,
	})
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.Stringer("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, Key(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Stringer("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Stringer("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Stringer("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Stringer("user_id", id))
	return nil
}

// DeleteMultiple removes multiple users from Redis cache.
func (c *RedisUserCache) DeleteMultiple(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to delete multiple from cache", zap.Int("count", len(ids)), zap.Error(err))
		return err
	}

	c.log.Debug("deleted multiple from cache", zap.Int("count", len(ids)))
	return nil
}
