package cached

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"users-api/internal/adapter/cache"
	domain "users-api/internal/domain/user"
	"users-api/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository and a cache implementation. Absent
// users are never cached, and every write invalidates the written ID.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*CachedUserRepository)(nil)

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// FindByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	// Try to get from cache first
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to store", zap.Stringer("id", id), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		// Double-check cache in case another request populated it while we were waiting
		if r.cache != nil {
			cachedUser, err := r.cache.Get(ctx, id)
			if err == nil && cachedUser != nil {
				r.log.Debug("user retrieved from cache after single-flight wait", zap.Stringer("id", id))
				return cachedUser, nil
			}
		}

		u, err := r.dbRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if u != nil && r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Stringer("id", id), zap.Error(err))
			}
		}

		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight each get their own copy
	u, _ := result.(*domain.User)
	return u.Clone(), nil
}

// Insert delegates to the store; a fresh ID has nothing to invalidate.
func (r *CachedUserRepository) Insert(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Insert(ctx, u)
}

// UpdateOrInsert writes through to the store and invalidates the cache.
func (r *CachedUserRepository) UpdateOrInsert(ctx context.Context, u *domain.User) (bool, error) {
	inserted, err := r.dbRepo.UpdateOrInsert(ctx, u)
	if err != nil {
		return false, err
	}
	r.invalidate(ctx, u.ID, "upsert")
	return inserted, nil
}

// Update updates the user in the store and invalidates the cache.
func (r *CachedUserRepository) Update(ctx context.Context, u *domain.User) error {
	if err := r.dbRepo.Update(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx, u.ID, "update")
	return nil
}

// Delete deletes the user from the store and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id, "delete")
	return nil
}

// GetPage delegates to the store.
func (r *CachedUserRepository) GetPage(ctx context.Context, pageNumber, pageSize int) (*domain.Page[domain.User], error) {
	return r.dbRepo.GetPage(ctx, pageNumber, pageSize)
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id uuid.UUID, op string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("op", op), zap.Stringer("id", id), zap.Error(err))
	}
}
