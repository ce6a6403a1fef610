package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domain "users-api/internal/domain/user"
	"users-api/internal/usecase/user"
	pkgerrors "users-api/pkg/errors"
)

// UserRepository is an in-memory implementation of user.Repository.
// A single RWMutex serializes writers; records are copied in and out.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
	order []uuid.UUID // insertion order
}

// Ensure UserRepository implements the interface
var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[uuid.UUID]*domain.User),
	}
}

// FindByID returns a copy of the user, or nil when the ID is unknown.
func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[id].Clone(), nil
}

// Insert stores u under a freshly generated ID, ignoring u.ID.
func (r *UserRepository) Insert(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := u.Clone()
	stored.ID = r.newID()
	r.users[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	return stored.Clone(), nil
}

// UpdateOrInsert replaces the user with u.ID, inserting it when absent.
func (r *UserRepository) UpdateOrInsert(_ context.Context, u *domain.User) (bool, error) {
	if u.ID == uuid.Nil {
		return false, pkgerrors.NewBadRequestError("user id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.users[u.ID]
	r.users[u.ID] = u.Clone()
	if !exists {
		r.order = append(r.order, u.ID)
	}
	return !exists, nil
}

// Update replaces an existing user.
func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.ID]; !exists {
		return pkgerrors.NewNotFoundError("user", "user not found")
	}
	r.users[u.ID] = u.Clone()
	return nil
}

// Delete removes the user. Deleting an unknown ID is a no-op.
func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[id]; !exists {
		return nil
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetPage returns one page of users in insertion order.
func (r *UserRepository) GetPage(_ context.Context, pageNumber, pageSize int) (*domain.Page[domain.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.order)
	start := min(domain.Offset(pageNumber, pageSize), total)
	end := min(start+pageSize, total)

	items := make([]domain.User, 0, end-start)
	for _, id := range r.order[start:end] {
		items = append(items, *r.users[id].Clone())
	}

	return domain.NewPage(items, int64(total), pageNumber, pageSize), nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// newID returns an ID not yet present in the store. Callers hold the write lock.
func (r *UserRepository) newID() uuid.UUID {
	for {
		id := uuid.New()
		if _, taken := r.users[id]; !taken {
			return id
		}
	}
}
