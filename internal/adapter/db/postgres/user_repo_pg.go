package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-api/internal/domain/user"
	usecase "users-api/internal/usecase/user"
	pkgerrors "users-api/pkg/errors"
)

// UserRepoPG implements the Repository interface using GORM.
// It runs against PostgreSQL in production and SQLite locally.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

var _ usecase.Repository = (*UserRepoPG)(nil)

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"` // UUID in canonical text form
	Login         string    `gorm:"not null"`                    // Alphanumeric login (required)
	FirstName     *string   // Optional first name
	LastName      string    `gorm:"not null"`            // Last name (required)
	GamesPlayed   int       `gorm:"not null;default:0"`  // Finished games counter
	CurrentGameID *string   `gorm:"type:varchar(36)"`    // Loose reference to a game
	CreatedAt     time.Time `gorm:"not null;index"`      // Insertion order for paging
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

// FindByID retrieves a user by ID, returning nil when no row matches.
func (r *UserRepoPG) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Stringer("id", id))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Stringer("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomain(&model)
}

// Insert stores a new user under a freshly generated ID.
func (r *UserRepoPG) Insert(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	created := u.Clone()
	created.ID = uuid.New()
	model := toSchema(created)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("login", u.Login))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Stringer("id", created.ID))
	return created, nil
}

// UpdateOrInsert replaces the row with u.ID or inserts it, inside one transaction.
func (r *UserRepoPG) UpdateOrInsert(ctx context.Context, u *user.User) (bool, error) {
	if u == nil || u.ID == uuid.Nil {
		return false, pkgerrors.NewBadRequestError("user id is required")
	}

	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserSchema{}).Where("id = ?", u.ID.String()).Updates(updateColumns(u))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		inserted = true
		return tx.Create(toSchema(u)).Error
	})
	if err != nil {
		r.log.Error("failed to upsert user in db", zap.Error(err), zap.Stringer("id", u.ID))
		return false, fmt.Errorf("failed to upsert user: %w", err)
	}

	r.log.Info("user upserted in db", zap.Stringer("id", u.ID), zap.Bool("inserted", inserted))
	return inserted, nil
}

// Update replaces every writable column of an existing user.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", u.ID.String()).Updates(updateColumns(u))
	if res.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.Stringer("id", u.ID))
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("user", "user not found")
	}

	r.log.Info("user updated in db", zap.Stringer("id", u.ID))
	return nil
}

// Delete removes a user from the database by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&UserSchema{}).Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.Stringer("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	r.log.Info("user deleted in db", zap.Stringer("id", id))
	return nil
}

// GetPage retrieves one page of users ordered by insertion time.
func (r *UserRepoPG) GetPage(ctx context.Context, pageNumber, pageSize int) (*user.Page[user.User], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Count(&total).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err))
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var models []UserSchema
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").Order("id ASC").
		Offset(user.Offset(pageNumber, pageSize)).
		Limit(pageSize).
		Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int("page_number", pageNumber), zap.Int("page_size", pageSize))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, 0, len(models))
	for i := range models {
		u, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return user.NewPage(users, total, pageNumber, pageSize), nil
}

// Ping checks that the database connection is alive.
func (r *UserRepoPG) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// updateColumns lists every column a full replace writes, including zero values.
func updateColumns(u *user.User) map[string]any {
	m := toSchema(u)
	return map[string]any{
		"login":           m.Login,
		"first_name":      m.FirstName,
		"last_name":       m.LastName,
		"games_played":    m.GamesPlayed,
		"current_game_id": m.CurrentGameID,
	}
}

func toSchema(u *user.User) *UserSchema {
	model := &UserSchema{
		ID:          u.ID.String(),
		Login:       u.Login,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		GamesPlayed: u.GamesPlayed,
	}
	if u.CurrentGameID != nil {
		gameID := u.CurrentGameID.String()
		model.CurrentGameID = &gameID
	}
	return model
}

func toDomain(model *UserSchema) (*user.User, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q in db: %w", model.ID, err)
	}

	u := &user.User{
		ID:          id,
		Login:       model.Login,
		FirstName:   model.FirstName,
		LastName:    model.LastName,
		GamesPlayed: model.GamesPlayed,
	}
	if model.CurrentGameID != nil {
		gameID, err := uuid.Parse(*model.CurrentGameID)
		if err != nil {
			return nil, fmt.Errorf("invalid game id %q in db: %w", *model.CurrentGameID, err)
		}
		u.CurrentGameID = &gameID
	}
	return u, nil
}
