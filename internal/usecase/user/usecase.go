package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "users-api/internal/domain/user"
	pkgerrors "users-api/pkg/errors"
)

const (
	// DefaultPageSize is used by transports when the client does not ask for a page size.
	DefaultPageSize = 10
	// MaxPageSize is the largest page a client can request.
	MaxPageSize = 20
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (in-memory, PostgreSQL, cached) to be used interchangeably.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)                       // Retrieve user by ID, nil when absent
	Insert(ctx context.Context, u *domain.User) (*domain.User, error)                       // Insert with a fresh ID
	UpdateOrInsert(ctx context.Context, u *domain.User) (bool, error)                       // Replace or insert with the given ID
	Update(ctx context.Context, u *domain.User) error                                       // Replace an existing user
	Delete(ctx context.Context, id uuid.UUID) error                                         // Delete user by ID
	GetPage(ctx context.Context, pageNumber, pageSize int) (*domain.Page[domain.User], error) // One page in insertion order
}

// Usecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Usecase struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

var _ Service = (*Usecase)(nil)

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: newValidator()}
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	u, err := uc.find(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return toDTO(u), nil
}

// CreateUser validates the payload and inserts a new user with a fresh ID.
func (uc *Usecase) CreateUser(ctx context.Context, in *UserFields) (*CreateUserResponse, error) {
	if in == nil {
		uc.log.Warn("create user rejected", zap.String("reason", "empty payload"))
		return nil, pkgerrors.NewBadRequestError("user payload is required")
	}

	uc.log.Info("creating user", zap.String("login", in.Login))

	if err := validateFields(uc.validate, in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	created, err := uc.repo.Insert(ctx, fromFields(uuid.Nil, in))
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	return &CreateUserResponse{ID: created.ID}, nil
}

// ReplaceUser overwrites every field of the user, inserting it when the ID is unused.
// Fields that are not part of the payload are reset to their defaults.
func (uc *Usecase) ReplaceUser(ctx context.Context, in ReplaceUserRequest) (*ReplaceUserResponse, error) {
	if in.User == nil || in.ID == uuid.Nil {
		uc.log.Warn("replace user rejected", zap.Stringer("id", in.ID), zap.Bool("has_payload", in.User != nil))
		return nil, pkgerrors.NewBadRequestError("user id and payload are required")
	}

	uc.log.Info("replacing user", zap.Stringer("id", in.ID), zap.String("login", in.User.Login))

	if err := validateFields(uc.validate, in.User); err != nil {
		uc.log.Warn("validate failed", zap.Stringer("id", in.ID), zap.Error(err))
		return nil, err
	}

	inserted, err := uc.repo.UpdateOrInsert(ctx, fromFields(in.ID, in.User))
	if err != nil {
		uc.log.Error("failed to replace user", zap.Stringer("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to replace user", err)
	}

	return &ReplaceUserResponse{ID: in.ID, Created: inserted}, nil
}

// PatchUser applies a patch to the current state of the user, validates the result
// and writes back only the fields the patch touched. Nothing is stored on failure.
func (uc *Usecase) PatchUser(ctx context.Context, in PatchUserRequest) error {
	if in.Patch == nil {
		uc.log.Warn("patch user rejected", zap.Stringer("id", in.ID), zap.String("reason", "empty patch"))
		return pkgerrors.NewBadRequestError("patch document is required")
	}

	current, err := uc.find(ctx, in.ID)
	if err != nil {
		return err
	}

	uc.log.Info("patching user", zap.Stringer("id", in.ID), zap.Strings("fields", in.Patch.Touched()))

	patched, err := applyPatch(toFields(current), in.Patch)
	if err != nil {
		uc.log.Warn("patch could not be applied", zap.Stringer("id", in.ID), zap.Error(err))
		return err
	}

	if err := validateFields(uc.validate, patched); err != nil {
		uc.log.Warn("validate failed", zap.Stringer("id", in.ID), zap.Error(err))
		return err
	}

	// Untouched columns are written back from the read above, so two concurrent
	// patches of the same user are last-writer-wins.
	updated := current.Clone()
	for _, field := range in.Patch.Touched() {
		switch field {
		case "login":
			updated.Login = patched.Login
		case "firstName":
			updated.FirstName = patched.FirstName
		case "lastName":
			updated.LastName = patched.LastName
		}
	}

	if err := uc.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return pkgerrors.NewNotFoundError("user", "user not found")
		}
		uc.log.Error("failed to update user", zap.Stringer("id", in.ID), zap.Error(err))
		return pkgerrors.NewInternalError("failed to update user", err)
	}

	return nil
}

// DeleteUser deletes an existing user.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	uc.log.Info("deleting user", zap.Stringer("id", in.ID))

	if _, err := uc.find(ctx, in.ID); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		uc.log.Error("failed to delete user", zap.Stringer("id", in.ID), zap.Error(err))
		return pkgerrors.NewInternalError("failed to delete user", err)
	}

	return nil
}

// ListUsers retrieves one page of users. Page number and size are clamped into range.
func (uc *Usecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	pageNumber, pageSize := ClampPage(in.PageNumber, in.PageSize)

	uc.log.Info("listing users", zap.Int("page_number", pageNumber), zap.Int("page_size", pageSize))

	page, err := uc.repo.GetPage(ctx, pageNumber, pageSize)
	if err != nil {
		uc.log.Error("failed to list users", zap.Int("page_number", pageNumber), zap.Int("page_size", pageSize), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	users := make([]User, len(page.Items))
	for i := range page.Items {
		users[i] = *toDTO(&page.Items[i])
	}

	return &ListUsersResponse{
		Users: users,
		Pagination: &Pagination{
			TotalCount:  page.TotalCount,
			PageSize:    page.PageSize,
			CurrentPage: page.CurrentPage,
			TotalPages:  page.TotalPages,
			HasPrevious: page.HasPrevious(),
			HasNext:     page.HasNext(),
		},
	}, nil
}

// ClampPage forces pageNumber to at least 1 and pageSize into [1, MaxPageSize].
func ClampPage(pageNumber, pageSize int) (int, int) {
	return max(1, pageNumber), min(max(pageSize, 1), MaxPageSize)
}

// find looks a user up, treating the empty ID like any unknown ID.
func (uc *Usecase) find(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if id == uuid.Nil {
		uc.log.Warn("user lookup rejected", zap.String("reason", "empty id"))
		return nil, pkgerrors.NewNotFoundError("user", "user not found")
	}

	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.log.Error("failed to get user", zap.Stringer("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		uc.log.Debug("user not found", zap.Stringer("id", id))
		return nil, pkgerrors.NewNotFoundError("user", "user not found")
	}
	return u, nil
}

// applyPatch runs p against the JSON form of current and decodes the result.
func applyPatch(current *UserFields, p Patch) (*UserFields, error) {
	doc, err := json.Marshal(current)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode user", err)
	}

	out, err := p.Apply(doc)
	if err != nil {
		return nil, pkgerrors.NewValidationError("patch", err.Error())
	}

	var patched UserFields
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patched); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, pkgerrors.NewValidationError(typeErr.Field, typeErr.Field+" has an invalid type")
		}
		return nil, pkgerrors.NewValidationError("patch", err.Error())
	}
	return &patched, nil
}

func toDTO(u *domain.User) *User {
	return &User{
		ID:            u.ID,
		Login:         u.Login,
		FullName:      u.FullName(),
		GamesPlayed:   u.GamesPlayed,
		CurrentGameID: u.CurrentGameID,
	}
}

func toFields(u *domain.User) *UserFields {
	return &UserFields{
		Login:     u.Login,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func fromFields(id uuid.UUID, in *UserFields) *domain.User {
	u := &domain.User{
		ID:       id,
		Login:    in.Login,
		LastName: in.LastName,
	}
	if in.FirstName != nil {
		first := *in.FirstName
		u.FirstName = &first
	}
	return u
}
