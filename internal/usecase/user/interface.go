package user

import "context"

// Service defines the interface for user business logic operations.
type Service interface {
	GetUser(ctx context.Context, in GetUserRequest) (*User, error)
	CreateUser(ctx context.Context, in *UserFields) (*CreateUserResponse, error)
	ReplaceUser(ctx context.Context, in ReplaceUserRequest) (*ReplaceUserResponse, error)
	PatchUser(ctx context.Context, in PatchUserRequest) error
	DeleteUser(ctx context.Context, in DeleteUserRequest) error
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
}
