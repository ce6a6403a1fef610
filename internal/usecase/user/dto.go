package user

import "github.com/google/uuid"

// UserFields is the client-writable part of a user, used by create and replace
// payloads and as the target of a patch.
type UserFields struct {
	Login     string  `json:"login" validate:"required,alphanum"`
	FirstName *string `json:"firstName" validate:"omitnil,min=1"`
	LastName  string  `json:"lastName" validate:"required"`
}

// CreateUserResponse represents the response payload after creating a user.
type CreateUserResponse struct {
	ID uuid.UUID
}

// ReplaceUserRequest represents a full replacement of the user with the given ID.
// A nil User means the client sent no payload.
type ReplaceUserRequest struct {
	ID   uuid.UUID
	User *UserFields
}

// ReplaceUserResponse reports whether the replacement inserted a new user.
type ReplaceUserResponse struct {
	ID      uuid.UUID
	Created bool
}

// PatchUserRequest represents a partial update. A nil Patch means the client sent no patch document.
type PatchUserRequest struct {
	ID    uuid.UUID
	Patch Patch
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID uuid.UUID
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID uuid.UUID
}

// ListUsersRequest represents the request payload for listing users.
type ListUsersRequest struct {
	PageNumber int
	PageSize   int
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *Pagination
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	TotalCount  int64
	PageSize    int
	CurrentPage int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID            uuid.UUID
	Login         string
	FullName      string
	GamesPlayed   int
	CurrentGameID *uuid.UUID
}
