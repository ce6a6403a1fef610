package user

import (
	"fmt"

	"github.com/google/uuid"
)

// User represents a user entity in the system.
type User struct {
	ID            uuid.UUID  // ID is the unique identifier, uuid.Nil is never stored
	Login         string     // Login is the alphanumeric login name
	FirstName     *string    // FirstName is optional; nil means absent
	LastName      string     // LastName is required
	GamesPlayed   int        // GamesPlayed counts finished games
	CurrentGameID *uuid.UUID // CurrentGameID references an in-progress game, if any
}

// FullName returns the display name in "{LastName} {FirstName}" form.
func (u *User) FullName() string {
	first := ""
	if u.FirstName != nil {
		first = *u.FirstName
	}
	return fmt.Sprintf("%s %s", u.LastName, first)
}

// Clone returns a deep copy of the user so callers never share pointer fields.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.FirstName != nil {
		first := *u.FirstName
		c.FirstName = &first
	}
	if u.CurrentGameID != nil {
		gameID := *u.CurrentGameID
		c.CurrentGameID = &gameID
	}
	return &c
}
