package users

import (
	"errors"
	"time"

	"codeberg.org/quillpost/server/internal/storage"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailExists   = errors.New("email already registered")
	ErrNicknameTaken = errors.New("nickname already taken")
)

// handles user database operations
type Repository struct {
	db storage.DBTX
}

// represents a registered user; PasswordHash is empty for OAuth2-only accounts
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// reports whether the account can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
