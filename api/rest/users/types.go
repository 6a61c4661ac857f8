package users

import (
	"context"

	"codeberg.org/quillpost/server/quillpost/users"
)

// the account operations the profile endpoints need
type Store interface {
	FindByID(ctx context.Context, userID int64) (*users.User, error)
	UpdateNickname(ctx context.Context, userID int64, nickname string) (*users.User, error)
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.User `json:"user"`
}

// UpdateProfileRequest changes the public nickname; empty clears it
type UpdateProfileRequest struct {
	Nickname string `json:"nickname" binding:"max=50"`
}
