package refreshtokens

import (
	"errors"
	"time"

	"codeberg.org/quillpost/server/internal/storage"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// persists at most one refresh token per user
type Repository struct {
	db storage.DBTX
}

// a stored refresh token slot; only the digest of the token is kept
type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	UpdatedAt time.Time
}
