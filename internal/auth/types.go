package auth

import (
	"context"
	"errors"
	"time"

	"codeberg.org/quillpost/server/quillpost/refreshtokens"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/golang-jwt/jwt/v5"
)

// authority granted to every signed-in principal
const AuthorityUser = "user"

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrWeakSecret        = errors.New("jwt secret must be at least 16 bytes")
)

// values of the typ claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// represents JWT claims; the subject carries the user's email
type Claims struct {
	UserID int64  `json:"id"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// the authenticated identity attached to a single request
type Principal struct {
	UserID      int64    `json:"id"`
	Email       string   `json:"email"`
	Nickname    string   `json:"nickname,omitempty"`
	Authorities []string `json:"authorities"`
}

// looks up the account behind a token subject or refresh token owner
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, userID int64) (*users.User, error)
}

// the refresh token slot store
type RefreshStore interface {
	Put(ctx context.Context, userID int64, token string) error
	FindByToken(ctx context.Context, token string) (*refreshtokens.RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

// records revoked access token ids until the tokens would have expired anyway
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
