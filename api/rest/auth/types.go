package auth

import (
	"context"

	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/internal/metrics"
	"codeberg.org/quillpost/server/internal/ratelimit"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/gin-gonic/gin"
)

// the credential store operations the auth endpoints need
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindOrCreateByEmail(ctx context.Context, email, nickname string) (*users.User, error)
	Save(ctx context.Context, email, passwordHash, nickname string) (*users.User, error)
}

// everything the auth routes are wired with
type Deps struct {
	Users        UserStore
	Tokens       *auth.TokenService
	Success      *auth.SuccessHandler
	Denylist     auth.Denylist
	LoginLimiter *ratelimit.KeyedLimiter
	Metrics      *metrics.Metrics
	Providers    []string
	SecureCookie bool

	// optional per-IP limit for credential endpoints
	RateLimit gin.HandlerFunc
}

// LoginRequest for email/password sign in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest for creating a password account
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Nickname string `json:"nickname" binding:"max=50"`
}

// CreateAccessTokenRequest carries the refresh token; the refresh_token cookie is used when empty
type CreateAccessTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// CreateAccessTokenResponse returned by the refresh endpoint
type CreateAccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// LoginResponse returned after a password login
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        *users.User `json:"user"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.User `json:"user"`
}

// ProviderLink points at the start of an OAuth2 flow
type ProviderLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// LoginOptionsResponse lists the available sign in methods
type LoginOptionsResponse struct {
	Password  bool           `json:"password"`
	Providers []ProviderLink `json:"providers"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
