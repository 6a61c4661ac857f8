package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/quillpost/server/internal/config"
	"codeberg.org/quillpost/server/internal/ids"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/golang-jwt/jwt/v5"
)

const minSecretLength = 16

// issues and verifies HS256 access and refresh tokens
type TokenProvider struct {
	secret []byte
	issuer string
	users  UserFinder
	now    func() time.Time
}

type ProviderOption func(*TokenProvider)

// overrides the clock used for issuing and validating tokens
func WithClock(now func() time.Time) ProviderOption {
	return func(p *TokenProvider) {
		p.now = now
	}
}

// creates a token provider; fails when the signing secret is missing or too short
func NewTokenProvider(cfg config.JWTConfig, finder UserFinder, opts ...ProviderOption) (*TokenProvider, error) {
	if len(cfg.SecretKey) < minSecretLength {
		return nil, ErrWeakSecret
	}

	if cfg.Issuer == "" {
		return nil, fmt.Errorf("jwt issuer must be set")
	}

	p := &TokenProvider{
		secret: []byte(cfg.SecretKey),
		issuer: cfg.Issuer,
		users:  finder,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// signs an access token for user that expires ttl from now
func (p *TokenProvider) Issue(user *users.User, ttl time.Duration) (string, error) {
	return p.sign(user, ttl, TokenTypeAccess)
}

// signs a refresh token; it only ever mints access tokens and never authenticates a request
func (p *TokenProvider) IssueRefresh(user *users.User, ttl time.Duration) (string, error) {
	return p.sign(user, ttl, TokenTypeRefresh)
}

func (p *TokenProvider) sign(user *users.User, ttl time.Duration, typ string) (string, error) {
	if user == nil {
		return "", fmt.Errorf("cannot issue token for nil user")
	}

	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	now := p.now()

	claims := Claims{
		UserID: user.ID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   user.Email,
			ID:        ids.NewAt(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// reports whether token is well formed, correctly signed, from this issuer and unexpired
func (p *TokenProvider) IsValid(token string) bool {
	_, err := p.Claims(token)
	return err == nil
}

// returns the verified claims of token
func (p *TokenProvider) Claims(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims, nil
}

// verifies token and requires it to be of the given type
func (p *TokenProvider) ClaimsOfType(token, typ string) (*Claims, error) {
	claims, err := p.Claims(token)
	if err != nil {
		return nil, err
	}

	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, typ, claims.Type)
	}

	return claims, nil
}

// returns the email carried as the token subject
func (p *TokenProvider) Subject(token string) (string, error) {
	claims, err := p.Claims(token)
	if err != nil {
		return "", err
	}

	return claims.Subject, nil
}

// returns the user id claim
func (p *TokenProvider) UserID(token string) (int64, error) {
	claims, err := p.Claims(token)
	if err != nil {
		return 0, err
	}

	return claims.UserID, nil
}

// resolves an access token's subject to a principal through the credential store
func (p *TokenProvider) AuthenticationFor(ctx context.Context, token string) (*Principal, error) {
	claims, err := p.ClaimsOfType(token, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := p.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrPrincipalNotFound, err)
		}

		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	// the email may have been re-registered by a different account
	if user.ID != claims.UserID {
		return nil, fmt.Errorf("%w: subject no longer matches user id %d", ErrPrincipalNotFound, claims.UserID)
	}

	return NewPrincipal(user), nil
}

// maps a stored user to the request principal
func NewPrincipal(user *users.User) *Principal {
	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		Nickname:    user.Nickname,
		Authorities: []string{AuthorityUser},
	}
}
