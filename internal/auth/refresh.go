package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/quillpost/server/quillpost/refreshtokens"
	"codeberg.org/quillpost/server/quillpost/users"
)

// exchanges refresh tokens for access tokens and mints token pairs at login
type TokenService struct {
	provider   *TokenProvider
	users      UserFinder
	refresh    RefreshStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// a freshly minted access/refresh pair
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func NewTokenService(
	provider *TokenProvider,
	finder UserFinder,
	refresh RefreshStore,
	accessTTL, refreshTTL time.Duration,
) *TokenService {
	return &TokenService{
		provider:   provider,
		users:      finder,
		refresh:    refresh,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) Provider() *TokenProvider {
	return s.provider
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// issues a new access token for a stored, valid refresh token; the refresh token is not rotated
func (s *TokenService) CreateNewAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if _, err := s.provider.ClaimsOfType(refreshToken, TokenTypeRefresh); err != nil {
		return "", ErrUnauthorized
	}

	stored, err := s.refresh.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, refreshtokens.ErrRefreshTokenNotFound) {
			return "", ErrUnauthorized
		}

		return "", fmt.Errorf("lookup refresh token: %w", err)
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return "", ErrUnauthorized
		}

		return "", fmt.Errorf("lookup refresh token owner: %w", err)
	}

	return s.provider.Issue(user, s.accessTTL)
}

// mints a refresh token into the user's slot and a matching access token
func (s *TokenService) IssuePair(ctx context.Context, user *users.User) (*TokenPair, error) {
	refreshToken, err := s.provider.IssueRefresh(user, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := s.refresh.Put(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	accessToken, err := s.provider.Issue(user, s.accessTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// revokes the access token id until it expires and empties the user's refresh slot
func (s *TokenService) Logout(ctx context.Context, denylist Denylist, accessToken string) error {
	claims, err := s.provider.ClaimsOfType(accessToken, TokenTypeAccess)
	if err != nil {
		return ErrUnauthorized
	}

	if denylist != nil && claims.ExpiresAt != nil {
		if err := denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}

	if err := s.refresh.DeleteByUserID(ctx, claims.UserID); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	return nil
}
