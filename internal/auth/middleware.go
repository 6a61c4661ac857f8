package auth

import (
	"context"
	"strings"

	"codeberg.org/quillpost/server/internal/logger"
	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

type principalCtxKey struct{}

// filter outcomes reported to the optional recorder
const (
	OutcomeAnonymous     = "anonymous"
	OutcomeInvalid       = "invalid"
	OutcomeRevoked       = "revoked"
	OutcomeUnresolved    = "unresolved"
	OutcomeAuthenticated = "authenticated"
)

type filterOptions struct {
	denylist Denylist
	record   func(outcome string)
}

type FilterOption func(*filterOptions)

// rejects tokens whose jti has been revoked on logout
func WithDenylist(d Denylist) FilterOption {
	return func(o *filterOptions) {
		o.denylist = d
	}
}

// reports the outcome of every request, e.g. to a metrics counter
func WithOutcomeRecorder(record func(outcome string)) FilterOption {
	return func(o *filterOptions) {
		o.record = record
	}
}

// authenticates requests carrying a bearer token; never aborts, anonymous requests pass through
func TokenAuthenticationFilter(provider *TokenProvider, opts ...FilterOption) gin.HandlerFunc {
	o := filterOptions{record: func(string) {}}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		o.record(authenticate(c, provider, o.denylist))
		c.Next()
	}
}

func authenticate(c *gin.Context, provider *TokenProvider, denylist Denylist) string {
	token, ok := BearerToken(c.GetHeader("Authorization"))
	if !ok {
		return OutcomeAnonymous
	}

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	claims, err := provider.ClaimsOfType(token, TokenTypeAccess)
	if err != nil {
		log.Debug("ignoring invalid bearer token", "error", err)
		return OutcomeInvalid
	}

	if denylist != nil {
		revoked, err := denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			log.Warn("denylist lookup failed", "error", err)
			return OutcomeUnresolved
		}

		if revoked {
			return OutcomeRevoked
		}
	}

	principal, err := provider.AuthenticationFor(ctx, token)
	if err != nil {
		log.Debug("could not resolve token principal", "error", err)
		return OutcomeUnresolved
	}

	SetPrincipal(c, principal)

	return OutcomeAuthenticated
}

// extracts the token from an "Authorization: Bearer <token>" value
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}

	return token, true
}

// installs principal for the current request only
func SetPrincipal(c *gin.Context, principal *Principal) {
	c.Set("user_id", principal.UserID)
	c.Set("user_email", principal.Email)
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
}

// returns the request principal, if the filter authenticated one
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	return PrincipalFromContext(c.Request.Context())
}

// extracts user_id from context after the filter ran
func GetUserID(c *gin.Context) (int64, bool) {
	principal, ok := GetPrincipal(c)
	if !ok {
		return 0, false
	}

	return principal.UserID, true
}

func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return principal, ok && principal != nil
}
