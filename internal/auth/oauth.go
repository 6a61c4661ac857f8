package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"codeberg.org/quillpost/server/internal/config"
	"codeberg.org/quillpost/server/internal/logger"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
)

const (
	RefreshTokenCookie = "refresh_token"

	// where the browser lands after an OAuth2 login unless configured otherwise
	DefaultSuccessRedirect = "/articles"

	// lifetime of the OAuth2 handshake cookie
	oauthStateMaxAge = 300
)

// registers the configured goth providers and the handshake cookie store; returns the enabled provider names
func InitializeProviders(cfg *config.Config) ([]string, error) {
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must be set")
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   oauthStateMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsHTTPS(),
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	var (
		providers []goth.Provider
		names     []string
	)

	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		providers = append(providers, google.New(
			cfg.OAuth.GoogleClientID,
			cfg.OAuth.GoogleClientSecret,
			CallbackURL(cfg.BaseURL, "google"),
			"email", "profile",
		))
		names = append(names, "google")
	}

	if cfg.OAuth.GitHubClientID != "" && cfg.OAuth.GitHubClientSecret != "" {
		providers = append(providers, github.New(
			cfg.OAuth.GitHubClientID,
			cfg.OAuth.GitHubClientSecret,
			CallbackURL(cfg.BaseURL, "github"),
			"user:email",
		))
		names = append(names, "github")
	}

	if len(providers) == 0 {
		logger.Warn("no OAuth2 providers configured, only password login is available")
	}

	goth.UseProviders(providers...)

	return names, nil
}

// the redirect URI registered with a provider
func CallbackURL(baseURL, provider string) string {
	return baseURL + "/login/oauth2/code/" + provider
}

// finishes a successful OAuth2 login: token pair, refresh cookie, state cleanup, redirect
type SuccessHandler struct {
	tokens       *TokenService
	secureCookie bool
	redirect     string
}

type SuccessOption func(*SuccessHandler)

// sends the browser to target instead of /articles; target may be a path or an absolute frontend URL
func WithSuccessRedirect(target string) SuccessOption {
	return func(h *SuccessHandler) {
		if target != "" {
			h.redirect = target
		}
	}
}

func NewSuccessHandler(tokens *TokenService, secureCookie bool, opts ...SuccessOption) *SuccessHandler {
	h := &SuccessHandler{tokens: tokens, secureCookie: secureCookie, redirect: DefaultSuccessRedirect}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// completes the login for an already upserted user
func (h *SuccessHandler) Handle(c *gin.Context, user *users.User) error {
	target, err := url.Parse(h.redirect)
	if err != nil {
		return fmt.Errorf("parse success redirect: %w", err)
	}

	pair, err := h.tokens.IssuePair(c.Request.Context(), user)
	if err != nil {
		return fmt.Errorf("issue token pair: %w", err)
	}

	SetRefreshCookie(c, pair.RefreshToken, h.tokens.RefreshTTL(), h.secureCookie)

	// drops the transient handshake state; the login itself already succeeded
	if err := gothic.Logout(c.Writer, c.Request); err != nil {
		logger.FromContext(c.Request.Context()).Warn("failed to clear oauth2 state cookie", "error", err)
	}

	query := target.Query()
	query.Set("token", pair.AccessToken)
	target.RawQuery = query.Encode()

	c.Redirect(http.StatusFound, target.String())

	return nil
}

// writes the refresh token cookie, replacing any previous one
func SetRefreshCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// expires the refresh token cookie
func ClearRefreshCookie(c *gin.Context, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
