package auth

import (
	stderrors "errors"
	"net/http"
	"slices"
	"strings"

	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/internal/errors"
	"codeberg.org/quillpost/server/internal/logger"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

// LoginOptionsHandler godoc
// @Summary Login options
// @Description List the available sign in methods and OAuth2 providers
// @Tags auth
// @Produce json
// @Success 200 {object} LoginOptionsResponse
// @Router /login [get]
func LoginOptionsHandler(deps Deps) gin.HandlerFunc {
	links := make([]ProviderLink, 0, len(deps.Providers))
	for _, name := range deps.Providers {
		links = append(links, ProviderLink{Name: name, URL: "/oauth2/authorization/" + name})
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, LoginOptionsResponse{Password: true, Providers: links})
	}
}

// LoginHandler godoc
// @Summary Password login
// @Description Sign in with email and password. Returns an access token and sets the refresh_token cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /login [post]
func LoginHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		email := normalizeEmail(req.Email)

		if deps.LoginLimiter != nil && !deps.LoginLimiter.Allow(email) {
			deps.Metrics.RecordLogin("password", "throttled")
			errors.TooManyRequests(c, "too many login attempts for this account")
			return
		}

		user, err := deps.Users.FindByEmail(c.Request.Context(), email)
		if err != nil && !stderrors.Is(err, users.ErrUserNotFound) {
			errors.InternalError(c, "failed to look up user", err)
			return
		}

		// unknown accounts still pay for a bcrypt compare
		storedHash := ""
		if user != nil {
			storedHash = user.PasswordHash
		}

		if auth.VerifyPassword(storedHash, req.Password) != nil {
			deps.Metrics.RecordLogin("password", "rejected")
			errors.Unauthorized(c, auth.ErrInvalidCredentials.Error())
			return
		}

		pair, err := deps.Tokens.IssuePair(c.Request.Context(), user)
		if err != nil {
			errors.InternalError(c, "failed to issue tokens", err)
			return
		}

		if deps.LoginLimiter != nil {
			deps.LoginLimiter.Reset(email)
		}

		auth.SetRefreshCookie(c, pair.RefreshToken, deps.Tokens.RefreshTTL(), deps.SecureCookie)
		deps.Metrics.RecordLogin("password", "success")

		c.JSON(http.StatusOK, LoginResponse{AccessToken: pair.AccessToken, User: user})
	}
}

// SignupHandler godoc
// @Summary Sign up
// @Description Create an account with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "New account"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /user [post]
func SignupHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			errors.InternalError(c, "failed to create account", err)
			return
		}

		user, err := deps.Users.Save(c.Request.Context(), normalizeEmail(req.Email), hash, strings.TrimSpace(req.Nickname))
		if err != nil {
			switch {
			case stderrors.Is(err, users.ErrEmailExists):
				errors.Conflict(c, "email already registered")
			case stderrors.Is(err, users.ErrNicknameTaken):
				errors.Conflict(c, "nickname already taken")
			default:
				errors.InternalError(c, "failed to create account", err)
			}

			return
		}

		c.JSON(http.StatusCreated, UserResponse{User: user})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Revoke the presented access token, clear the stored refresh token and its cookie
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /logout [post]
// @Security BearerAuth
func LogoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := auth.BearerToken(c.GetHeader("Authorization")); ok {
			err := deps.Tokens.Logout(c.Request.Context(), deps.Denylist, token)
			if err != nil && !stderrors.Is(err, auth.ErrUnauthorized) {
				errors.InternalError(c, "failed to logout", err)
				return
			}
		}

		auth.ClearRefreshCookie(c, deps.SecureCookie)

		if err := gothic.Logout(c.Writer, c.Request); err != nil {
			logger.FromContext(c.Request.Context()).Debug("no oauth2 session to clear", "error", err)
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}

// BeginAuthHandler godoc
// @Summary Start OAuth2 login
// @Description Redirect to the provider's consent page
// @Tags auth
// @Param provider path string true "OAuth2 provider" Enums(google, github)
// @Success 302 {string} string "Redirect to OAuth2 provider"
// @Failure 400 {object} errors.ErrorResponse
// @Router /oauth2/authorization/{provider} [get]
func BeginAuthHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(deps.Providers, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		setProviderQuery(c, provider)
		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// CallbackHandler godoc
// @Summary OAuth2 callback
// @Description Completes the provider login, stores a refresh token, sets the refresh_token cookie and redirects to /articles?token={accessToken}
// @Tags auth
// @Param provider path string true "OAuth2 provider" Enums(google, github)
// @Success 302 {string} string "Redirect with access token"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login/oauth2/code/{provider} [get]
func CallbackHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(deps.Providers, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		setProviderQuery(c, provider)

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			deps.Metrics.RecordLogin(provider, "rejected")
			logger.FromContext(c.Request.Context()).Warn("oauth2 login failed", "provider", provider, "error", err)
			errors.Unauthorized(c, "authentication failed")
			return
		}

		if gothUser.Email == "" {
			errors.BadRequest(c, "provider did not share an email address", nil)
			return
		}

		nickname := gothUser.Name
		if nickname == "" {
			nickname = gothUser.NickName
		}

		user, err := deps.Users.FindOrCreateByEmail(c.Request.Context(), normalizeEmail(gothUser.Email), strings.TrimSpace(nickname))
		if err != nil {
			errors.InternalError(c, "failed to create user", err)
			return
		}

		if err := deps.Success.Handle(c, user); err != nil {
			errors.InternalError(c, "failed to complete login", err)
			return
		}

		deps.Metrics.RecordLogin(provider, "success")
	}
}

// RefreshTokenHandler godoc
// @Summary Create access token
// @Description Exchange a stored refresh token for a new access token. The refresh token is not rotated
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CreateAccessTokenRequest false "Refresh token (falls back to the refresh_token cookie)"
// @Success 201 {object} CreateAccessTokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/token [post]
func RefreshTokenHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAccessTokenRequest

		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				errors.BadRequest(c, "invalid request body", err)
				return
			}
		}

		refreshToken := req.RefreshToken
		if refreshToken == "" {
			refreshToken, _ = c.Cookie(auth.RefreshTokenCookie) //nolint:errcheck // missing cookie means no token
		}

		if refreshToken == "" {
			deps.Metrics.RecordTokenRefresh("unauthorized")
			errors.Unauthorized(c, "refresh token required")
			return
		}

		accessToken, err := deps.Tokens.CreateNewAccessToken(c.Request.Context(), refreshToken)
		if err != nil {
			if stderrors.Is(err, auth.ErrUnauthorized) {
				deps.Metrics.RecordTokenRefresh("unauthorized")
				errors.Unauthorized(c, "invalid refresh token")
				return
			}

			deps.Metrics.RecordTokenRefresh("error")
			errors.InternalError(c, "failed to create access token", err)
			return
		}

		deps.Metrics.RecordTokenRefresh("success")
		c.JSON(http.StatusCreated, CreateAccessTokenResponse{AccessToken: accessToken})
	}
}

// gothic reads the provider name from the query string
func setProviderQuery(c *gin.Context, provider string) {
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
