package auth

import (
	"github.com/gin-gonic/gin"
)

// registers login, signup, logout, OAuth2 and token refresh routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	limit := deps.RateLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	router.GET("/login", LoginOptionsHandler(deps))
	router.POST("/login", limit, LoginHandler(deps))
	router.POST("/user", limit, SignupHandler(deps))
	router.POST("/logout", LogoutHandler(deps))

	router.GET("/oauth2/authorization/:provider", BeginAuthHandler(deps))
	router.GET("/login/oauth2/code/:provider", CallbackHandler(deps))

	router.POST("/api/token", limit, RefreshTokenHandler(deps))
}
