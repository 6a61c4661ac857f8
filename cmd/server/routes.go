package main

import (
	"net/http"

	"codeberg.org/quillpost/server/api/rest/articles"
	authapi "codeberg.org/quillpost/server/api/rest/auth"
	"codeberg.org/quillpost/server/api/rest/health"
	"codeberg.org/quillpost/server/api/rest/users"
	_ "codeberg.org/quillpost/server/docs"
	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/internal/errors"
	"codeberg.org/quillpost/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

const serverVersion = "1.0.0"

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(server.metrics.Middleware())
	router.Use(CORSMiddleware(server.config.AllowedOrigins))

	// the filter only authenticates; the policy decides what needs a principal
	router.Use(auth.TokenAuthenticationFilter(
		server.tokens.Provider(),
		auth.WithDenylist(server.denylist),
		auth.WithOutcomeRecorder(server.metrics.RecordAuthOutcome),
	))
	router.Use(auth.Authorize(auth.DefaultPolicy()))

	router.GET("/health", health.Handler(serverVersion, server.checks))
	router.GET("/ping", health.PingHandler)
	router.GET("/metrics", gin.WrapH(server.metrics.Handler()))
	router.GET("/swagger/doc.json", swaggerDocHandler)

	success := auth.NewSuccessHandler(server.tokens, server.config.IsHTTPS(),
		auth.WithSuccessRedirect(server.config.OAuth.SuccessRedirect))

	authapi.RegisterRoutes(router, authapi.Deps{
		Users:        server.userRepo,
		Tokens:       server.tokens,
		Success:      success,
		Denylist:     server.denylist,
		LoginLimiter: server.loginLimiter,
		Metrics:      server.metrics,
		Providers:    server.providers,
		SecureCookie: server.config.IsHTTPS(),
		RateLimit:    server.ipLimit,
	})

	api := router.Group("/api")

	{
		users.RegisterRoutes(api, server.userRepo)
		articles.RegisterRoutes(api, server.articleRepo)
	}
}

func swaggerDocHandler(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		errors.InternalError(c, "failed to render api docs", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
