package main

import (
	"codeberg.org/quillpost/server/api/rest/health"
	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/internal/config"
	"codeberg.org/quillpost/server/internal/metrics"
	"codeberg.org/quillpost/server/internal/ratelimit"
	"codeberg.org/quillpost/server/internal/storage"
	"codeberg.org/quillpost/server/quillpost/articles"
	"codeberg.org/quillpost/server/quillpost/refreshtokens"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	db     *storage.DB
	redis  *redis.Client
	config *config.Config
	router *gin.Engine

	userRepo    *users.Repository
	articleRepo *articles.Repository
	refreshRepo *refreshtokens.Repository

	tokens       *auth.TokenService
	denylist     auth.Denylist
	loginLimiter *ratelimit.KeyedLimiter
	ipLimit      gin.HandlerFunc
	metrics      *metrics.Metrics
	providers    []string
	checks       map[string]health.Pinger

	cleanupService *refreshtokens.CleanupService
}
