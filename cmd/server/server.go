package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/quillpost/server/api/rest/health"
	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/internal/config"
	"codeberg.org/quillpost/server/internal/logger"
	"codeberg.org/quillpost/server/internal/metrics"
	"codeberg.org/quillpost/server/internal/ratelimit"
	"codeberg.org/quillpost/server/internal/storage"
	"codeberg.org/quillpost/server/quillpost/articles"
	"codeberg.org/quillpost/server/quillpost/refreshtokens"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// how often expired entries leave the in-memory denylist
	denylistCleanupInterval = 5 * time.Minute

	// per-account password attempts: burst, then one more every interval
	loginAttemptBurst    = 5
	loginAttemptInterval = time.Minute
	loginAttemptIdleTTL  = 30 * time.Minute

	// how often slots holding expired refresh tokens are purged
	cleanupCheckInterval = time.Hour
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := storage.Migrate(ctx, db.SQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// redis is optional; without it the denylist and rate limits are per process
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	srv, err := newServer(cfg, db, redisClient)
	if err != nil {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		}

		db.Close()

		return nil, err
	}

	return srv, nil
}

// wires repositories, token handling and limits over already opened connections
func newServer(cfg *config.Config, db *storage.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := users.NewRepository(db.SQL)
	articleRepo := articles.NewRepository(db.SQL)
	refreshRepo := refreshtokens.NewRepository(db.SQL)

	provider, err := auth.NewTokenProvider(cfg.JWT, userRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to create token provider: %w", err)
	}

	tokens := auth.NewTokenService(provider, userRepo, refreshRepo, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)

	checks := map[string]health.Pinger{"postgres": db}

	var denylist auth.Denylist
	if redisClient != nil {
		denylist = auth.NewRedisDenylist(redisClient)
		checks["redis"] = redisPinger{redisClient}
	} else {
		denylist = auth.NewMemoryDenylist(denylistCleanupInterval)
	}

	limitStore, err := ratelimit.NewStore(redisClient)
	if err != nil {
		return nil, err
	}

	ipLimit, err := ratelimit.Middleware(limitStore, cfg.LoginRateLimit)
	if err != nil {
		return nil, err
	}

	providers, err := auth.InitializeProviders(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OAuth providers: %w", err)
	}

	logger.Info("auth initialized",
		"issuer", cfg.JWT.Issuer,
		"access_ttl", cfg.JWT.AccessTokenTTL.String(),
		"refresh_ttl", cfg.JWT.RefreshTokenTTL.String(),
		"providers", providers,
		"shared_state", redisClient != nil,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := newRouter(cfg)
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:           db,
		redis:        redisClient,
		config:       cfg,
		router:       router,
		userRepo:     userRepo,
		articleRepo:  articleRepo,
		refreshRepo:  refreshRepo,
		tokens:       tokens,
		denylist:     denylist,
		loginLimiter: ratelimit.NewKeyedLimiter(loginAttemptInterval, loginAttemptBurst, loginAttemptIdleTTL),
		ipLimit:      ipLimit,
		metrics:      metrics.New(),
		providers:    providers,
		checks:       checks,

		cleanupService: refreshtokens.NewCleanupService(refreshRepo, cleanupCheckInterval, cfg.JWT.RefreshTokenTTL),
	}

	RegisterRoutes(server.router, server)

	return server, nil
}

// only the configured proxies may override the client IP that per-IP limits key on
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	router := gin.New()

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	return router, nil
}

// releases background workers and connections in reverse order of creation
func (s *Server) Close() {
	s.loginLimiter.Close()

	if closer, ok := s.denylist.(interface{ Close() error }); ok {
		closer.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	if s.db != nil {
		s.db.Close()
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
