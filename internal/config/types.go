package config

import (
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	RedisURL       string
	Environment    string
	Port           string
	BaseURL        string
	SessionSecret  string
	AllowedOrigins []string
	LoginRateLimit string

	// proxies allowed to set the client IP through X-Forwarded-For; none by default
	TrustedProxies []string
	JWT            JWTConfig
	OAuth          OAuthConfig
}

// signing and lifetime settings for access and refresh tokens
type JWTConfig struct {
	SecretKey       string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// client credentials per OAuth2 provider; empty pairs disable the provider
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// landing page for the access token after an OAuth2 login; empty keeps /articles
	SuccessRedirect string
}

// reports whether cookies should carry the Secure attribute
func (c *Config) IsHTTPS() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
