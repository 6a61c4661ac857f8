package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultIssuer          = "quillpost"
	defaultAccessTokenTTL  = 2 * time.Hour
	defaultRefreshTokenTTL = 14 * 24 * time.Hour
	defaultBaseURL         = "http://localhost:8080"
	defaultPort            = "8080"
	defaultLoginRateLimit  = "10-M"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromEnv(os.Getenv)
}

// builds the configuration from a lookup function, usually os.Getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	databaseURL := getenv("DATABASE_URL")
	jwtSecret := getenv("JWT_SECRET_KEY")
	sessionSecret := getenv("SESSION_SECRET")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	accessTTL, err := durationOrDefault(getenv, "ACCESS_TOKEN_TTL", defaultAccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshTTL, err := durationOrDefault(getenv, "REFRESH_TOKEN_TTL", defaultRefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	baseURL := valueOrDefault(getenv("BASE_URL"), defaultBaseURL)

	successRedirect := getenv("OAUTH_SUCCESS_REDIRECT")
	if err := validateRedirect(successRedirect); err != nil {
		return nil, err
	}

	origins := splitList(getenv("ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{baseURL}
	}

	return &Config{
		DatabaseURL:    databaseURL,
		RedisURL:       getenv("REDIS_URL"),
		Environment:    valueOrDefault(getenv("ENVIRONMENT"), "development"),
		Port:           valueOrDefault(getenv("PORT"), defaultPort),
		BaseURL:        strings.TrimRight(baseURL, "/"),
		SessionSecret:  sessionSecret,
		AllowedOrigins: origins,
		LoginRateLimit: valueOrDefault(getenv("LOGIN_RATE_LIMIT"), defaultLoginRateLimit),
		TrustedProxies: splitList(getenv("TRUSTED_PROXIES")),
		JWT: JWTConfig{
			SecretKey:       jwtSecret,
			Issuer:          valueOrDefault(getenv("JWT_ISSUER"), defaultIssuer),
			AccessTokenTTL:  accessTTL,
			RefreshTokenTTL: refreshTTL,
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET"),
			GitHubClientID:     getenv("GITHUB_CLIENT_ID"),
			GitHubClientSecret: getenv("GITHUB_CLIENT_SECRET"),
			SuccessRedirect:    successRedirect,
		},
	}, nil
}

func durationOrDefault(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 2h): %w", key, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}

	return d, nil
}

// accepts an empty value, a local path or an absolute http(s) URL
func validateRedirect(raw string) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("OAUTH_SUCCESS_REDIRECT is not a valid URL: %w", err)
	}

	switch {
	case u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/"):
		return nil
	case (u.Scheme == "http" || u.Scheme == "https") && u.Host != "":
		return nil
	}

	return fmt.Errorf("OAUTH_SUCCESS_REDIRECT must be a path or an http(s) URL, got %q", raw)
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
