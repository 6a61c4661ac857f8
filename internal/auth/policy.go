package auth

import (
	"net/http"
	"strings"

	"codeberg.org/quillpost/server/internal/errors"
	"github.com/gin-gonic/gin"
)

type Access int

const (
	AccessPublic Access = iota
	AccessAuthenticated
)

// maps a path pattern to the access it requires; a trailing "/**" matches the prefix and everything under it
type Rule struct {
	Pattern string
	Access  Access
}

// ordered route rules, first match wins
type Policy struct {
	Rules    []Rule
	Default  Access
	LoginURL string
}

// /api/token is public, the rest of /api requires a principal, everything else is public
func DefaultPolicy() Policy {
	return Policy{
		Rules: []Rule{
			{Pattern: "/api/token", Access: AccessPublic},
			{Pattern: "/api/**", Access: AccessAuthenticated},
		},
		Default:  AccessPublic,
		LoginURL: "/login",
	}
}

// returns the access level required for path
func (p Policy) AccessFor(path string) Access {
	for _, rule := range p.Rules {
		if matchPattern(rule.Pattern, path) {
			return rule.Access
		}
	}

	return p.Default
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}

	return path == pattern
}

// enforces policy after the token filter; API paths get a 401 JSON body, pages redirect to login
func Authorize(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if policy.AccessFor(path) == AccessPublic {
			c.Next()
			return
		}

		if _, ok := GetPrincipal(c); ok {
			c.Next()
			return
		}

		if matchPattern("/api/**", path) {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Redirect(http.StatusFound, policy.LoginURL)
		c.Abort()
	}
}
