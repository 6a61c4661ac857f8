package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routes every request through the filter and reports what the handler saw
func newFilterRouter(provider *TokenProvider, opts ...FilterOption) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TokenAuthenticationFilter(provider, opts...))
	router.GET("/whoami", func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}

		fromCtx, ok := PrincipalFromContext(c.Request.Context())
		if !ok || fromCtx != principal {
			c.String(http.StatusInternalServerError, "context mismatch")
			return
		}

		c.String(http.StatusOK, principal.Email)
	})

	return router
}

func whoami(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer   padded  ", "padded", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"bearer abc", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
	}

	for _, tc := range cases {
		token, ok := BearerToken(tc.header)
		assert.Equal(t, tc.ok, ok, "header %q", tc.header)
		assert.Equal(t, tc.token, token, "header %q", tc.header)
	}
}

func TestFilter_NoHeaderPassesThroughAnonymous(t *testing.T) {
	provider, _ := newTestProvider(t, newFakeUsers(testUser()))

	w := whoami(newFilterRouter(provider), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestFilter_ValidTokenInstallsPrincipal(t *testing.T) {
	provider, _ := newTestProvider(t, newFakeUsers(testUser()))

	token, err := provider.Issue(testUser(), time.Hour)
	require.NoError(t, err)

	w := whoami(newFilterRouter(provider), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", w.Body.String())
}

func TestFilter_InvalidTokensNeverAbort(t *testing.T) {
	provider, clock := newTestProvider(t, newFakeUsers(testUser()))

	expired, err := provider.Issue(testUser(), time.Minute)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	router := newFilterRouter(provider)

	for _, header := range []string{
		"Bearer garbage",
		"Bearer " + expired,
		"Token " + expired,
		"Bearer",
	} {
		w := whoami(router, header)

		assert.Equal(t, http.StatusOK, w.Code, "header %q", header)
		assert.Equal(t, "anonymous", w.Body.String(), "header %q", header)
	}
}

func TestFilter_DeletedUserIsAnonymous(t *testing.T) {
	finder := newFakeUsers(testUser())
	provider, _ := newTestProvider(t, finder)

	token, err := provider.Issue(testUser(), time.Hour)
	require.NoError(t, err)

	finder.remove(1)

	w := whoami(newFilterRouter(provider), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestFilter_RefreshTokenIsAnonymous(t *testing.T) {
	provider, _ := newTestProvider(t, newFakeUsers(testUser()))

	refresh, err := provider.IssueRefresh(testUser(), time.Hour)
	require.NoError(t, err)

	w := whoami(newFilterRouter(provider), "Bearer "+refresh)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestFilter_RevokedTokenIsAnonymous(t *testing.T) {
	provider, _ := newTestProvider(t, newFakeUsers(testUser()))
	denylist := NewMemoryDenylist(time.Minute)
	t.Cleanup(func() { denylist.Close() }) //nolint:errcheck,gosec // test cleanup

	token, err := provider.Issue(testUser(), time.Hour)
	require.NoError(t, err)

	claims, err := provider.Claims(token)
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(context.Background(), claims.ID, time.Now().Add(time.Hour)))

	w := whoami(newFilterRouter(provider, WithDenylist(denylist)), "Bearer "+token)

	assert.Equal(t, "anonymous", w.Body.String())
}

func TestFilter_RecordsOutcomes(t *testing.T) {
	provider, _ := newTestProvider(t, newFakeUsers(testUser()))

	var (
		mu       sync.Mutex
		outcomes []string
	)

	router := newFilterRouter(provider, WithOutcomeRecorder(func(outcome string) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, outcome)
	}))

	token, err := provider.Issue(testUser(), time.Hour)
	require.NoError(t, err)

	whoami(router, "")
	whoami(router, "Bearer nope")
	whoami(router, "Bearer "+token)

	assert.Equal(t, []string{OutcomeAnonymous, OutcomeInvalid, OutcomeAuthenticated}, outcomes)
}

func TestFilter_PrincipalDoesNotLeakAcrossRequests(t *testing.T) {
	provider, _ := newTestProvider(t, newFakeUsers(testUser()))
	router := newFilterRouter(provider)

	token, err := provider.Issue(testUser(), time.Hour)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 20)

	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			header := ""
			if i%2 == 0 {
				header = "Bearer " + token
			}

			results[i] = whoami(router, header).Body.String()
		}(i)
	}

	wg.Wait()

	for i, body := range results {
		if i%2 == 0 {
			assert.Equal(t, "ada@example.com", body)
		} else {
			assert.Equal(t, "anonymous", body)
		}
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetUserID(c)
	assert.False(t, ok)

	SetPrincipal(c, NewPrincipal(testUser()))

	userID, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, int64(1), userID)
	assert.Equal(t, int64(1), c.GetInt64("user_id"))
	assert.Equal(t, "ada@example.com", c.GetString("user_email"))
}
