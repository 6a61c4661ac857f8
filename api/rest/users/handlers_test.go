package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	user  *users.User
	taken map[string]bool
}

func (f *fakeStore) FindByID(_ context.Context, userID int64) (*users.User, error) {
	if f.user == nil || f.user.ID != userID {
		return nil, users.ErrUserNotFound
	}

	return f.user, nil
}

func (f *fakeStore) UpdateNickname(ctx context.Context, userID int64, nickname string) (*users.User, error) {
	user, err := f.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if f.taken[nickname] {
		return nil, users.ErrNicknameTaken
	}

	user.Nickname = nickname

	return user, nil
}

func newRouter(store Store, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != 0 {
			auth.SetPrincipal(c, &auth.Principal{UserID: userID, Email: "ada@example.com"})
		}

		c.Next()
	})

	RegisterRoutes(router.Group("/api"), store)

	return router
}

func send(router *gin.Engine, method string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, "/api/users/me", &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestGetCurrentUserHandler(t *testing.T) {
	store := &fakeStore{user: &users.User{ID: 7, Email: "ada@example.com", PasswordHash: "secret-hash"}}

	w := send(newRouter(store, 7), http.MethodGet, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
	assert.NotContains(t, w.Body.String(), "secret-hash")

	assert.Equal(t, http.StatusUnauthorized, send(newRouter(store, 0), http.MethodGet, nil).Code)
	assert.Equal(t, http.StatusNotFound, send(newRouter(store, 8), http.MethodGet, nil).Code)
}

func TestUpdateProfileHandler(t *testing.T) {
	store := &fakeStore{
		user:  &users.User{ID: 7, Email: "ada@example.com"},
		taken: map[string]bool{"grace": true},
	}
	router := newRouter(store, 7)

	w := send(router, http.MethodPut, UpdateProfileRequest{Nickname: "  ada  "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada", store.user.Nickname)

	w = send(router, http.MethodPut, UpdateProfileRequest{Nickname: "grace"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
