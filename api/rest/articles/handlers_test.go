package articles

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/quillpost/articles"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu     sync.Mutex
	byID   map[int64]*articles.Article
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[int64]*articles.Article), nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, author string, req articles.CreateArticleRequest) (*articles.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Date(2026, 3, 1, 12, 0, 0, int(f.nextID), time.UTC)
	a := &articles.Article{ID: f.nextID, Title: req.Title, Content: req.Content, Author: author, CreatedAt: now, UpdatedAt: now}
	f.byID[a.ID] = a
	f.nextID++

	return a, nil
}

func (f *fakeStore) List(_ context.Context, limit, offset int) ([]articles.Article, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]articles.Article, 0, len(f.byID))
	for _, a := range f.byID {
		all = append(all, *a)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	if offset >= len(all) {
		return []articles.Article{}, len(all), nil
	}

	end := min(offset+limit, len(all))

	return all[offset:end], len(all), nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*articles.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.byID[id]
	if !ok {
		return nil, articles.ErrArticleNotFound
	}

	copied := *a

	return &copied, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, author string, req articles.UpdateArticleRequest) (*articles.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.byID[id]
	if !ok || a.Author != author {
		return nil, articles.ErrArticleNotFound
	}

	a.Title, a.Content = req.Title, req.Content
	copied := *a

	return &copied, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64, author string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.byID[id]
	if !ok || a.Author != author {
		return articles.ErrArticleNotFound
	}

	delete(f.byID, id)

	return nil
}

// signs every request in as email; an empty email leaves it anonymous
func newRouter(store Store, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if email != "" {
			auth.SetPrincipal(c, &auth.Principal{UserID: 1, Email: email, Authorities: []string{auth.AuthorityUser}})
		}

		c.Next()
	})

	RegisterRoutes(router.Group("/api"), store)

	return router
}

func send(router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestCreateArticleHandler_SetsAuthorFromPrincipal(t *testing.T) {
	store := newFakeStore()
	router := newRouter(store, "ada@example.com")

	w := send(router, http.MethodPost, "/api/articles", articles.CreateArticleRequest{Title: "Hello", Content: "World"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created articles.Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "ada@example.com", created.Author)
	assert.Equal(t, "Hello", created.Title)
}

func TestCreateArticleHandler_Validation(t *testing.T) {
	router := newRouter(newFakeStore(), "ada@example.com")

	w := send(router, http.MethodPost, "/api/articles", map[string]string{"title": "no content"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateArticleHandler_Anonymous(t *testing.T) {
	router := newRouter(newFakeStore(), "")

	w := send(router, http.MethodPost, "/api/articles", articles.CreateArticleRequest{Title: "Hello", Content: "World"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListArticlesHandler_Paginates(t *testing.T) {
	store := newFakeStore()
	for range 3 {
		_, _ = store.Create(context.Background(), "ada@example.com", articles.CreateArticleRequest{Title: "t", Content: "c"})
	}

	router := newRouter(store, "ada@example.com")

	w := send(router, http.MethodGet, "/api/articles?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ArticlesListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Articles, 2)
	assert.Equal(t, int64(3), resp.Articles[0].ID)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasMore)
}

func TestListArticlesHandler_EmptyIsArray(t *testing.T) {
	router := newRouter(newFakeStore(), "ada@example.com")

	w := send(router, http.MethodGet, "/api/articles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"articles":[]`)
}

func TestGetArticleHandler(t *testing.T) {
	store := newFakeStore()
	_, _ = store.Create(context.Background(), "ada@example.com", articles.CreateArticleRequest{Title: "t", Content: "c"})
	router := newRouter(store, "grace@example.com")

	assert.Equal(t, http.StatusOK, send(router, http.MethodGet, "/api/articles/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, send(router, http.MethodGet, "/api/articles/42", nil).Code)
	assert.Equal(t, http.StatusNotFound, send(router, http.MethodGet, "/api/articles/abc", nil).Code)
}

func TestUpdateArticleHandler_AuthorOnly(t *testing.T) {
	store := newFakeStore()
	_, _ = store.Create(context.Background(), "ada@example.com", articles.CreateArticleRequest{Title: "t", Content: "c"})
	req := articles.UpdateArticleRequest{Title: "edited", Content: "c2"}

	w := send(newRouter(store, "grace@example.com"), http.MethodPut, "/api/articles/1", req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(newRouter(store, "ada@example.com"), http.MethodPut, "/api/articles/1", req)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Title)

	w = send(newRouter(store, "ada@example.com"), http.MethodPut, "/api/articles/9", req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteArticleHandler_AuthorOnly(t *testing.T) {
	store := newFakeStore()
	_, _ = store.Create(context.Background(), "ada@example.com", articles.CreateArticleRequest{Title: "t", Content: "c"})

	w := send(newRouter(store, "grace@example.com"), http.MethodDelete, "/api/articles/1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(newRouter(store, "ada@example.com"), http.MethodDelete, "/api/articles/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := store.Get(context.Background(), 1)
	assert.ErrorIs(t, err, articles.ErrArticleNotFound)
}
