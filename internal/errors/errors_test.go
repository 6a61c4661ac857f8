package errors

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)

	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestUnauthorized_DefaultMessage(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/api/articles")

	Unauthorized(c, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decode(t, w)
	assert.Equal(t, CodeUnauthorized, resp.Error)
	assert.Equal(t, "authentication required", resp.Message)
}

func TestNotFound_WithResource(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/api/articles/9")

	NotFound(c, "article")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "article not found", decode(t, w).Message)
}

func TestInternalError_SanitizedInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	c, w := newTestContext(http.MethodPost, "/api/articles")

	InternalError(c, "failed to create article", fmt.Errorf("insert article: %w", &pgconn.PgError{Code: "42P01", Message: "relation missing"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, CodeServerError, resp.Error)
	assert.Equal(t, "database operation failed", resp.Details)
}

func TestValidatePathID(t *testing.T) {
	cases := []struct {
		raw    string
		ok     bool
		id     int64
		status int
	}{
		{"42", true, 42, http.StatusOK},
		{"0", false, 0, http.StatusNotFound},
		{"-3", false, 0, http.StatusNotFound},
		{"abc", false, 0, http.StatusNotFound},
		{"", false, 0, http.StatusBadRequest},
	}

	for _, tc := range cases {
		c, w := newTestContext(http.MethodGet, "/api/articles/"+tc.raw)
		c.Params = gin.Params{{Key: "id", Value: tc.raw}}

		id, ok := ValidatePathID(c, "id")

		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		assert.Equal(t, tc.id, id, "raw=%q", tc.raw)
		assert.Equal(t, tc.status, w.Code, "raw=%q", tc.raw)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("save user: %w", &pgconn.PgError{Code: "23505"})

	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(sql.ErrNoRows))
}

func TestClassifyError(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	cases := []struct {
		err      error
		category string
	}{
		{sql.ErrNoRows, CategoryNotFound},
		{context.DeadlineExceeded, CategoryTimeout},
		{fmt.Errorf("dial tcp: connection refused"), CategoryNetwork},
		{fmt.Errorf("field is required"), CategoryValidation},
		{fmt.Errorf("something odd"), CategoryUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.category, classifyError(tc.err).category, "err=%v", tc.err)
	}

	assert.Equal(t, "", classifyError(nil).sanitized)
}
