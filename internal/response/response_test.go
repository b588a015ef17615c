package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/validate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixedResponder(expose bool) *Responder {
	r := New(expose, nil)
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r
}

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestOK(t *testing.T) {
	r := fixedResponder(false)
	w, env := serve(t, func(c *gin.Context) {
		r.OK(c, http.StatusCreated, "Todo created successfully", gin.H{"id": "x"})
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Todo created successfully", env.Message)
	assert.Equal(t, map[string]any{"id": "x"}, env.Data)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), env.Timestamp)
}

func TestList_IncludesCount(t *testing.T) {
	r := fixedResponder(false)
	_, env := serve(t, func(c *gin.Context) { r.List(c, "", []int{1, 2}, 2) })
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	assert.Equal(t, "Success", env.Message)
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		field   string
	}{
		{"validation", &validate.Error{Field: "task", Message: "task cannot be empty"}, http.StatusBadRequest, "task cannot be empty", "task"},
		{"wrapped validation", fmt.Errorf("add: %w", &validate.Error{Field: "id", Message: "invalid id format"}), http.StatusBadRequest, "invalid id format", "id"},
		{"reference", dom.ErrUnknownUser, http.StatusBadRequest, "referenced user does not exist", "user"},
		{"named not found", dom.NotFound("Todo"), http.StatusNotFound, "Todo not found", ""},
		{"bare not found", dom.ErrNotFound, http.StatusNotFound, "not found", ""},
		{"conflict", dom.ErrEmailTaken, http.StatusConflict, "email already in use", "email"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal server error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fixedResponder(false)
			w, env := serve(t, func(c *gin.Context) { r.Error(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.Nil(t, env.Data)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, tt.field, env.Field)
			assert.Empty(t, env.Error)
		})
	}
}

func TestError_ExposesInternalsOutsideProduction(t *testing.T) {
	r := fixedResponder(true)
	_, env := serve(t, func(c *gin.Context) { r.Error(c, errors.New("pg: connection refused")) })
	assert.Equal(t, "pg: connection refused", env.Error)
}

func TestRecovery(t *testing.T) {
	r := fixedResponder(false)
	engine := gin.New()
	engine.Use(r.Recovery())
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "internal server error", env.Message)
}

func TestNotFoundRoute(t *testing.T) {
	r := fixedResponder(false)
	engine := gin.New()
	engine.NoRoute(r.NotFoundRoute)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
