package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(m *JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthRequired(m), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c)+"|"+GetUserEmail(c))
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	r := newAuthRouter(m)
	token, err := m.GenerateAccessToken(testUserID, "admin@example.com")
	require.NoError(t, err)

	t.Run("Bearer Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testUserID+"|admin@example.com", w.Body.String())
	})

	t.Run("Missing Header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong Scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Basic "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Query Token Only For Websocket", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?access_token="+token, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/whoami?access_token="+token, nil)
		req.Header.Set("Upgrade", "websocket")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Reset Token Rejected", func(t *testing.T) {
		reset, err := m.GenerateResetToken(testUserID, "admin@example.com", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+reset)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasherWithCost(1)

	hash, err := h.Hash("Secret123")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "Secret123"))
	assert.Error(t, h.Compare(hash, "secret123"))
}
