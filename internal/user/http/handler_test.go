package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/league-admin-backend/internal/auth"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/response"
	"github.com/nekogravitycat/league-admin-backend/internal/user"
)

const (
	adminID  = "11111111-1111-1111-1111-111111111111"
	playerID = "22222222-2222-2222-2222-222222222222"
)

type stubService struct {
	users map[string]*user.User
}

func newStubService() *stubService {
	name := "Pat Player"
	return &stubService{users: map[string]*user.User{
		adminID:  {ID: adminID, Email: "admin@example.com", IsAdmin: true, HasProfile: true},
		playerID: {ID: playerID, Email: "pat@example.com", Name: &name, HasProfile: true},
	}}
}

func (s *stubService) Login(_ context.Context, email, password string) (*user.User, error) {
	if email == "admin@example.com" && password == "Secret123" {
		return s.users[adminID], nil
	}
	if email == "new@example.com" {
		return nil, user.ErrEmailNotConfirmed
	}
	return nil, user.ErrInvalidCredentials
}

func (s *stubService) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *stubService) IsAdmin(_ context.Context, id string) (bool, error) {
	u, ok := s.users[id]
	return ok && u.IsAdmin, nil
}

func (s *stubService) Update(_ context.Context, id string, req user.UpdateUserRequest) (*user.User, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperror.NewFieldError("name", "name is required")
	}
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if req.Name != nil {
		u.Name = req.Name
	}
	return u, nil
}

func (s *stubService) Delete(_ context.Context, actorID, id string) error {
	if actorID == id {
		return user.ErrCannotDeleteSelf
	}
	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubService) PasswordResetLink(_ context.Context, id string) (string, error) {
	if _, ok := s.users[id]; !ok {
		return "", user.ErrNotFound
	}
	return "http://localhost:5173/reset-password?token=abc", nil
}

func (s *stubService) ResetPassword(_ context.Context, token, _ string) error {
	if token != "good" {
		return user.ErrInvalidResetToken
	}
	return nil
}

type testEnv struct {
	router  *gin.Engine
	jwt     *auth.JWTManager
	deleted []string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{jwt: auth.NewJWTManager("test-secret", time.Minute)}
	svc := newStubService()
	h := NewHandler(svc, env.jwt, func(id string) { env.deleted = append(env.deleted, id) })

	adminOnly := func(c *gin.Context) {
		ok, _ := svc.IsAdmin(c.Request.Context(), auth.GetUserID(c))
		if !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), h, auth.AuthRequired(env.jwt), adminOnly)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body, asUser string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if asUser != "" {
		token, err := e.jwt.GenerateAccessToken(asUser, "x@example.com")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	env := setup(t)

	t.Run("Success", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/v1/auth/login", `{"email":"admin@example.com","password":"Secret123"}`, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		claims, err := env.jwt.ParseAndValidate(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, adminID, claims.UserID)
		assert.True(t, resp.User.IsAdmin)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/v1/auth/login", `{"email":"admin@example.com","password":"nope"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unconfirmed Email", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/v1/auth/login", `{"email":"new@example.com","password":"Secret123"}`, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Bad Payload", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/v1/auth/login", `{"email":"not-an-email"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMe(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/v1/me", "", playerID)
	require.Equal(t, http.StatusOK, w.Code)
	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pat@example.com", resp.User.Email)

	w = env.do(t, http.MethodGet, "/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminUserEndpoints(t *testing.T) {
	t.Run("Player Cannot Read Users", func(t *testing.T) {
		env := setup(t)
		w := env.do(t, http.MethodGet, "/v1/users/"+adminID, "", playerID)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Get", func(t *testing.T) {
		env := setup(t)
		w := env.do(t, http.MethodGet, "/v1/users/"+playerID, "", adminID)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/v1/users/33333333-3333-3333-3333-333333333333", "", adminID)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(t, http.MethodGet, "/v1/users/not-a-uuid", "", adminID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update Field Error", func(t *testing.T) {
		env := setup(t)
		w := env.do(t, http.MethodPatch, "/v1/users/"+playerID, `{"name":"  "}`, adminID)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "name is required", resp.Fields["name"])
	})

	t.Run("Update", func(t *testing.T) {
		env := setup(t)
		w := env.do(t, http.MethodPatch, "/v1/users/"+playerID, `{"name":"Pat P."}`, adminID)
		require.Equal(t, http.StatusOK, w.Code)

		var resp MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.User.Name)
		assert.Equal(t, "Pat P.", *resp.User.Name)
	})

	t.Run("Delete Notifies Hook", func(t *testing.T) {
		env := setup(t)
		w := env.do(t, http.MethodDelete, "/v1/users/"+playerID, "", adminID)
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{playerID}, env.deleted)
	})

	t.Run("Delete Self Rejected", func(t *testing.T) {
		env := setup(t)
		w := env.do(t, http.MethodDelete, "/v1/users/"+adminID, "", adminID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, env.deleted)
	})

	t.Run("Reset Link", func(t *testing.T) {
		env := setup(t)
		w := env.do(t, http.MethodPost, "/v1/users/"+playerID+"/password-reset-link", "", adminID)
		require.Equal(t, http.StatusOK, w.Code)

		var resp ResetLinkResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Link, "/reset-password?token=")
	})
}

func TestResetPassword(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/v1/auth/password-reset", `{"token":"good","password":"Secret123"}`, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/password-reset", `{"token":"bad","password":"Secret123"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
