package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/league-admin-backend/internal/roster"
)

const adminID = "11111111-1111-1111-1111-111111111111"

type stubSource struct {
	mu    sync.Mutex
	rows  []roster.Row
	calls []roster.ListParams
}

func (s *stubSource) ListUsers(_ context.Context, p roster.ListParams) ([]roster.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	return s.rows, nil
}

func (s *stubSource) lastCall() roster.ListParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func strPtr(s string) *string { return &s }

func setupRouter(src roster.Source, isAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	m := roster.NewManager(roster.ManagerConfig{
		Source: src,
		Admins: roster.AdminCheckerFunc(func(context.Context, string) (bool, error) { return isAdmin, nil }),
	})

	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", adminID)
		c.Next()
	}
	pass := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/v1"), NewRosterHandler(m), fakeAuth, pass)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRosterEndpoints(t *testing.T) {
	src := &stubSource{rows: []roster.Row{{
		TotalCount: 1,
		ProfileID:  strPtr(adminID),
		AuthID:     strPtr(adminID),
		Name:       strPtr(`John "Johnny" Doe`),
		Email:      strPtr("john@example.com"),
		Status:     "active",
		AmountDue:  decimal.RequireFromString("250"),
		AmountPaid: decimal.RequireFromString("100"),
	}}}
	r := setupRouter(src, true)

	t.Run("Get", func(t *testing.T) {
		w := do(r, http.MethodGet, "/v1/admin/roster", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp RosterResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "282.50", resp.Items[0].TotalOwed)
		assert.Equal(t, "100.00", resp.Items[0].TotalPaid)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, "Showing 1 to 1 of 1", resp.Summary)
		assert.Equal(t, "name", resp.Query.SortField)
	})

	t.Run("Toggle Filter", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/admin/roster/filters/facilitator/toggle", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, src.lastCall().Facilitator)

		var resp RosterResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.IsAnyFilterActive)
	})

	t.Run("Unknown Filter", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/admin/roster/filters/wizard/toggle", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Toggle Sport", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/admin/roster/sports-in-league/3/toggle", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []int64{3}, src.lastCall().SportsInLeague)

		w = do(r, http.MethodPost, "/v1/admin/roster/sports-with-skill/abc/toggle", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Sort Twice Flips", func(t *testing.T) {
		do(r, http.MethodPost, "/v1/admin/roster/sort", `{"field":"email"}`)
		w := do(r, http.MethodPost, "/v1/admin/roster/sort", `{"field":"email"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, roster.SortDesc, src.lastCall().SortDirection)

		w = do(r, http.MethodPost, "/v1/admin/roster/sort", `{"field":"password"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Page And Page Size", func(t *testing.T) {
		w := do(r, http.MethodPut, "/v1/admin/roster/page-size", `{"page_size":10}`)
		require.Equal(t, http.StatusOK, w.Code)
		w = do(r, http.MethodPut, "/v1/admin/roster/page", `{"page":2}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 10, src.lastCall().Offset)

		w = do(r, http.MethodPut, "/v1/admin/roster/page", `{"page":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Clear Filters", func(t *testing.T) {
		w := do(r, http.MethodDelete, "/v1/admin/roster/filters", "")
		require.Equal(t, http.StatusOK, w.Code)

		call := src.lastCall()
		assert.False(t, call.Facilitator)
		assert.Empty(t, call.SportsInLeague)
		assert.Equal(t, 0, call.Offset)
	})

	t.Run("Export", func(t *testing.T) {
		w := do(r, http.MethodGet, "/v1/admin/roster/export.csv?columns=name,total_owed", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Body.String(), `"John ""Johnny"" Doe",282.50`)

		records, err := csv.NewReader(w.Body).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Total Owed"}, records[0])
		assert.Equal(t, `John "Johnny" Doe`, records[1][0])

		w = do(r, http.MethodGet, "/v1/admin/roster/export.csv?columns=ssn", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRosterEmptyMessage(t *testing.T) {
	r := setupRouter(&stubSource{}, true)

	w := do(r, http.MethodGet, "/v1/admin/roster", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp RosterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
	assert.Equal(t, emptyNoUsers, resp.EmptyMessage)
	assert.Empty(t, resp.PageNumbers)

	w = do(r, http.MethodPost, "/v1/admin/roster/filters/administrator/toggle", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, emptyNoMatches, resp.EmptyMessage)
}

func TestRosterForbidden(t *testing.T) {
	r := setupRouter(&stubSource{}, false)

	w := do(r, http.MethodGet, "/v1/admin/roster", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
