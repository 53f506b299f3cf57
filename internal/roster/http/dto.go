package http

import (
	"time"

	"github.com/nekogravitycat/league-admin-backend/internal/notify"
	"github.com/nekogravitycat/league-admin-backend/internal/pkg/response"
	"github.com/nekogravitycat/league-admin-backend/internal/roster"
)

const (
	emptyNoUsers   = "No users found"
	emptyNoMatches = "No users match the current search or filters"
)

type UserResponse struct {
	ID            string  `json:"id"`
	ProfileID     *string `json:"profile_id"`
	AuthID        *string `json:"auth_id"`
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	IsAdmin       bool    `json:"is_admin"`
	IsFacilitator bool    `json:"is_facilitator"`
	TeamIDs       []int64 `json:"team_ids"`
	LeagueIDs     []int64 `json:"league_ids"`
	Status        string  `json:"status"`
	TotalOwed     string  `json:"total_owed"`
	TotalPaid     string  `json:"total_paid"`
}

func NewUserResponse(u roster.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		ProfileID:     u.ProfileID,
		AuthID:        u.AuthID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		IsAdmin:       u.IsAdmin,
		IsFacilitator: u.IsFacilitator,
		TeamIDs:       u.TeamIDs,
		LeagueIDs:     u.LeagueIDs,
		Status:        string(u.Status),
		TotalOwed:     u.TotalOwed.StringFixed(2),
		TotalPaid:     u.TotalPaid.StringFixed(2),
	}
}

type QueryResponse struct {
	Search        string         `json:"search"`
	Filters       roster.Filters `json:"filters"`
	SortField     string         `json:"sort_field"`
	SortDirection string         `json:"sort_direction"`
}

type ShowingResponse struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Total int `json:"total"`
}

// RosterResponse is the full roster screen: the current page plus the state that produced it.
type RosterResponse struct {
	response.PageResponse[UserResponse]
	Showing           ShowingResponse `json:"showing"`
	Summary           string          `json:"summary"`
	PageNumbers       []int           `json:"page_numbers"`
	SearchTerm        string          `json:"search_term"`
	Query             QueryResponse   `json:"query"`
	IsAnyFilterActive bool            `json:"is_any_filter_active"`
	Loading           bool            `json:"loading"`
	Loaded            bool            `json:"loaded"`
	FetchedAt         *time.Time      `json:"fetched_at"`
	Notices           []notify.Notice `json:"notices"`
}

func NewRosterResponse(snap roster.Snapshot, q roster.Query) RosterResponse {
	items := make([]UserResponse, len(snap.Users))
	for i, u := range snap.FilteredUsers() {
		items[i] = NewUserResponse(u)
	}

	// Before the first successful load the pager reflects the requested page only.
	p := snap.Pagination
	if !snap.Loaded {
		p = roster.NewPagination(q.Page, q.PageSize, 0)
	}

	empty := emptyNoUsers
	if snap.IsAnyFilterActive || q.Search != "" {
		empty = emptyNoMatches
	}

	from, to := p.Range()
	resp := RosterResponse{
		PageResponse:      response.NewPageResponse(items, p.CurrentPage, p.PageSize, p.TotalItems).WithEmptyMessage(empty),
		Showing:           ShowingResponse{From: from, To: to, Total: p.TotalItems},
		Summary:           p.Summary(),
		PageNumbers:       p.PageNumbers(),
		SearchTerm:        snap.SearchTerm,
		IsAnyFilterActive: snap.IsAnyFilterActive,
		Loading:           snap.Loading,
		Loaded:            snap.Loaded,
		Notices:           snap.Notices,
		Query: QueryResponse{
			Search:        q.Search,
			Filters:       q.Filters,
			SortField:     string(q.SortField),
			SortDirection: string(q.SortDirection),
		},
	}
	if !snap.FetchedAt.IsZero() {
		t := snap.FetchedAt
		resp.FetchedAt = &t
	}
	return resp
}

type SearchRequest struct {
	Term string `json:"term"`
}

type SortRequest struct {
	Field string `json:"field" binding:"required"`
}

type PageRequest struct {
	Page int `json:"page"`
}

type PageSizeRequest struct {
	PageSize int `json:"page_size"`
}

type FilterKeyURI struct {
	Key string `uri:"key" binding:"required"`
}

type SportURI struct {
	SportID int64 `uri:"sport_id" binding:"required"`
}

type ExportQuery struct {
	Columns string `form:"columns"`
}
