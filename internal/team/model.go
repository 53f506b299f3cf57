package team

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, "team not found")
	ErrLeagueNotFound = apperror.New(http.StatusNotFound, "league not found")
	ErrSportMismatch  = apperror.New(http.StatusBadRequest, "target league plays a different sport")
	ErrSameLeague     = apperror.New(http.StatusBadRequest, "team is already in that league")
	ErrInvalidView    = apperror.New(http.StatusBadRequest, "view mode must be card or table")
)

// ViewMode is how the team management page lays out teams.
type ViewMode string

const (
	ViewCard  ViewMode = "card"
	ViewTable ViewMode = "table"

	DefaultViewMode = ViewCard
)

func (v ViewMode) Valid() bool {
	return v == ViewCard || v == ViewTable
}

type Team struct {
	ID          int64
	LeagueID    int64
	LeagueName  string
	SportID     int64
	Name        string
	CaptainID   *string
	CaptainName *string
	MemberCount int
	CreatedAt   time.Time
}

type League struct {
	ID      int64
	SportID int64
	Name    string
	Active  bool
}

// TeamFilter defines parameters for listing teams.
type TeamFilter struct {
	LeagueID *int64
	Page     int
	PageSize int
}
