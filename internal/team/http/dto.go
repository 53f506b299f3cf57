package http

import (
	"time"

	"github.com/nekogravitycat/league-admin-backend/internal/team"
)

type ListTeamsQuery struct {
	LeagueID *int64 `form:"league_id" binding:"omitempty,min=1"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=200"`
}

type TeamURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type TransferRequest struct {
	LeagueID int64 `json:"league_id" binding:"required,min=1"`
}

type ViewModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type ViewModeResponse struct {
	Mode string `json:"mode"`
}

type TeamResponse struct {
	ID          int64     `json:"id"`
	LeagueID    int64     `json:"league_id"`
	LeagueName  string    `json:"league_name"`
	SportID     int64     `json:"sport_id"`
	Name        string    `json:"name"`
	CaptainID   *string   `json:"captain_id"`
	CaptainName *string   `json:"captain_name"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewTeamResponse(t *team.Team) TeamResponse {
	return TeamResponse{
		ID:          t.ID,
		LeagueID:    t.LeagueID,
		LeagueName:  t.LeagueName,
		SportID:     t.SportID,
		Name:        t.Name,
		CaptainID:   t.CaptainID,
		CaptainName: t.CaptainName,
		MemberCount: t.MemberCount,
		CreatedAt:   t.CreatedAt,
	}
}
