package http

import "github.com/nekogravitycat/league-admin-backend/internal/facilitator"

type LeagueURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type AssignmentResponse struct {
	TierID        int64  `json:"tier_id"`
	Position      int    `json:"position"`
	FacilitatorID string `json:"facilitator_id"`
	Name          string `json:"facilitator_name"`
}

type AssignResponse struct {
	LeagueID    int64                `json:"league_id"`
	Assignments []AssignmentResponse `json:"assignments"`
}

func NewAssignResponse(leagueID int64, as []facilitator.Assignment) AssignResponse {
	items := make([]AssignmentResponse, len(as))
	for i, a := range as {
		items[i] = AssignmentResponse{
			TierID:        a.TierID,
			Position:      a.Position,
			FacilitatorID: a.FacilitatorID,
			Name:          a.Name,
		}
	}
	return AssignResponse{LeagueID: leagueID, Assignments: items}
}
