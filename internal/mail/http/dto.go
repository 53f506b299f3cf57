package http

import "github.com/nekogravitycat/league-admin-backend/internal/mail"

type BulkEmailRequest struct {
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Recipients []string `json:"recipients"`
	LeagueID   *int64   `json:"league_id" binding:"omitempty,min=1"`
}

type FailureResponse struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type BulkEmailResponse struct {
	Sent     int               `json:"sent"`
	Failed   int               `json:"failed"`
	Failures []FailureResponse `json:"failures"`
}

func NewBulkEmailResponse(r *mail.BulkResult) BulkEmailResponse {
	failures := make([]FailureResponse, len(r.Failures))
	for i, f := range r.Failures {
		failures[i] = FailureResponse{Email: f.Email, Reason: f.Reason}
	}
	return BulkEmailResponse{Sent: r.Sent, Failed: r.Failed, Failures: failures}
}
