package registration

import "time"

// View is the JSON shape of a feed entry, shared by the feed endpoint and the stream.
type View struct {
	PaymentID  int64     `json:"payment_id"`
	UserID     string    `json:"user_id"`
	UserName   *string   `json:"user_name"`
	UserEmail  *string   `json:"user_email"`
	LeagueID   int64     `json:"league_id"`
	LeagueName string    `json:"league_name"`
	TeamID     *int64    `json:"team_id"`
	TeamName   *string   `json:"team_name"`
	AmountDue  string    `json:"amount_due"`
	AmountPaid string    `json:"amount_paid"`
	TotalOwed  string    `json:"total_owed"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewView(r Registration) View {
	return View{
		PaymentID:  r.PaymentID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		UserEmail:  r.UserEmail,
		LeagueID:   r.LeagueID,
		LeagueName: r.LeagueName,
		TeamID:     r.TeamID,
		TeamName:   r.TeamName,
		AmountDue:  r.AmountDue.StringFixed(2),
		AmountPaid: r.AmountPaid.StringFixed(2),
		TotalOwed:  r.TotalOwed.StringFixed(2),
		CreatedAt:  r.CreatedAt,
	}
}
