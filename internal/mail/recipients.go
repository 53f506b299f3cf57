package mail

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RecipientSource resolves a league to the addresses of everyone in it.
type RecipientSource interface {
	LeagueEmails(ctx context.Context, leagueID int64) ([]string, error)
}

type pgxRecipients struct {
	pool *pgxpool.Pool
}

func NewPgxRecipients(pool *pgxpool.Pool) RecipientSource {
	return &pgxRecipients{pool: pool}
}

// League members are team members plus individual registrants.
const leagueEmails = `
SELECT DISTINCT lower(COALESCE(p.email, a.email))
FROM public.auth_users a
LEFT JOIN public.profiles p ON p.id = a.id
WHERE a.id IN (
    SELECT m.user_id FROM public.team_members m
    JOIN public.teams t ON t.id = m.team_id
    WHERE t.league_id = $1
    UNION
    SELECT lp.user_id FROM public.league_payments lp WHERE lp.league_id = $1
)
ORDER BY 1`

func (r *pgxRecipients) LeagueEmails(ctx context.Context, leagueID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, leagueEmails, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league emails failed: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan league email failed: %w", err)
		}
		out = append(out, email)
	}
	return out, rows.Err()
}
