package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// likeEscaper makes % and _ match literally. Backslash is the default LIKE escape in Postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// rosterUsers unifies profiles and auth identities into one row per person.
// A profile without a confirmed identity, or an identity without a profile,
// still appears, with the missing side NULL.
const rosterUsers = `
SELECT
	COALESCE(p.id, a.id) AS id,
	p.id AS profile_id,
	a.id AS auth_id,
	p.name,
	COALESCE(p.email, a.email) AS email,
	p.phone,
	COALESCE(p.is_admin, false) AS is_admin,
	COALESCE(p.is_facilitator, false) AS is_facilitator,
	COALESCE((
		SELECT array_agg(tm.team_id ORDER BY tm.team_id)
		FROM public.team_members tm
		WHERE tm.user_id = COALESCE(p.id, a.id)
	), '{}') AS team_ids,
	COALESCE((
		SELECT array_agg(DISTINCT t.league_id)
		FROM public.team_members tm
		JOIN public.teams t ON t.id = tm.team_id
		WHERE tm.user_id = COALESCE(p.id, a.id)
	), '{}') AS league_ids,
	CASE
		WHEN p.id IS NULL AND a.email_confirmed_at IS NULL THEN 'unconfirmed'
		WHEN p.id IS NULL THEN 'confirmed_no_profile'
		WHEN COALESCE(btrim(p.name), '') = '' OR COALESCE(btrim(p.phone), '') = '' THEN 'profile_incomplete'
		WHEN EXISTS (
			SELECT 1
			FROM public.team_members tm
			JOIN public.teams t ON t.id = tm.team_id
			JOIN public.leagues l ON l.id = t.league_id
			WHERE tm.user_id = p.id AND l.active
		) THEN 'active'
		ELSE 'pending'
	END AS status,
	COALESCE((
		SELECT sum(lp.amount_due) FROM public.league_payments lp WHERE lp.user_id = COALESCE(p.id, a.id)
	), 0) AS amount_due,
	COALESCE((
		SELECT sum(lp.amount_paid) FROM public.league_payments lp WHERE lp.user_id = COALESCE(p.id, a.id)
	), 0) AS amount_paid,
	COALESCE(p.created_at, a.created_at) AS created_at
FROM public.profiles p
FULL OUTER JOIN public.auth_users a ON a.id = p.id`

var sortColumns = map[SortField]string{
	SortName:      "u.name",
	SortEmail:     "u.email",
	SortPhone:     "u.phone",
	SortStatus:    "u.status",
	SortCreatedAt: "u.created_at",
	SortTotalOwed: "u.amount_due",
	SortTotalPaid: "u.amount_paid",
}

// PgxSource is the paginated listing procedure backed by Postgres.
type PgxSource struct {
	pool *pgxpool.Pool
}

func NewPgxSource(pool *pgxpool.Pool) *PgxSource {
	return &PgxSource{pool: pool}
}

// buildListQuery applies filters conjunctively. Within each sport set a user
// matches if any listed sport matches.
func buildListQuery(params ListParams) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"u.profile_id::text", "u.auth_id::text", "u.name", "u.email", "u.phone",
		"u.is_admin", "u.is_facilitator", "u.team_ids", "u.league_ids", "u.status",
		"u.amount_due::text", "u.amount_paid::text",
		"count(*) OVER() AS total_count",
	).
		From("(" + rosterUsers + ") u")

	if params.Search != "" {
		pattern := "%" + escapeLike(params.Search) + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"u.name": pattern},
			squirrel.ILike{"u.email": pattern},
			squirrel.ILike{"u.phone": pattern},
		})
	}
	if params.Administrator {
		query = query.Where(squirrel.Eq{"u.is_admin": true})
	}
	if params.Facilitator {
		query = query.Where(squirrel.Eq{"u.is_facilitator": true})
	}
	if params.ActivePlayer {
		query = query.Where(squirrel.Eq{"u.status": string(StatusActive)})
	}
	if params.PendingUsers {
		query = query.Where(squirrel.NotEq{"u.status": string(StatusActive)})
	}
	if params.PlayersNotInLeague {
		query = query.Where("cardinality(u.league_ids) = 0")
	}
	if len(params.SportsInLeague) > 0 {
		query = query.Where(`EXISTS (
			SELECT 1
			FROM public.team_members tm
			JOIN public.teams t ON t.id = tm.team_id
			JOIN public.leagues l ON l.id = t.league_id
			WHERE tm.user_id = u.id AND l.sport_id = ANY(?)
		)`, params.SportsInLeague)
	}
	if len(params.SportsWithSkill) > 0 {
		query = query.Where(`EXISTS (
			SELECT 1 FROM public.user_sport_skills s
			WHERE s.user_id = u.id AND s.sport_id = ANY(?)
		)`, params.SportsWithSkill)
	}

	orderBy, ok := sortColumns[params.SortField]
	if !ok {
		orderBy = sortColumns[SortName]
	}
	orderDir := "ASC"
	if params.SortDirection == SortDesc {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy+" "+orderDir+" NULLS LAST", "u.id ASC")

	if params.Limit > 0 {
		query = query.Limit(uint64(params.Limit))
	}
	if params.Offset > 0 {
		query = query.Offset(uint64(params.Offset))
	}

	return query.ToSql()
}

func (s *PgxSource) ListUsers(ctx context.Context, params ListParams) ([]Row, error) {
	sql, args, err := buildListQuery(params)
	if err != nil {
		return nil, fmt.Errorf("build list roster query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list roster failed: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r         Row
			due, paid string
		)
		if err := rows.Scan(
			&r.ProfileID, &r.AuthID, &r.Name, &r.Email, &r.Phone,
			&r.IsAdmin, &r.IsFacilitator, &r.TeamIDs, &r.LeagueIDs, &r.Status,
			&due, &paid,
			&r.TotalCount,
		); err != nil {
			return nil, fmt.Errorf("scan roster row failed: %w", err)
		}
		if r.AmountDue, err = decimal.NewFromString(due); err != nil {
			return nil, fmt.Errorf("parse amount due %q: %w", due, err)
		}
		if r.AmountPaid, err = decimal.NewFromString(paid); err != nil {
			return nil, fmt.Errorf("parse amount paid %q: %w", paid, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster rows failed: %w", err)
	}

	return out, nil
}
