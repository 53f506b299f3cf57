package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	List(ctx context.Context, filter TeamFilter) ([]*Team, int, error)
	GetByID(ctx context.Context, id int64) (*Team, error)
	GetLeague(ctx context.Context, id int64) (*League, error)
	SetLeague(ctx context.Context, teamID, leagueID int64) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectTeams() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"t.id", "t.league_id", "l.name", "l.sport_id", "t.name",
		"t.captain_id::text", "cp.name",
		"(SELECT count(*) FROM public.team_members m WHERE m.team_id = t.id)",
		"t.created_at",
	).
		From("public.teams t").
		Join("public.leagues l ON l.id = t.league_id").
		LeftJoin("public.profiles cp ON cp.id = t.captain_id")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTeam(row scanner, extra ...any) (*Team, error) {
	var t Team
	dest := []any{
		&t.ID, &t.LeagueID, &t.LeagueName, &t.SportID, &t.Name,
		&t.CaptainID, &t.CaptainName, &t.MemberCount, &t.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter TeamFilter) ([]*Team, int, error) {
	q := selectTeams().Column("count(*) OVER() AS total_count")
	if filter.LeagueID != nil {
		q = q.Where(squirrel.Eq{"t.league_id": *filter.LeagueID})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query, args, err := q.OrderBy("l.name ASC", "t.name ASC", "t.id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list teams query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list teams failed: %w", err)
	}
	defer rows.Close()

	var (
		teams []*Team
		total int
	)
	for rows.Next() {
		t, err := scanTeam(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan team failed: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate teams failed: %w", err)
	}
	return teams, total, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Team, error) {
	query, args, err := selectTeams().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get team query failed: %w", err)
	}

	t, err := scanTeam(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get team failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) GetLeague(ctx context.Context, id int64) (*League, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "sport_id", "name", "active").
		From("public.leagues").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get league query failed: %w", err)
	}

	var l League
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&l.ID, &l.SportID, &l.Name, &l.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("get league failed: %w", err)
	}
	return &l, nil
}

func (r *pgxRepository) SetLeague(ctx context.Context, teamID, leagueID int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.teams").
		Set("league_id", leagueID).
		Where(squirrel.Eq{"id": teamID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build transfer team query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transfer team failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
