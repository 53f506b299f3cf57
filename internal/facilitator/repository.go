package facilitator

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	LeagueExists(ctx context.Context, leagueID int64) (bool, error)
	ListTiers(ctx context.Context, leagueID int64) ([]Tier, error)
	// ListActive returns facilitators ordered by name.
	ListActive(ctx context.Context) ([]Facilitator, error)
	// SaveAssignments writes every assignment or none.
	SaveAssignments(ctx context.Context, assignments []Assignment) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) LeagueExists(ctx context.Context, leagueID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM public.leagues WHERE id = $1)", leagueID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check league failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) ListTiers(ctx context.Context, leagueID int64) ([]Tier, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "league_id", "position", "facilitator_id::text").
		From("public.tiers").
		Where(squirrel.Eq{"league_id": leagueID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tiers query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tiers failed: %w", err)
	}
	defer rows.Close()

	var tiers []Tier
	for rows.Next() {
		var t Tier
		if err := rows.Scan(&t.ID, &t.LeagueID, &t.Position, &t.FacilitatorID); err != nil {
			return nil, fmt.Errorf("scan tier failed: %w", err)
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (r *pgxRepository) ListActive(ctx context.Context) ([]Facilitator, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("p.id::text", "COALESCE(p.name, '')", "COALESCE(p.email, a.email)").
		From("public.profiles p").
		Join("public.auth_users a ON a.id = p.id").
		Where(squirrel.Eq{"p.is_facilitator": true}).
		OrderBy("lower(p.name) ASC NULLS LAST", "p.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list facilitators query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list facilitators failed: %w", err)
	}
	defer rows.Close()

	var out []Facilitator
	for rows.Next() {
		var f Facilitator
		if err := rows.Scan(&f.ID, &f.Name, &f.Email); err != nil {
			return nil, fmt.Errorf("scan facilitator failed: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *pgxRepository) SaveAssignments(ctx context.Context, assignments []Assignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save assignments failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	for _, a := range assignments {
		query, args, err := psql.Update("public.tiers").
			Set("facilitator_id", a.FacilitatorID).
			Where(squirrel.Eq{"id": a.TierID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build assign tier query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("assign tier %d failed: %w", a.TierID, err)
		}
	}

	return tx.Commit(ctx)
}
