package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads registrations from the payments table.
type Repository interface {
	GetByPaymentID(ctx context.Context, id int64) (*Registration, error)
	ListRecent(ctx context.Context, limit int) ([]*Registration, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectRegistration() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"lp.id", "lp.user_id::text", "p.name", "COALESCE(p.email, a.email)",
		"lp.league_id", "l.name", "lp.team_id", "t.name",
		"lp.amount_due::text", "lp.amount_paid::text", "lp.created_at",
	).
		From("public.league_payments lp").
		Join("public.leagues l ON l.id = lp.league_id").
		LeftJoin("public.teams t ON t.id = lp.team_id").
		LeftJoin("public.profiles p ON p.id = lp.user_id").
		LeftJoin("public.auth_users a ON a.id = lp.user_id")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner) (*Registration, error) {
	var (
		r         Registration
		due, paid string
	)
	if err := row.Scan(
		&r.PaymentID, &r.UserID, &r.UserName, &r.UserEmail,
		&r.LeagueID, &r.LeagueName, &r.TeamID, &r.TeamName,
		&due, &paid, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if r.AmountDue, err = decimal.NewFromString(due); err != nil {
		return nil, fmt.Errorf("parse amount due %q: %w", due, err)
	}
	if r.AmountPaid, err = decimal.NewFromString(paid); err != nil {
		return nil, fmt.Errorf("parse amount paid %q: %w", paid, err)
	}
	return &r, nil
}

func (r *pgxRepository) GetByPaymentID(ctx context.Context, id int64) (*Registration, error) {
	query, args, err := selectRegistration().Where(squirrel.Eq{"lp.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get registration query failed: %w", err)
	}

	reg, err := scanRegistration(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration failed: %w", err)
	}
	return reg, nil
}

func (r *pgxRepository) ListRecent(ctx context.Context, limit int) ([]*Registration, error) {
	query, args, err := selectRegistration().
		OrderBy("lp.created_at DESC", "lp.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list registrations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations failed: %w", err)
	}
	defer rows.Close()

	var out []*Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration failed: %w", err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations failed: %w", err)
	}
	return out, nil
}
