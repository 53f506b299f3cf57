package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	UpdateProfile(ctx context.Context, id string, req UpdateUserRequest) error
	// UpdatePassword stores hash unless the password already changed at or
	// after unchangedSince, in which case it returns ErrNotFound.
	UpdatePassword(ctx context.Context, id, hash string, unchangedSince time.Time) error
	Delete(ctx context.Context, id string) error
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

func selectUser() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"a.id", "a.email", "a.password_hash", "a.email_confirmed_at", "a.created_at", "a.last_login_at",
		"a.password_changed_at",
		"p.id IS NOT NULL", "p.name", "p.phone",
		"COALESCE(p.is_admin, false)", "COALESCE(p.is_facilitator, false)",
	).
		From("public.auth_users a").
		LeftJoin("public.profiles p ON p.id = a.id")
}

func (r *pgxUserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*User, error) {
	query, args, err := selectUser().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user query failed: %w", err)
	}

	var u User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.EmailConfirmedAt, &u.CreatedAt, &u.LastLoginAt,
		&u.PasswordChangedAt,
		&u.HasProfile, &u.Name, &u.Phone,
		&u.IsAdmin, &u.IsFacilitator,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	return &u, nil
}

func (r *pgxUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, squirrel.Eq{"a.email": email})
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, squirrel.Eq{"a.id": id})
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.auth_users").
		Columns("email", "password_hash", "email_confirmed_at").
		Values(u.Email, u.PasswordHash, u.EmailConfirmedAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create user query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("create user failed: %w", err)
	}

	if u.HasProfile {
		query, args, err = psql.Insert("public.profiles").
			Columns("id", "email", "name", "phone", "is_admin", "is_facilitator").
			Values(u.ID, u.Email, u.Name, u.Phone, u.IsAdmin, u.IsFacilitator).
			ToSql()
		if err != nil {
			return fmt.Errorf("build create profile query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("create profile failed: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *pgxUserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.auth_users").
		Set("last_login_at", t).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update last login query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update last login failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile writes the non-nil fields. A profile row is created on first edit.
func (r *pgxUserRepository) UpdateProfile(ctx context.Context, id string, req UpdateUserRequest) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	// Ensure the profile exists so the update below always has a row.
	ensure, args, err := psql.Insert("public.profiles").
		Columns("id", "email").
		Select(psql.Select("id", "email").From("public.auth_users").Where(squirrel.Eq{"id": id})).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build ensure profile query failed: %w", err)
	}
	if _, err := r.pool.Exec(ctx, ensure, args...); err != nil {
		return fmt.Errorf("ensure profile failed: %w", err)
	}

	update := psql.Update("public.profiles").Where(squirrel.Eq{"id": id})
	changed := false
	if req.Name != nil {
		update = update.Set("name", *req.Name)
		changed = true
	}
	if req.Phone != nil {
		update = update.Set("phone", *req.Phone)
		changed = true
	}
	if req.IsAdmin != nil {
		update = update.Set("is_admin", *req.IsAdmin)
		changed = true
	}
	if req.IsFacilitator != nil {
		update = update.Set("is_facilitator", *req.IsFacilitator)
		changed = true
	}
	if !changed {
		return nil
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update profile query failed: %w", err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxUserRepository) UpdatePassword(ctx context.Context, id, hash string, unchangedSince time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.auth_users").
		Set("password_hash", hash).
		Set("password_changed_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.Eq{"password_changed_at": nil},
			squirrel.Lt{"password_changed_at": unchangedSince},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update password failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the identity; the profile, memberships and skills cascade.
func (r *pgxUserRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.auth_users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
