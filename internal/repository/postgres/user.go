package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kanna-admin/kanna/internal/domain"
	"github.com/kanna-admin/kanna/internal/service/user"
)

const (
	uniqueViolation   = "23505"
	emailUniqueIndex  = "users_email_key"
	userSelectColumns = `id, first_name, last_name, email, created_at, updated_at`
)

// UserRepo implements user.Repository against PostgreSQL.
type UserRepo struct{ db *sql.DB }

// NewUserRepo creates a Postgres-backed user repository.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, f domain.UserFields) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, id, f.FirstName, f.LastName, f.Email)
	if err != nil {
		return "", mapWriteError("create user", err)
	}
	return id, nil
}

func (r *UserRepo) FetchByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userSelectColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, f domain.UserFields) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, updated_at = GREATEST(NOW(), created_at)
		WHERE id = $1
	`, id, f.FirstName, f.LastName, f.Email)
	if err != nil {
		return mapWriteError("update user", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userSelectColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	var err error
	if excludeID == "" {
		err = r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email,
		).Scan(&exists)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`, email, excludeID,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("email taken: %w", err)
	}
	return exists, nil
}

// Count returns the number of stored users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == emailUniqueIndex {
		return user.NewEmailConflict()
	}
	return fmt.Errorf("%s: %w", op, err)
}
