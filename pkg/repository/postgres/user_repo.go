package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/softdelete"
)

const pgUniqueViolation = "23505"
const pgForeignKeyViolation = "23503"

// UserRepository implements account.UserRepository backed by PostgreSQL.
// Uniqueness of email/username is enforced among active rows only, so a
// soft-deleted account's email becomes reusable.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) (*UserRepository, error) {
	repo := &UserRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *UserRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL,
	username TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	usage_type TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	is_staff BOOLEAN NOT NULL DEFAULT FALSE,
	is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
	password_hash TEXT NOT NULL,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uniq_users_email_active
	ON users (email) WHERE NOT is_removed;
CREATE UNIQUE INDEX IF NOT EXISTS uniq_users_username_active
	ON users (username) WHERE NOT is_removed;
`)
	return err
}

const userColumns = `id, email, username, first_name, last_name,
	COALESCE(usage_type, ''), is_active, is_staff, is_superuser,
	password_hash, is_removed, created_at, updated_at`

func scanUser(row pgx.Row) (account.User, error) {
	var u account.User
	var usage string
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&usage, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
		&u.PasswordHash, &u.IsRemoved, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.User{}, account.ErrNotFound
		}
		return account.User{}, err
	}
	u.UsageType = account.UsageType(usage)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, user account.User) error {
	var usage *string
	if user.UsageType != "" {
		s := string(user.UsageType)
		usage = &s
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO users (id, email, username, first_name, last_name, usage_type,
	is_active, is_staff, is_superuser, password_hash, is_removed,
	created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`, user.ID, strings.ToLower(user.Email), user.Username, user.FirstName,
		user.LastName, usage, user.IsActive, user.IsStaff, user.IsSuperuser,
		user.PasswordHash, user.IsRemoved, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return account.ErrUsernameTaken
			}
			return account.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID, view softdelete.View) (account.User, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
SELECT %s FROM users WHERE id = $1 AND %s
`, userColumns, view.SQL("is_removed")), id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string, view softdelete.View) (account.User, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
SELECT %s FROM users WHERE email = $1 AND %s
`, userColumns, view.SQL("is_removed")), strings.ToLower(email))
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, view softdelete.View, limit, offset int) ([]account.User, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT %s FROM users WHERE %s
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, userColumns, view.SQL("is_removed")), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []account.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, user account.User) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE users SET first_name = $2, last_name = $3, is_active = $4,
	password_hash = $5, updated_at = $6
WHERE id = $1 AND NOT is_removed
`, user.ID, user.FirstName, user.LastName, user.IsActive,
		user.PasswordHash, time.Now().UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

// Delete flags the record. Deleting an already-removed record is a no-op.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE users SET is_removed = TRUE, updated_at = $2 WHERE id = $1
`, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

// Restore clears the flag. Fails with ErrEmailTaken when the email has
// been re-registered since the soft delete.
func (r *UserRepository) Restore(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE users SET is_removed = FALSE, updated_at = $2 WHERE id = $1
`, id, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return account.ErrEmailTaken
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

// Purge physically erases the record, bypassing the flag. Purging a
// nonexistent record is a no-op. A job seeker profile blocks the purge
// (RESTRICT); a company profile goes down with its user (CASCADE).
func (r *UserRepository) Purge(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return account.ErrUserProtected
		}
		return err
	}
	return nil
}
