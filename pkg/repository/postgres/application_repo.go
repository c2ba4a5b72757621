package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobport/jobport/pkg/application"
	"github.com/jobport/jobport/pkg/softdelete"
)

// ApplicationRepository implements application.Repository. A partial
// unique index keeps one live application per (seeker, posting) pair;
// withdrawing frees the slot for a fresh apply.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) (*ApplicationRepository, error) {
	repo := &ApplicationRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ApplicationRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS applications (
	id UUID PRIMARY KEY,
	job_seeker_id UUID NOT NULL REFERENCES job_seekers(id) ON DELETE CASCADE,
	job_posting_id UUID NOT NULL REFERENCES job_postings(id) ON DELETE CASCADE,
	status TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uniq_applications_seeker_posting
	ON applications (job_seeker_id, job_posting_id) WHERE NOT is_removed;
CREATE INDEX IF NOT EXISTS idx_applications_posting ON applications (job_posting_id);
`)
	return err
}

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO applications (id, job_seeker_id, job_posting_id, status,
	applied_at, is_removed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, app.ID, app.JobSeekerID, app.JobPostingID, string(app.Status),
		app.AppliedAt, app.IsRemoved, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return application.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID, view softdelete.View) (application.Application, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
SELECT id, job_seeker_id, job_posting_id, status, applied_at,
	is_removed, created_at, updated_at
FROM applications WHERE id = $1 AND %s
`, view.SQL("is_removed")), id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) ListBySeeker(ctx context.Context, seekerID uuid.UUID, view softdelete.View, limit, offset int) ([]application.Application, error) {
	return r.list(ctx, "job_seeker_id", seekerID, view, limit, offset)
}

func (r *ApplicationRepository) ListByPosting(ctx context.Context, postingID uuid.UUID, view softdelete.View, limit, offset int) ([]application.Application, error) {
	return r.list(ctx, "job_posting_id", postingID, view, limit, offset)
}

func (r *ApplicationRepository) list(ctx context.Context, column string, id uuid.UUID, view softdelete.View, limit, offset int) ([]application.Application, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT id, job_seeker_id, job_posting_id, status, applied_at,
	is_removed, created_at, updated_at
FROM applications WHERE %s = $1 AND %s
ORDER BY applied_at DESC LIMIT $2 OFFSET $3
`, column, view.SQL("is_removed")), id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, app)
	}
	return res, rows.Err()
}

// applied_at is write-once; status is the only mutable column.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status application.Status, updatedAt time.Time) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE applications SET status = $2, updated_at = $3
WHERE id = $1 AND NOT is_removed
`, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE applications SET is_removed = TRUE, updated_at = NOW()
WHERE id = $1 AND NOT is_removed
`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) Purge(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	return err
}

func scanApplication(row pgx.Row) (application.Application, error) {
	var app application.Application
	var status string
	err := row.Scan(&app.ID, &app.JobSeekerID, &app.JobPostingID, &status,
		&app.AppliedAt, &app.IsRemoved, &app.CreatedAt, &app.UpdatedAt)
	app.Status = application.Status(status)
	return app, err
}
