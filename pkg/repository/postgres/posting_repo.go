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

	"github.com/jobport/jobport/pkg/posting"
	"github.com/jobport/jobport/pkg/softdelete"
)

// PostingRepository implements posting.Repository. The "one active
// photo per posting" invariant is a partial unique index; AddPhoto does
// the rotation in a transaction and retries once when a concurrent
// rotation wins the index race.
type PostingRepository struct {
	pool *pgxpool.Pool
}

func NewPostingRepository(pool *pgxpool.Pool) (*PostingRepository, error) {
	repo := &PostingRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PostingRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS job_postings (
	id UUID PRIMARY KEY,
	company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	expiry_date TIMESTAMPTZ NOT NULL,
	salary_range_start INT,
	salary_range_end INT,
	working_hours TEXT NOT NULL DEFAULT '',
	active_photo_id UUID,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_postings_company ON job_postings (company_id);
CREATE TABLE IF NOT EXISTS job_posting_photos (
	id UUID PRIMARY KEY,
	job_posting_id UUID NOT NULL REFERENCES job_postings(id) ON DELETE CASCADE,
	file_path TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uniq_posting_photo_active
	ON job_posting_photos (job_posting_id) WHERE is_active AND NOT is_removed;
CREATE TABLE IF NOT EXISTS job_posting_skills (
	job_posting_id UUID NOT NULL REFERENCES job_postings(id) ON DELETE CASCADE,
	skill_id UUID NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
	PRIMARY KEY (job_posting_id, skill_id)
);
CREATE TABLE IF NOT EXISTS job_posting_industry_areas (
	job_posting_id UUID NOT NULL REFERENCES job_postings(id) ON DELETE CASCADE,
	industry_area_id UUID NOT NULL REFERENCES industry_areas(id) ON DELETE CASCADE,
	PRIMARY KEY (job_posting_id, industry_area_id)
);
`)
	return err
}

const postingColumns = `id, company_id, title, description, expiry_date,
	salary_range_start, salary_range_end, working_hours, active_photo_id,
	is_removed, created_at, updated_at`

func scanPosting(row pgx.Row) (posting.JobPosting, error) {
	var p posting.JobPosting
	err := row.Scan(&p.ID, &p.CompanyID, &p.Title, &p.Description, &p.ExpiryDate,
		&p.SalaryRangeStart, &p.SalaryRangeEnd, &p.WorkingHours, &p.ActivePhotoID,
		&p.IsRemoved, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostingRepository) Create(ctx context.Context, p posting.JobPosting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
INSERT INTO job_postings (id, company_id, title, description, expiry_date,
	salary_range_start, salary_range_end, working_hours, active_photo_id,
	is_removed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`, p.ID, p.CompanyID, p.Title, p.Description, p.ExpiryDate,
		p.SalaryRangeStart, p.SalaryRangeEnd, p.WorkingHours, p.ActivePhotoID,
		p.IsRemoved, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	if err := replaceRelations(ctx, tx, "job_posting_skills", "job_posting_id", "skill_id", p.ID, p.SkillIDs); err != nil {
		return err
	}
	if err := replaceRelations(ctx, tx, "job_posting_industry_areas", "job_posting_id", "industry_area_id", p.ID, p.IndustryAreaIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostingRepository) GetByID(ctx context.Context, id uuid.UUID, view softdelete.View) (posting.JobPosting, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
SELECT %s FROM job_postings WHERE id = $1 AND %s
`, postingColumns, view.SQL("is_removed")), id)
	p, err := scanPosting(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return posting.JobPosting{}, posting.ErrNotFound
		}
		return posting.JobPosting{}, err
	}
	if err := r.loadRelations(ctx, &p); err != nil {
		return posting.JobPosting{}, err
	}
	return p, nil
}

func (r *PostingRepository) List(ctx context.Context, view softdelete.View, limit, offset int) ([]posting.JobPosting, error) {
	return r.list(ctx, fmt.Sprintf(`
SELECT %s FROM job_postings WHERE %s
ORDER BY created_at DESC LIMIT $1 OFFSET $2
`, postingColumns, view.SQL("is_removed")), limit, offset)
}

func (r *PostingRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, view softdelete.View, limit, offset int) ([]posting.JobPosting, error) {
	return r.list(ctx, fmt.Sprintf(`
SELECT %s FROM job_postings WHERE company_id = $3 AND %s
ORDER BY created_at DESC LIMIT $1 OFFSET $2
`, postingColumns, view.SQL("is_removed")), limit, offset, companyID)
}

func (r *PostingRepository) list(ctx context.Context, query string, args ...any) ([]posting.JobPosting, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []posting.JobPosting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range res {
		if err := r.loadRelations(ctx, &res[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *PostingRepository) Update(ctx context.Context, p posting.JobPosting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `
UPDATE job_postings SET title = $2, description = $3, expiry_date = $4,
	salary_range_start = $5, salary_range_end = $6, working_hours = $7,
	active_photo_id = $8, updated_at = $9
WHERE id = $1 AND NOT is_removed
`, p.ID, p.Title, p.Description, p.ExpiryDate, p.SalaryRangeStart,
		p.SalaryRangeEnd, p.WorkingHours, p.ActivePhotoID, p.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return posting.ErrNotFound
	}
	if err := replaceRelations(ctx, tx, "job_posting_skills", "job_posting_id", "skill_id", p.ID, p.SkillIDs); err != nil {
		return err
	}
	if err := replaceRelations(ctx, tx, "job_posting_industry_areas", "job_posting_id", "industry_area_id", p.ID, p.IndustryAreaIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE job_postings SET is_removed = TRUE, updated_at = NOW()
WHERE id = $1 AND NOT is_removed
`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return posting.ErrNotFound
	}
	return nil
}

func (r *PostingRepository) Restore(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE job_postings SET is_removed = FALSE, updated_at = NOW()
WHERE id = $1 AND is_removed
`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return posting.ErrNotFound
	}
	return nil
}

func (r *PostingRepository) Purge(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	return err
}

// AddPhoto deactivates the posting's current active photo, inserts the
// new one, and repoints active_photo_id, all in one transaction. A
// concurrent rotation surfaces as a unique violation on the partial
// index; one retry rereads the new state.
func (r *PostingRepository) AddPhoto(ctx context.Context, photo posting.Photo) error {
	err := r.addPhotoOnce(ctx, photo)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return r.addPhotoOnce(ctx, photo)
	}
	return err
}

func (r *PostingRepository) addPhotoOnce(ctx context.Context, photo posting.Photo) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if photo.IsActive {
		_, err = tx.Exec(ctx, `
UPDATE job_posting_photos SET is_active = FALSE, updated_at = $2
WHERE job_posting_id = $1 AND is_active AND NOT is_removed
`, photo.JobPostingID, time.Now().UTC())
		if err != nil {
			return err
		}
	}
	_, err = tx.Exec(ctx, `
INSERT INTO job_posting_photos (id, job_posting_id, file_path, is_active,
	is_removed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, photo.ID, photo.JobPostingID, photo.FilePath, photo.IsActive,
		photo.IsRemoved, photo.CreatedAt, photo.UpdatedAt)
	if err != nil {
		return err
	}
	if photo.IsActive {
		cmd, err := tx.Exec(ctx, `
UPDATE job_postings SET active_photo_id = $2, updated_at = $3
WHERE id = $1 AND NOT is_removed
`, photo.JobPostingID, photo.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return posting.ErrNotFound
		}
	}
	return tx.Commit(ctx)
}

func (r *PostingRepository) ListPhotos(ctx context.Context, postingID uuid.UUID, view softdelete.View) ([]posting.Photo, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT id, job_posting_id, file_path, is_active, is_removed, created_at, updated_at
FROM job_posting_photos WHERE job_posting_id = $1 AND %s
ORDER BY created_at
`, view.SQL("is_removed")), postingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []posting.Photo
	for rows.Next() {
		var ph posting.Photo
		if err := rows.Scan(&ph.ID, &ph.JobPostingID, &ph.FilePath, &ph.IsActive,
			&ph.IsRemoved, &ph.CreatedAt, &ph.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, ph)
	}
	return res, rows.Err()
}

// DeletePhoto soft-deletes the photo and, when it was the active one,
// clears the posting's active_photo_id.
func (r *PostingRepository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
UPDATE job_posting_photos SET is_removed = TRUE, is_active = FALSE, updated_at = NOW()
WHERE id = $1 AND NOT is_removed
RETURNING job_posting_id
`, id)
	var postingID uuid.UUID
	if err := row.Scan(&postingID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return posting.ErrNotFound
		}
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE job_postings SET active_photo_id = NULL, updated_at = NOW()
WHERE id = $1 AND active_photo_id = $2
`, postingID, id)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostingRepository) DeletePhotosByPosting(ctx context.Context, postingID uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
UPDATE job_posting_photos SET is_removed = TRUE, is_active = FALSE, updated_at = NOW()
WHERE job_posting_id = $1 AND NOT is_removed
`, postingID)
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, `
UPDATE job_postings SET active_photo_id = NULL, updated_at = NOW()
WHERE id = $1 AND active_photo_id IS NOT NULL
`, postingID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostingRepository) loadRelations(ctx context.Context, p *posting.JobPosting) error {
	var err error
	p.SkillIDs, err = r.ids(ctx, `SELECT skill_id FROM job_posting_skills WHERE job_posting_id = $1`, p.ID)
	if err != nil {
		return err
	}
	p.IndustryAreaIDs, err = r.ids(ctx, `SELECT industry_area_id FROM job_posting_industry_areas WHERE job_posting_id = $1`, p.ID)
	return err
}

func (r *PostingRepository) ids(ctx context.Context, query string, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []uuid.UUID
	for rows.Next() {
		var rid uuid.UUID
		if err := rows.Scan(&rid); err != nil {
			return nil, err
		}
		res = append(res, rid)
	}
	return res, rows.Err()
}
