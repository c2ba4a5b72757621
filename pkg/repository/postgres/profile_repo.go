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

	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/softdelete"
)

// ProfileRepository implements account.ProfileRepository. Job seekers
// RESTRICT the owning user's purge; companies cascade with it. The "one
// active address per owner" invariant is a partial unique index, not an
// application-side check.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) (*ProfileRepository, error) {
	repo := &ProfileRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ProfileRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS job_seekers (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE RESTRICT,
	birth_date DATE,
	gender TEXT,
	education TEXT,
	active_address_id UUID,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS companies (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL DEFAULT '',
	establishment_year INT NOT NULL DEFAULT 0,
	phone_number TEXT NOT NULL DEFAULT '',
	active_address_id UUID,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS addresses (
	id UUID PRIMARY KEY,
	owner_kind TEXT NOT NULL,
	owner_id UUID NOT NULL,
	address_text TEXT NOT NULL,
	city TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_addresses_owner ON addresses (owner_kind, owner_id);
CREATE UNIQUE INDEX IF NOT EXISTS uniq_addresses_owner_active
	ON addresses (owner_kind, owner_id) WHERE is_active AND NOT is_removed;
CREATE TABLE IF NOT EXISTS seeker_files (
	id UUID PRIMARY KEY,
	job_seeker_id UUID REFERENCES job_seekers(id) ON DELETE SET NULL,
	file_path TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS job_seeker_skills (
	job_seeker_id UUID NOT NULL REFERENCES job_seekers(id) ON DELETE CASCADE,
	skill_id UUID NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
	PRIMARY KEY (job_seeker_id, skill_id)
);
CREATE TABLE IF NOT EXISTS company_industry_areas (
	company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	industry_area_id UUID NOT NULL REFERENCES industry_areas(id) ON DELETE CASCADE,
	PRIMARY KEY (company_id, industry_area_id)
);
`)
	return err
}

func (r *ProfileRepository) CreateJobSeeker(ctx context.Context, seeker account.JobSeeker) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO job_seekers (id, user_id, birth_date, gender, education,
	active_address_id, is_removed, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
`, seeker.ID, seeker.UserID, seeker.BirthDate, string(seeker.Gender),
		string(seeker.Education), seeker.ActiveAddressID, seeker.IsRemoved,
		seeker.CreatedAt, seeker.UpdatedAt)
	return err
}

func (r *ProfileRepository) GetJobSeekerByUser(ctx context.Context, userID uuid.UUID, view softdelete.View) (account.JobSeeker, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
SELECT id, user_id, birth_date, COALESCE(gender, ''), COALESCE(education, ''),
	active_address_id, is_removed, created_at, updated_at
FROM job_seekers WHERE user_id = $1 AND %s
`, view.SQL("is_removed")), userID)
	var s account.JobSeeker
	var gender, education string
	err := row.Scan(&s.ID, &s.UserID, &s.BirthDate, &gender, &education,
		&s.ActiveAddressID, &s.IsRemoved, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.JobSeeker{}, account.ErrNotFound
		}
		return account.JobSeeker{}, err
	}
	s.Gender = account.Gender(gender)
	s.Education = account.Education(education)
	s.SkillIDs, err = r.relatedIDs(ctx, `SELECT skill_id FROM job_seeker_skills WHERE job_seeker_id = $1`, s.ID)
	return s, err
}

func (r *ProfileRepository) UpdateJobSeeker(ctx context.Context, seeker account.JobSeeker) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `
UPDATE job_seekers SET birth_date = $2, gender = NULLIF($3, ''),
	education = NULLIF($4, ''), active_address_id = $5, updated_at = $6
WHERE id = $1 AND NOT is_removed
`, seeker.ID, seeker.BirthDate, string(seeker.Gender),
		string(seeker.Education), seeker.ActiveAddressID, seeker.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	if err := replaceRelations(ctx, tx, "job_seeker_skills", "job_seeker_id", "skill_id", seeker.ID, seeker.SkillIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ProfileRepository) CreateCompany(ctx context.Context, company account.Company) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO companies (id, user_id, name, establishment_year, phone_number,
	active_address_id, is_removed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, company.ID, company.UserID, company.Name, company.EstablishmentYear,
		company.PhoneNumber, company.ActiveAddressID, company.IsRemoved,
		company.CreatedAt, company.UpdatedAt)
	return err
}

func (r *ProfileRepository) GetCompanyByUser(ctx context.Context, userID uuid.UUID, view softdelete.View) (account.Company, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
SELECT id, user_id, name, establishment_year, phone_number,
	active_address_id, is_removed, created_at, updated_at
FROM companies WHERE user_id = $1 AND %s
`, view.SQL("is_removed")), userID)
	var c account.Company
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.EstablishmentYear,
		&c.PhoneNumber, &c.ActiveAddressID, &c.IsRemoved, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Company{}, account.ErrNotFound
		}
		return account.Company{}, err
	}
	c.IndustryAreaIDs, err = r.relatedIDs(ctx, `SELECT industry_area_id FROM company_industry_areas WHERE company_id = $1`, c.ID)
	return c, err
}

func (r *ProfileRepository) UpdateCompany(ctx context.Context, company account.Company) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `
UPDATE companies SET name = $2, establishment_year = $3, phone_number = $4,
	active_address_id = $5, updated_at = $6
WHERE id = $1 AND NOT is_removed
`, company.ID, company.Name, company.EstablishmentYear, company.PhoneNumber,
		company.ActiveAddressID, company.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	if err := replaceRelations(ctx, tx, "company_industry_areas", "company_id", "industry_area_id", company.ID, company.IndustryAreaIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateAddress deactivates the owner's previous active address and
// inserts the new one in a single transaction. A concurrent activation
// for the same owner aborts on the partial unique index.
func (r *ProfileRepository) CreateAddress(ctx context.Context, addr account.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if addr.IsActive {
		_, err = tx.Exec(ctx, `
UPDATE addresses SET is_active = FALSE, updated_at = $3
WHERE owner_kind = $1 AND owner_id = $2 AND is_active AND NOT is_removed
`, string(addr.OwnerKind), addr.OwnerID, time.Now().UTC())
		if err != nil {
			return err
		}
	}
	_, err = tx.Exec(ctx, `
INSERT INTO addresses (id, owner_kind, owner_id, address_text, city,
	is_active, is_removed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, addr.ID, string(addr.OwnerKind), addr.OwnerID, addr.AddressText,
		addr.City, addr.IsActive, addr.IsRemoved, addr.CreatedAt, addr.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return account.ErrAddressConflict
		}
		return err
	}
	return tx.Commit(ctx)
}

func (r *ProfileRepository) ListAddresses(ctx context.Context, kind account.OwnerKind, ownerID uuid.UUID, view softdelete.View) ([]account.Address, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT id, owner_kind, owner_id, address_text, city, is_active,
	is_removed, created_at, updated_at
FROM addresses WHERE owner_kind = $1 AND owner_id = $2 AND %s
ORDER BY created_at
`, view.SQL("is_removed")), string(kind), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []account.Address
	for rows.Next() {
		var a account.Address
		var ownerKind string
		if err := rows.Scan(&a.ID, &ownerKind, &a.OwnerID, &a.AddressText,
			&a.City, &a.IsActive, &a.IsRemoved, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.OwnerKind = account.OwnerKind(ownerKind)
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *ProfileRepository) CreateSeekerFile(ctx context.Context, file account.SeekerFile) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO seeker_files (id, job_seeker_id, file_path, is_active,
	is_removed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, file.ID, file.JobSeekerID, file.FilePath, file.IsActive,
		file.IsRemoved, file.CreatedAt, file.UpdatedAt)
	return err
}

func (r *ProfileRepository) ListSeekerFiles(ctx context.Context, seekerID uuid.UUID, view softdelete.View) ([]account.SeekerFile, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT id, job_seeker_id, file_path, is_active, is_removed, created_at, updated_at
FROM seeker_files WHERE job_seeker_id = $1 AND %s
ORDER BY created_at
`, view.SQL("is_removed")), seekerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []account.SeekerFile
	for rows.Next() {
		var f account.SeekerFile
		if err := rows.Scan(&f.ID, &f.JobSeekerID, &f.FilePath, &f.IsActive,
			&f.IsRemoved, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

func (r *ProfileRepository) relatedIDs(ctx context.Context, query string, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var rid uuid.UUID
		if err := rows.Scan(&rid); err != nil {
			return nil, err
		}
		ids = append(ids, rid)
	}
	return ids, rows.Err()
}

// replaceRelations rewrites a many-to-many join table for one owner.
func replaceRelations(ctx context.Context, tx pgx.Tx, table, ownerCol, refCol string, ownerID uuid.UUID, refs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, ownerCol), ownerID); err != nil {
		return err
	}
	for _, ref := range refs {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`
INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING
`, table, ownerCol, refCol), ownerID, ref); err != nil {
			return err
		}
	}
	return nil
}
