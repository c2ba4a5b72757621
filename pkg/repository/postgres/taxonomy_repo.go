package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobport/jobport/pkg/softdelete"
	"github.com/jobport/jobport/pkg/taxonomy"
)

// TaxonomyRepository stores both reference collections in structurally
// identical tables; Kind resolves which one a call touches.
type TaxonomyRepository struct {
	pool *pgxpool.Pool
}

func NewTaxonomyRepository(pool *pgxpool.Pool) (*TaxonomyRepository, error) {
	repo := &TaxonomyRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *TaxonomyRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS skills (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS industry_areas (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	is_removed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

func tableFor(kind taxonomy.Kind) string {
	if kind == taxonomy.KindIndustryArea {
		return "industry_areas"
	}
	return "skills"
}

func (r *TaxonomyRepository) Create(ctx context.Context, kind taxonomy.Kind, term taxonomy.Term) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
INSERT INTO %s (id, name, is_removed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`, tableFor(kind)), term.ID, term.Name, term.IsRemoved, term.CreatedAt, term.UpdatedAt)
	return err
}

func (r *TaxonomyRepository) List(ctx context.Context, kind taxonomy.Kind, view softdelete.View, limit, offset int) ([]taxonomy.Term, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT id, name, is_removed, created_at, updated_at
FROM %s WHERE %s
ORDER BY name LIMIT $1 OFFSET $2
`, tableFor(kind), view.SQL("is_removed")), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []taxonomy.Term
	for rows.Next() {
		var t taxonomy.Term
		if err := rows.Scan(&t.ID, &t.Name, &t.IsRemoved, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *TaxonomyRepository) Delete(ctx context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, fmt.Sprintf(`
UPDATE %s SET is_removed = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_removed
`, tableFor(kind)), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return taxonomy.ErrNotFound
	}
	return nil
}

func (r *TaxonomyRepository) Restore(ctx context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, fmt.Sprintf(`
UPDATE %s SET is_removed = FALSE, updated_at = NOW() WHERE id = $1 AND is_removed
`, tableFor(kind)), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return taxonomy.ErrNotFound
	}
	return nil
}

// Purge erases the row. Join-table references go with it via cascade.
func (r *TaxonomyRepository) Purge(ctx context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, tableFor(kind)), id)
	return err
}
