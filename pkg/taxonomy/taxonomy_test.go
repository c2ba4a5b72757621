package taxonomy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/softdelete"
	"github.com/jobport/jobport/pkg/taxonomy"
)

type memRepo struct {
	terms map[taxonomy.Kind]map[uuid.UUID]*taxonomy.Term
}

func newMemRepo() *memRepo {
	return &memRepo{terms: map[taxonomy.Kind]map[uuid.UUID]*taxonomy.Term{
		taxonomy.KindSkill:        {},
		taxonomy.KindIndustryArea: {},
	}}
}

func (m *memRepo) Create(_ context.Context, kind taxonomy.Kind, term taxonomy.Term) error {
	m.terms[kind][term.ID] = &term
	return nil
}

func (m *memRepo) List(_ context.Context, kind taxonomy.Kind, view softdelete.View, limit, offset int) ([]taxonomy.Term, error) {
	var res []taxonomy.Term
	for _, t := range m.terms[kind] {
		switch view {
		case softdelete.Active:
			if t.IsRemoved {
				continue
			}
		case softdelete.Deleted:
			if !t.IsRemoved {
				continue
			}
		}
		res = append(res, *t)
	}
	return res, nil
}

func (m *memRepo) Delete(_ context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	t, ok := m.terms[kind][id]
	if !ok || t.IsRemoved {
		return taxonomy.ErrNotFound
	}
	t.IsRemoved = true
	return nil
}

func (m *memRepo) Restore(_ context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	t, ok := m.terms[kind][id]
	if !ok || !t.IsRemoved {
		return taxonomy.ErrNotFound
	}
	t.IsRemoved = false
	return nil
}

func (m *memRepo) Purge(_ context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	delete(m.terms[kind], id)
	return nil
}

func TestCreateTrimsAndRejectsEmpty(t *testing.T) {
	uc := taxonomy.NewService(newMemRepo())
	ctx := context.Background()

	term, err := uc.Create(ctx, taxonomy.KindSkill, "  Go  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if term.Name != "Go" {
		t.Fatalf("name = %q, want %q", term.Name, "Go")
	}

	if _, err := uc.Create(ctx, taxonomy.KindSkill, "   "); !errors.Is(err, taxonomy.ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestKindsAreIndependent(t *testing.T) {
	uc := taxonomy.NewService(newMemRepo())
	ctx := context.Background()

	if _, err := uc.Create(ctx, taxonomy.KindSkill, "Go"); err != nil {
		t.Fatalf("create skill: %v", err)
	}
	if _, err := uc.Create(ctx, taxonomy.KindIndustryArea, "Fintech"); err != nil {
		t.Fatalf("create industry area: %v", err)
	}

	skills, _ := uc.List(ctx, taxonomy.KindSkill, softdelete.Active, 10, 0)
	areas, _ := uc.List(ctx, taxonomy.KindIndustryArea, softdelete.Active, 10, 0)
	if len(skills) != 1 || len(areas) != 1 {
		t.Fatalf("skills = %d, areas = %d, want 1 and 1", len(skills), len(areas))
	}
	if skills[0].Name != "Go" || areas[0].Name != "Fintech" {
		t.Fatalf("unexpected names: %q, %q", skills[0].Name, areas[0].Name)
	}
}

func TestDeleteRestoreLifecycle(t *testing.T) {
	uc := taxonomy.NewService(newMemRepo())
	ctx := context.Background()

	term, err := uc.Create(ctx, taxonomy.KindSkill, "Go")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := uc.Delete(ctx, taxonomy.KindSkill, term.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	active, _ := uc.List(ctx, taxonomy.KindSkill, softdelete.Active, 10, 0)
	if len(active) != 0 {
		t.Fatalf("active after delete = %d, want 0", len(active))
	}
	deleted, _ := uc.List(ctx, taxonomy.KindSkill, softdelete.Deleted, 10, 0)
	if len(deleted) != 1 {
		t.Fatalf("deleted view = %d, want 1", len(deleted))
	}

	if err := uc.Restore(ctx, taxonomy.KindSkill, term.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	active, _ = uc.List(ctx, taxonomy.KindSkill, softdelete.Active, 10, 0)
	if len(active) != 1 {
		t.Fatalf("active after restore = %d, want 1", len(active))
	}

	if err := uc.Restore(ctx, taxonomy.KindSkill, term.ID); !errors.Is(err, taxonomy.ErrNotFound) {
		t.Fatalf("second restore err = %v, want ErrNotFound", err)
	}

	if err := uc.Purge(ctx, taxonomy.KindSkill, term.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}
	all, _ := uc.List(ctx, taxonomy.KindSkill, softdelete.Everything, 10, 0)
	if len(all) != 0 {
		t.Fatalf("everything after purge = %d, want 0", len(all))
	}
}
