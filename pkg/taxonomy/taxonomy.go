package taxonomy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/softdelete"
)

// Kind selects which reference collection an operation targets.
type Kind string

const (
	KindSkill        Kind = "skill"
	KindIndustryArea Kind = "industry_area"
)

// Term is a tagged reference entity (a skill or an industry area),
// referenced by many-to-many from profiles and postings.
type Term struct {
	ID   uuid.UUID
	Name string
	softdelete.Meta
}

var (
	ErrNotFound = errors.New("not found")
	ErrEmpty    = errors.New("name is required")
)

// Repository persists both collections; Kind picks the table.
type Repository interface {
	Create(ctx context.Context, kind Kind, term Term) error
	List(ctx context.Context, kind Kind, view softdelete.View, limit, offset int) ([]Term, error)
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error
	Restore(ctx context.Context, kind Kind, id uuid.UUID) error
	Purge(ctx context.Context, kind Kind, id uuid.UUID) error
}

// UseCase manages the reference collections. Mutation is staff-gated at
// the API boundary.
type UseCase interface {
	Create(ctx context.Context, kind Kind, name string) (Term, error)
	List(ctx context.Context, kind Kind, view softdelete.View, limit, offset int) ([]Term, error)
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error
	Restore(ctx context.Context, kind Kind, id uuid.UUID) error
	Purge(ctx context.Context, kind Kind, id uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) UseCase {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, kind Kind, name string) (Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Term{}, ErrEmpty
	}
	term := Term{
		ID:   uuid.New(),
		Name: name,
		Meta: softdelete.NewMeta(s.now().UTC()),
	}
	if err := s.repo.Create(ctx, kind, term); err != nil {
		return Term{}, err
	}
	return term, nil
}

func (s *service) List(ctx context.Context, kind Kind, view softdelete.View, limit, offset int) ([]Term, error) {
	return s.repo.List(ctx, kind, view, limit, offset)
}

func (s *service) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	return s.repo.Delete(ctx, kind, id)
}

func (s *service) Restore(ctx context.Context, kind Kind, id uuid.UUID) error {
	return s.repo.Restore(ctx, kind, id)
}

func (s *service) Purge(ctx context.Context, kind Kind, id uuid.UUID) error {
	return s.repo.Purge(ctx, kind, id)
}
