package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/softdelete"
)

// Status of an application, fixed enumeration.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

// ParseStatus validates the wire form of a status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown application status %q", s)
	}
}

// Application links one job seeker to one job posting. AppliedAt is set
// at creation and never changes.
type Application struct {
	ID           uuid.UUID
	JobSeekerID  uuid.UUID
	JobPostingID uuid.UUID
	Status       Status
	AppliedAt    time.Time
	softdelete.Meta
}

var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadyApplied is returned when the seeker already has an
	// active application for the posting.
	ErrAlreadyApplied = errors.New("application already exists for this posting")
)

// Repository is the persistence port.
type Repository interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, id uuid.UUID, view softdelete.View) (Application, error)
	ListBySeeker(ctx context.Context, seekerID uuid.UUID, view softdelete.View, limit, offset int) ([]Application, error)
	ListByPosting(ctx context.Context, postingID uuid.UUID, view softdelete.View, limit, offset int) ([]Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
}

// UseCase encapsulates applying to postings and reviewing applications.
type UseCase interface {
	Apply(ctx context.Context, seekerID, postingID uuid.UUID) (Application, error)
	GetByID(ctx context.Context, id uuid.UUID) (Application, error)
	ListBySeeker(ctx context.Context, seekerID uuid.UUID, limit, offset int) ([]Application, error)
	ListByPosting(ctx context.Context, postingID uuid.UUID, limit, offset int) ([]Application, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	Withdraw(ctx context.Context, seekerID, id uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) UseCase {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Apply(ctx context.Context, seekerID, postingID uuid.UUID) (Application, error) {
	now := s.now().UTC()
	app := Application{
		ID:           uuid.New(),
		JobSeekerID:  seekerID,
		JobPostingID: postingID,
		Status:       StatusPending,
		AppliedAt:    now,
		Meta:         softdelete.NewMeta(now),
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (Application, error) {
	return s.repo.GetByID(ctx, id, softdelete.Active)
}

func (s *service) ListBySeeker(ctx context.Context, seekerID uuid.UUID, limit, offset int) ([]Application, error) {
	return s.repo.ListBySeeker(ctx, seekerID, softdelete.Active, limit, offset)
}

func (s *service) ListByPosting(ctx context.Context, postingID uuid.UUID, limit, offset int) ([]Application, error) {
	return s.repo.ListByPosting(ctx, postingID, softdelete.Active, limit, offset)
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, id, status, s.now().UTC())
}

// Withdraw soft-deletes the seeker's own application.
func (s *service) Withdraw(ctx context.Context, seekerID, id uuid.UUID) error {
	app, err := s.repo.GetByID(ctx, id, softdelete.Active)
	if err != nil {
		return err
	}
	if app.JobSeekerID != seekerID {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
