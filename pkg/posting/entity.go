package posting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/softdelete"
)

// JobPosting is a vacancy published by a company.
type JobPosting struct {
	ID               uuid.UUID
	CompanyID        uuid.UUID
	Title            string
	Description      string
	ExpiryDate       time.Time
	SalaryRangeStart *int
	SalaryRangeEnd   *int
	WorkingHours     string
	ActivePhotoID    *uuid.UUID
	SkillIDs         []uuid.UUID
	IndustryAreaIDs  []uuid.UUID
	softdelete.Meta
}

// Photo belongs to exactly one posting; at most one photo per posting is
// active at any time.
type Photo struct {
	ID           uuid.UUID
	JobPostingID uuid.UUID
	FilePath     string
	IsActive     bool
	softdelete.Meta
}

var (
	ErrNotFound = errors.New("not found")
	// ErrNotOwner is returned when a company operates on a posting it
	// does not own.
	ErrNotOwner = errors.New("posting belongs to another company")
)

// ErrValidation is a user-correctable input error.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// Repository is the persistence port. Reads are view-scoped; AddPhoto
// performs the full active-photo rotation in one transaction.
type Repository interface {
	Create(ctx context.Context, p JobPosting) error
	GetByID(ctx context.Context, id uuid.UUID, view softdelete.View) (JobPosting, error)
	List(ctx context.Context, view softdelete.View, limit, offset int) ([]JobPosting, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, view softdelete.View, limit, offset int) ([]JobPosting, error)
	Update(ctx context.Context, p JobPosting) error
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error

	AddPhoto(ctx context.Context, photo Photo) error
	ListPhotos(ctx context.Context, postingID uuid.UUID, view softdelete.View) ([]Photo, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
	// DeletePhotosByPosting soft-deletes every remaining photo of the
	// posting in one statement and reports how many it removed.
	DeletePhotosByPosting(ctx context.Context, postingID uuid.UUID) (int64, error)
}

// Indexer is the best-effort search side-channel. Implementations must
// never block or fail the calling operation.
type Indexer interface {
	Index(id string, doc map[string]any)
	Delete(id string)
}
