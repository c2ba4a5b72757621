package posting

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/softdelete"
)

// UseCase encapsulates posting and photo operations. Ownership is checked
// here: mutating calls take the acting company's id, staff calls bypass
// the check through the admin variants.
type UseCase interface {
	Create(ctx context.Context, p JobPosting) (JobPosting, error)
	GetByID(ctx context.Context, id uuid.UUID) (JobPosting, error)
	List(ctx context.Context, limit, offset int) ([]JobPosting, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]JobPosting, error)
	Update(ctx context.Context, companyID uuid.UUID, p JobPosting) (JobPosting, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error

	AddPhoto(ctx context.Context, companyID, postingID uuid.UUID, filePath string) (Photo, error)
	ListPhotos(ctx context.Context, postingID uuid.UUID) ([]Photo, error)
	DeletePhoto(ctx context.Context, companyID, postingID, photoID uuid.UUID) error
	ClearPhotos(ctx context.Context, companyID, postingID uuid.UUID) (int64, error)

	// Admin operations, view-scoped, no ownership check.
	ListAdmin(ctx context.Context, view softdelete.View, limit, offset int) ([]JobPosting, error)
	DeleteAdmin(ctx context.Context, id uuid.UUID) error
	RestoreAdmin(ctx context.Context, id uuid.UUID) error
	PurgeAdmin(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	indexer Indexer
	now     func() time.Time
}

// NewService returns the default UseCase implementation. The indexer is
// required; pass a no-op implementation when search is disabled.
func NewService(repo Repository, indexer Indexer) UseCase {
	return &service{repo: repo, indexer: indexer, now: time.Now}
}

func (s *service) Create(ctx context.Context, p JobPosting) (JobPosting, error) {
	if err := validate(&p); err != nil {
		return JobPosting{}, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Meta = softdelete.NewMeta(s.now().UTC())
	if err := s.repo.Create(ctx, p); err != nil {
		return JobPosting{}, err
	}
	s.indexer.Index(p.ID.String(), document(p))
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (JobPosting, error) {
	return s.repo.GetByID(ctx, id, softdelete.Active)
}

func (s *service) List(ctx context.Context, limit, offset int) ([]JobPosting, error) {
	return s.repo.List(ctx, softdelete.Active, limit, offset)
}

func (s *service) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]JobPosting, error) {
	return s.repo.ListByCompany(ctx, companyID, softdelete.Active, limit, offset)
}

func (s *service) Update(ctx context.Context, companyID uuid.UUID, p JobPosting) (JobPosting, error) {
	current, err := s.repo.GetByID(ctx, p.ID, softdelete.Active)
	if err != nil {
		return JobPosting{}, err
	}
	if current.CompanyID != companyID {
		return JobPosting{}, ErrNotOwner
	}
	p.CompanyID = current.CompanyID
	p.ActivePhotoID = current.ActivePhotoID
	if err := validate(&p); err != nil {
		return JobPosting{}, err
	}
	p.Meta = current.Meta
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return JobPosting{}, err
	}
	s.indexer.Index(p.ID.String(), document(p))
	return p, nil
}

func (s *service) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id, softdelete.Active)
	if err != nil {
		return err
	}
	if current.CompanyID != companyID {
		return ErrNotOwner
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.indexer.Delete(id.String())
	return nil
}

func (s *service) AddPhoto(ctx context.Context, companyID, postingID uuid.UUID, filePath string) (Photo, error) {
	if strings.TrimSpace(filePath) == "" {
		return Photo{}, ErrValidation("file_path is required")
	}
	current, err := s.repo.GetByID(ctx, postingID, softdelete.Active)
	if err != nil {
		return Photo{}, err
	}
	if current.CompanyID != companyID {
		return Photo{}, ErrNotOwner
	}
	photo := Photo{
		ID:           uuid.New(),
		JobPostingID: postingID,
		FilePath:     filePath,
		IsActive:     true,
		Meta:         softdelete.NewMeta(s.now().UTC()),
	}
	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		return Photo{}, err
	}
	return photo, nil
}

func (s *service) ListPhotos(ctx context.Context, postingID uuid.UUID) ([]Photo, error) {
	return s.repo.ListPhotos(ctx, postingID, softdelete.Active)
}

// DeletePhoto soft-deletes one photo of the caller's posting. Deleting
// the active photo leaves the posting without one until the next upload.
func (s *service) DeletePhoto(ctx context.Context, companyID, postingID, photoID uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, postingID, softdelete.Active)
	if err != nil {
		return err
	}
	if current.CompanyID != companyID {
		return ErrNotOwner
	}
	photos, err := s.repo.ListPhotos(ctx, postingID, softdelete.Active)
	if err != nil {
		return err
	}
	for _, p := range photos {
		if p.ID == photoID {
			return s.repo.DeletePhoto(ctx, photoID)
		}
	}
	return ErrNotFound
}

// ClearPhotos soft-deletes every remaining photo of the caller's posting
// and reports how many were removed.
func (s *service) ClearPhotos(ctx context.Context, companyID, postingID uuid.UUID) (int64, error) {
	current, err := s.repo.GetByID(ctx, postingID, softdelete.Active)
	if err != nil {
		return 0, err
	}
	if current.CompanyID != companyID {
		return 0, ErrNotOwner
	}
	return s.repo.DeletePhotosByPosting(ctx, postingID)
}

func (s *service) ListAdmin(ctx context.Context, view softdelete.View, limit, offset int) ([]JobPosting, error) {
	return s.repo.List(ctx, view, limit, offset)
}

func (s *service) DeleteAdmin(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.indexer.Delete(id.String())
	return nil
}

func (s *service) RestoreAdmin(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}
	p, err := s.repo.GetByID(ctx, id, softdelete.Active)
	if err == nil {
		s.indexer.Index(p.ID.String(), document(p))
	}
	return nil
}

func (s *service) PurgeAdmin(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Purge(ctx, id); err != nil {
		return err
	}
	s.indexer.Delete(id.String())
	return nil
}

func validate(p *JobPosting) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return ErrValidation("title is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrValidation("description is required")
	}
	if p.ExpiryDate.IsZero() {
		return ErrValidation("expiry_date is required")
	}
	if p.SalaryRangeStart != nil && *p.SalaryRangeStart < 0 {
		return ErrValidation("salary_range_start must not be negative")
	}
	if p.SalaryRangeStart != nil && p.SalaryRangeEnd != nil && *p.SalaryRangeStart > *p.SalaryRangeEnd {
		return ErrValidation("salary_range_start must not exceed salary_range_end")
	}
	return nil
}

// document maps a posting to its search representation.
func document(p JobPosting) map[string]any {
	doc := map[string]any{
		"id":            p.ID.String(),
		"company_id":    p.CompanyID.String(),
		"title":         p.Title,
		"description":   p.Description,
		"working_hours": p.WorkingHours,
		"expiry_date":   p.ExpiryDate.Format("2006-01-02"),
	}
	if p.SalaryRangeStart != nil {
		doc["salary_range_start"] = *p.SalaryRangeStart
	}
	if p.SalaryRangeEnd != nil {
		doc["salary_range_end"] = *p.SalaryRangeEnd
	}
	return doc
}

// Document exposes the search mapping for background reindexing.
func Document(p JobPosting) map[string]any { return document(p) }
