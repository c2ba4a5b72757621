package account

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/softdelete"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserProtected is returned when purging a user that still owns a
	// job seeker profile (RESTRICT relation).
	ErrUserProtected = errors.New("user has dependent records")
	// ErrAddressConflict is returned when activating an address would
	// leave its owner with two active addresses.
	ErrAddressConflict = errors.New("owner already has an active address")
)

// ValidationError maps field names to human-readable messages, mirroring
// the request body shape the API returns for 400 responses.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// UserRepository abstracts persistence for identity records. Reads are
// scoped by a soft-delete view; Delete flags, Purge erases.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id uuid.UUID, view softdelete.View) (User, error)
	GetByEmail(ctx context.Context, email string, view softdelete.View) (User, error)
	List(ctx context.Context, view softdelete.View, limit, offset int) ([]User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository persists the role-specific profile records and their
// addresses.
type ProfileRepository interface {
	CreateJobSeeker(ctx context.Context, seeker JobSeeker) error
	GetJobSeekerByUser(ctx context.Context, userID uuid.UUID, view softdelete.View) (JobSeeker, error)
	UpdateJobSeeker(ctx context.Context, seeker JobSeeker) error

	CreateCompany(ctx context.Context, company Company) error
	GetCompanyByUser(ctx context.Context, userID uuid.UUID, view softdelete.View) (Company, error)
	UpdateCompany(ctx context.Context, company Company) error

	// CreateAddress inserts the address and, when it is active, atomically
	// deactivates the owner's previous active address.
	CreateAddress(ctx context.Context, addr Address) error
	ListAddresses(ctx context.Context, kind OwnerKind, ownerID uuid.UUID, view softdelete.View) ([]Address, error)

	CreateSeekerFile(ctx context.Context, file SeekerFile) error
	ListSeekerFiles(ctx context.Context, seekerID uuid.UUID, view softdelete.View) ([]SeekerFile, error)
}
