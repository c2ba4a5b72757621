package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobport/jobport/pkg/softdelete"
)

// RegisterInput is the registration payload shared by all roles.
type RegisterInput struct {
	UsageType UsageType // empty only for staff registration
	Email     string
	Username  string
	Password  string
	Password2 string
	FirstName string
	LastName  string
}

// StaffInput registers a staff or superuser account. A usage type must
// not be requested alongside the elevated flags.
type StaffInput struct {
	RegisterInput
	Superuser bool
}

// UseCase describes registration, authentication and profile behavior.
type UseCase interface {
	Register(ctx context.Context, in RegisterInput) (User, error)
	RegisterStaff(ctx context.Context, in StaffInput) (User, error)
	Authenticate(ctx context.Context, email, password string) (User, error)

	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	JobSeekerOf(ctx context.Context, userID uuid.UUID) (JobSeeker, error)
	CompanyOf(ctx context.Context, userID uuid.UUID) (Company, error)
	UpdateJobSeeker(ctx context.Context, seeker JobSeeker) error
	UpdateCompany(ctx context.Context, company Company) error
	AddAddress(ctx context.Context, addr Address) (Address, error)
	ListAddresses(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) ([]Address, error)
	AddSeekerFile(ctx context.Context, file SeekerFile) (SeekerFile, error)
	ListSeekerFiles(ctx context.Context, userID uuid.UUID) ([]SeekerFile, error)

	// Admin operations, view-scoped.
	List(ctx context.Context, view softdelete.View, limit, offset int) ([]User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
}

type service struct {
	users    UserRepository
	profiles ProfileRepository
	now      func() time.Time
}

// NewService returns the default UseCase implementation.
func NewService(users UserRepository, profiles ProfileRepository) UseCase {
	return &service{users: users, profiles: profiles, now: time.Now}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.UsageType != UsageJobSeeker && in.UsageType != UsageEmployer {
		return User{}, ValidationError{"usage_type": "must be JobSeeker or Employer"}
	}
	user, err := s.createUser(ctx, in, false, false)
	if err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	switch in.UsageType {
	case UsageJobSeeker:
		err = s.profiles.CreateJobSeeker(ctx, JobSeeker{
			ID:     uuid.New(),
			UserID: user.ID,
			Meta:   softdelete.NewMeta(now),
		})
	case UsageEmployer:
		err = s.profiles.CreateCompany(ctx, Company{
			ID:     uuid.New(),
			UserID: user.ID,
			Meta:   softdelete.NewMeta(now),
		})
	}
	if err != nil {
		// Erase the half-registered user so the email and username are
		// immediately reusable.
		_ = s.users.Purge(ctx, user.ID)
		return User{}, err
	}
	return user, nil
}

func (s *service) RegisterStaff(ctx context.Context, in StaffInput) (User, error) {
	if in.UsageType != "" {
		return User{}, ValidationError{"usage_type": "staff accounts must not carry a usage type"}
	}
	return s.createUser(ctx, in.RegisterInput, true, in.Superuser)
}

// createUser is the single creation primitive every role funnels through:
// it normalizes the email, validates the credentials, hashes the password
// and persists the record.
func (s *service) createUser(ctx context.Context, in RegisterInput, staff, superuser bool) (User, error) {
	email := normalizeEmail(in.Email)
	if fields := validateCredentials(email, in.Password, in.Password2); len(fields) > 0 {
		return User{}, fields
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = email[:strings.IndexByte(email, '@')]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		UsageType:    in.UsageType,
		IsActive:     true,
		IsStaff:      staff,
		IsSuperuser:  superuser,
		PasswordHash: string(hash),
		Meta:         softdelete.NewMeta(s.now().UTC()),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Constraint races surface as conflicts; report them the same way
		// as a pre-checked duplicate.
		switch {
		case errors.Is(err, ErrEmailTaken):
			return User{}, ValidationError{"email": "a user with this email already exists"}
		case errors.Is(err, ErrUsernameTaken):
			return User{}, ValidationError{"username": "a user with this username already exists"}
		}
		return User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies the stored hash for an active, non-removed user.
// Every failure mode returns the same error so callers cannot probe which
// emails are registered.
func (s *service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email), softdelete.Active)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	return s.users.GetByID(ctx, id, softdelete.Active)
}

func (s *service) JobSeekerOf(ctx context.Context, userID uuid.UUID) (JobSeeker, error) {
	return s.profiles.GetJobSeekerByUser(ctx, userID, softdelete.Active)
}

func (s *service) CompanyOf(ctx context.Context, userID uuid.UUID) (Company, error) {
	return s.profiles.GetCompanyByUser(ctx, userID, softdelete.Active)
}

func (s *service) UpdateJobSeeker(ctx context.Context, seeker JobSeeker) error {
	seeker.UpdatedAt = s.now().UTC()
	return s.profiles.UpdateJobSeeker(ctx, seeker)
}

func (s *service) UpdateCompany(ctx context.Context, company Company) error {
	if company.EstablishmentYear < 0 {
		return ValidationError{"establishment_year": "must not be negative"}
	}
	company.UpdatedAt = s.now().UTC()
	return s.profiles.UpdateCompany(ctx, company)
}

func (s *service) AddAddress(ctx context.Context, addr Address) (Address, error) {
	if strings.TrimSpace(addr.AddressText) == "" || strings.TrimSpace(addr.City) == "" {
		return Address{}, ValidationError{"address": "address_text and city are required"}
	}
	if addr.OwnerKind != OwnerJobSeeker && addr.OwnerKind != OwnerCompany {
		return Address{}, ValidationError{"owner_kind": "must be jobseeker or company"}
	}
	addr.ID = uuid.New()
	addr.Meta = softdelete.NewMeta(s.now().UTC())
	if err := s.profiles.CreateAddress(ctx, addr); err != nil {
		return Address{}, err
	}
	return addr, nil
}

func (s *service) ListAddresses(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) ([]Address, error) {
	return s.profiles.ListAddresses(ctx, kind, ownerID, softdelete.Active)
}

func (s *service) AddSeekerFile(ctx context.Context, file SeekerFile) (SeekerFile, error) {
	if strings.TrimSpace(file.FilePath) == "" {
		return SeekerFile{}, ValidationError{"file_path": "required"}
	}
	file.ID = uuid.New()
	file.Meta = softdelete.NewMeta(s.now().UTC())
	if err := s.profiles.CreateSeekerFile(ctx, file); err != nil {
		return SeekerFile{}, err
	}
	return file, nil
}

// ListSeekerFiles resolves the caller's seeker profile and returns its
// attached files in upload order.
func (s *service) ListSeekerFiles(ctx context.Context, userID uuid.UUID) ([]SeekerFile, error) {
	seeker, err := s.profiles.GetJobSeekerByUser(ctx, userID, softdelete.Active)
	if err != nil {
		return nil, err
	}
	return s.profiles.ListSeekerFiles(ctx, seeker.ID, softdelete.Active)
}

func (s *service) List(ctx context.Context, view softdelete.View, limit, offset int) ([]User, error) {
	return s.users.List(ctx, view, limit, offset)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

func (s *service) Restore(ctx context.Context, id uuid.UUID) error {
	return s.users.Restore(ctx, id)
}

func (s *service) Purge(ctx context.Context, id uuid.UUID) error {
	return s.users.Purge(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password, password2 string) ValidationError {
	fields := ValidationError{}
	if email == "" {
		fields["email"] = "this field is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "enter a valid email address"
	}
	if password == "" {
		fields["password"] = "this field is required"
	} else if msg := passwordStrength(password); msg != "" {
		fields["password"] = msg
	}
	if password2 == "" {
		fields["password2"] = "this field is required"
	} else if _, ok := fields["password"]; !ok && password != password2 {
		fields["password"] = "password fields didn't match"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func passwordStrength(password string) string {
	if len(password) < 8 {
		return "this password is too short, it must contain at least 8 characters"
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return "this password is entirely numeric"
	}
	return ""
}
