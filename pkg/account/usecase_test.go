package account_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/softdelete"
)

// memUserRepo is an in-memory UserRepository with the same uniqueness
// semantics as the SQL schema: email/username unique among active rows.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]account.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]account.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user account.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.IsRemoved {
			continue
		}
		if u.Email == user.Email {
			return account.ErrEmailTaken
		}
		if u.Username == user.Username {
			return account.ErrUsernameTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID, view softdelete.View) (account.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !visible(u.IsRemoved, view) {
		return account.User{}, account.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string, view softdelete.View) (account.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && visible(u.IsRemoved, view) {
			return u, nil
		}
	}
	return account.User{}, account.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context, view softdelete.View, _, _ int) ([]account.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []account.User
	for _, u := range r.users {
		if visible(u.IsRemoved, view) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, user account.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return account.ErrNotFound
	}
	u.IsRemoved = true
	r.users[id] = u
	return nil
}

func (r *memUserRepo) Restore(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return account.ErrNotFound
	}
	u.IsRemoved = false
	r.users[id] = u
	return nil
}

func (r *memUserRepo) Purge(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func visible(removed bool, view softdelete.View) bool {
	switch view {
	case softdelete.Active:
		return !removed
	case softdelete.Deleted:
		return removed
	default:
		return true
	}
}

type memProfileRepo struct {
	mu        sync.Mutex
	seekers   []account.JobSeeker
	comps     []account.Company
	addrs     []account.Address
	files     []account.SeekerFile
	createErr error // injected profile-creation failure
}

func (r *memProfileRepo) CreateJobSeeker(_ context.Context, s account.JobSeeker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seekers = append(r.seekers, s)
	return nil
}

func (r *memProfileRepo) GetJobSeekerByUser(_ context.Context, userID uuid.UUID, _ softdelete.View) (account.JobSeeker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seekers {
		if s.UserID == userID {
			return s, nil
		}
	}
	return account.JobSeeker{}, account.ErrNotFound
}

func (r *memProfileRepo) UpdateJobSeeker(_ context.Context, s account.JobSeeker) error { return nil }

func (r *memProfileRepo) CreateCompany(_ context.Context, c account.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.comps = append(r.comps, c)
	return nil
}

func (r *memProfileRepo) GetCompanyByUser(_ context.Context, userID uuid.UUID, _ softdelete.View) (account.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comps {
		if c.UserID == userID {
			return c, nil
		}
	}
	return account.Company{}, account.ErrNotFound
}

func (r *memProfileRepo) UpdateCompany(_ context.Context, c account.Company) error { return nil }

func (r *memProfileRepo) CreateAddress(_ context.Context, a account.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.IsActive {
		for i := range r.addrs {
			if r.addrs[i].OwnerKind == a.OwnerKind && r.addrs[i].OwnerID == a.OwnerID {
				r.addrs[i].IsActive = false
			}
		}
	}
	r.addrs = append(r.addrs, a)
	return nil
}

func (r *memProfileRepo) ListAddresses(_ context.Context, kind account.OwnerKind, ownerID uuid.UUID, _ softdelete.View) ([]account.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []account.Address
	for _, a := range r.addrs {
		if a.OwnerKind == kind && a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memProfileRepo) CreateSeekerFile(_ context.Context, f account.SeekerFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, f)
	return nil
}

func (r *memProfileRepo) ListSeekerFiles(_ context.Context, seekerID uuid.UUID, view softdelete.View) ([]account.SeekerFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []account.SeekerFile
	for _, f := range r.files {
		if f.JobSeekerID != nil && *f.JobSeekerID == seekerID && visible(f.IsRemoved, view) {
			out = append(out, f)
		}
	}
	return out, nil
}

func newService() (account.UseCase, *memUserRepo, *memProfileRepo) {
	users := newMemUserRepo()
	profiles := &memProfileRepo{}
	return account.NewService(users, profiles), users, profiles
}

func seekerInput(email string) account.RegisterInput {
	return account.RegisterInput{
		UsageType: account.UsageJobSeeker,
		Email:     email,
		Password:  "correct-horse-battery",
		Password2: "correct-horse-battery",
	}
}

func TestRegister_CreatesUserAndProfile(t *testing.T) {
	svc, users, profiles := newService()

	u, err := svc.Register(context.Background(), seekerInput("Jane.Doe@Example.com "))
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@example.com", u.Email, "email is normalized")
	assert.Equal(t, "jane.doe", u.Username, "username derived from email local part")
	assert.Equal(t, account.UsageJobSeeker, u.UsageType)
	assert.Empty(t, u.PasswordHash, "credentials never echoed back")
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)

	stored, err := users.GetByEmail(context.Background(), "jane.doe@example.com", softdelete.Active)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct-horse-battery", stored.PasswordHash, "password is hashed")

	_, err = profiles.GetJobSeekerByUser(context.Background(), u.ID, softdelete.Active)
	assert.NoError(t, err, "job seeker profile created alongside the user")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, users, _ := newService()

	in := seekerInput("jane@example.com")
	in.Password2 = "something-else"
	_, err := svc.Register(context.Background(), in)

	var ve account.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve, "password")

	all, _ := users.List(context.Background(), softdelete.Everything, 0, 0)
	assert.Empty(t, all, "no user persisted on validation failure")
}

func TestRegister_ValidationFailures(t *testing.T) {
	svc, _, _ := newService()

	cases := []struct {
		name  string
		mod   func(*account.RegisterInput)
		field string
	}{
		{"missing email", func(in *account.RegisterInput) { in.Email = "" }, "email"},
		{"malformed email", func(in *account.RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *account.RegisterInput) { in.Password = "abc"; in.Password2 = "abc" }, "password"},
		{"numeric password", func(in *account.RegisterInput) { in.Password = "12345678"; in.Password2 = "12345678" }, "password"},
		{"missing confirmation", func(in *account.RegisterInput) { in.Password2 = "" }, "password2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := seekerInput("jane@example.com")
			tc.mod(&in)
			_, err := svc.Register(context.Background(), in)
			var ve account.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve, tc.field)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Register(context.Background(), seekerInput("jane@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), seekerInput("jane@example.com"))
	var ve account.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve, "email")
}

func TestRegister_SoftDeletedEmailIsReusable(t *testing.T) {
	svc, _, _ := newService()

	first, err := svc.Register(context.Background(), seekerInput("jane@example.com"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), first.ID))

	_, err = svc.Register(context.Background(), seekerInput("jane@example.com"))
	assert.NoError(t, err, "uniqueness applies to active records only")
}

func TestRegister_ProfileFailureFreesEmail(t *testing.T) {
	svc, users, profiles := newService()
	profiles.createErr = errors.New("connection reset by peer")

	_, err := svc.Register(context.Background(), seekerInput("jane@example.com"))
	require.Error(t, err)

	all, _ := users.List(context.Background(), softdelete.Everything, 0, 0)
	assert.Empty(t, all, "user without a profile is not kept")

	profiles.createErr = nil
	_, err = svc.Register(context.Background(), seekerInput("jane@example.com"))
	assert.NoError(t, err, "email is reusable after the failed attempt")
}

func TestListSeekerFiles(t *testing.T) {
	svc, _, _ := newService()

	u, err := svc.Register(context.Background(), seekerInput("jane@example.com"))
	require.NoError(t, err)

	files, err := svc.ListSeekerFiles(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, files)

	seeker, err := svc.JobSeekerOf(context.Background(), u.ID)
	require.NoError(t, err)
	seekerID := seeker.ID
	added, err := svc.AddSeekerFile(context.Background(), account.SeekerFile{
		JobSeekerID: &seekerID,
		FilePath:    "files/resume.pdf",
		IsActive:    true,
	})
	require.NoError(t, err)

	files, err = svc.ListSeekerFiles(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, added.ID, files[0].ID)
	assert.Equal(t, "files/resume.pdf", files[0].FilePath)

	_, err = svc.ListSeekerFiles(context.Background(), uuid.New())
	assert.ErrorIs(t, err, account.ErrNotFound, "a user without a seeker profile has no files")
}

func TestRegisterStaff_RejectsUsageType(t *testing.T) {
	svc, _, _ := newService()

	in := account.StaffInput{RegisterInput: seekerInput("admin@example.com")}
	_, err := svc.RegisterStaff(context.Background(), in)

	var ve account.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve, "usage_type")
}

func TestRegisterStaff_SetsFlags(t *testing.T) {
	svc, _, _ := newService()

	in := account.StaffInput{RegisterInput: seekerInput("admin@example.com"), Superuser: true}
	in.UsageType = ""
	u, err := svc.RegisterStaff(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
	assert.Empty(t, string(u.UsageType))
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	svc, users, _ := newService()

	u, err := svc.Register(context.Background(), seekerInput("jane@example.com"))
	require.NoError(t, err)

	// wrong password
	_, err = svc.Authenticate(context.Background(), "jane@example.com", "wrong-password")
	wrongPass := err

	// absent user
	_, err = svc.Authenticate(context.Background(), "ghost@example.com", "correct-horse-battery")
	absent := err

	// inactive user
	stored, _ := users.GetByID(context.Background(), u.ID, softdelete.Active)
	stored.IsActive = false
	require.NoError(t, users.Update(context.Background(), stored))
	_, err = svc.Authenticate(context.Background(), "jane@example.com", "correct-horse-battery")
	inactive := err

	assert.ErrorIs(t, wrongPass, account.ErrInvalidCredentials)
	assert.ErrorIs(t, absent, account.ErrInvalidCredentials)
	assert.ErrorIs(t, inactive, account.ErrInvalidCredentials)
}

func TestAuthenticate_Success(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Register(context.Background(), seekerInput("jane@example.com"))
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "Jane@Example.com", "correct-horse-battery")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
}

func TestAuthenticate_SoftDeletedUser(t *testing.T) {
	svc, _, _ := newService()

	u, err := svc.Register(context.Background(), seekerInput("jane@example.com"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), u.ID))

	_, err = svc.Authenticate(context.Background(), "jane@example.com", "correct-horse-battery")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestDeleteRestorePurgeViews(t *testing.T) {
	svc, _, _ := newService()

	u, err := svc.Register(context.Background(), seekerInput("jane@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), u.ID))

	active, _ := svc.List(context.Background(), softdelete.Active, 0, 0)
	assert.Empty(t, active, "deleted record hidden from active view")

	deleted, _ := svc.List(context.Background(), softdelete.Deleted, 0, 0)
	assert.Len(t, deleted, 1)

	everything, _ := svc.List(context.Background(), softdelete.Everything, 0, 0)
	assert.Len(t, everything, 1, "everything still returns the record")

	require.NoError(t, svc.Restore(context.Background(), u.ID))
	active, _ = svc.List(context.Background(), softdelete.Active, 0, 0)
	assert.Len(t, active, 1)

	require.NoError(t, svc.Purge(context.Background(), u.ID))
	everything, _ = svc.List(context.Background(), softdelete.Everything, 0, 0)
	assert.Empty(t, everything, "purge physically erases the record")
}

func TestAddAddress_RotatesActive(t *testing.T) {
	svc, _, _ := newService()
	owner := uuid.New()

	first, err := svc.AddAddress(context.Background(), account.Address{
		OwnerKind:   account.OwnerJobSeeker,
		OwnerID:     owner,
		AddressText: "1 Main St",
		City:        "Springfield",
		IsActive:    true,
	})
	require.NoError(t, err)

	_, err = svc.AddAddress(context.Background(), account.Address{
		OwnerKind:   account.OwnerJobSeeker,
		OwnerID:     owner,
		AddressText: "2 Oak Ave",
		City:        "Springfield",
		IsActive:    true,
	})
	require.NoError(t, err)

	addrs, err := svc.ListAddresses(context.Background(), account.OwnerJobSeeker, owner)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	activeCount := 0
	for _, a := range addrs {
		if a.IsActive {
			activeCount++
			assert.NotEqual(t, first.ID, a.ID, "previous active address deactivated")
		}
	}
	assert.Equal(t, 1, activeCount, "at most one active address per owner")
}
