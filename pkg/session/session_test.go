package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/security/jwt"
	"github.com/jobport/jobport/pkg/session"
	"github.com/jobport/jobport/pkg/softdelete"
)

// memBlacklist mirrors the Redis SET NX semantics: first Consume of a
// JTI wins, every later one loses.
type memBlacklist struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemBlacklist() *memBlacklist { return &memBlacklist{seen: map[string]bool{}} }

func (b *memBlacklist) Consume(_ context.Context, jti string, _ time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen[jti] {
		return false, nil
	}
	b.seen[jti] = true
	return true, nil
}

// stubUsers serves exactly one user.
type stubUsers struct {
	account.UserRepository
	user account.User
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID, _ softdelete.View) (account.User, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return account.User{}, account.ErrNotFound
}

// stubAccounts authenticates one known credential pair.
type stubAccounts struct {
	account.UseCase
	user     account.User
	password string
}

func (s *stubAccounts) Authenticate(_ context.Context, email, password string) (account.User, error) {
	if email == s.user.Email && password == s.password {
		return s.user, nil
	}
	return account.User{}, account.ErrInvalidCredentials
}

func testUser() account.User {
	return account.User{
		ID:        uuid.New(),
		Email:     "jane@example.com",
		Username:  "jane",
		UsageType: account.UsageJobSeeker,
		IsActive:  true,
	}
}

func newSession(user account.User) (session.UseCase, *jwt.Signer) {
	signer := jwt.NewSigner("test-secret", "jobport", 15*time.Minute, 24*time.Hour)
	svc := session.NewService(
		&stubAccounts{user: user, password: "correct-horse-battery"},
		&stubUsers{user: user},
		signer,
		newMemBlacklist(),
	)
	return svc, signer
}

func TestLogin_EmbedsIdentityClaims(t *testing.T) {
	user := testUser()
	svc, signer := newSession(user)

	res, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.NotEmpty(t, res.Access)
	require.NotEmpty(t, res.Refresh)

	claims, err := signer.Parse(res.Access, jwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "jane", claims.Username)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, string(account.UsageJobSeeker), claims.UsageType)

	refreshClaims, err := signer.Parse(res.Refresh, jwt.TypeRefresh)
	require.NoError(t, err)
	assert.Empty(t, refreshClaims.Email, "refresh tokens carry no identity claims")
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newSession(testUser())

	_, err := svc.Login(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	svc, _ := newSession(testUser())

	res, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), res.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEqual(t, res.Refresh, pair.Refresh, "a new refresh token is issued")

	// the spent token must not work again
	_, err = svc.Refresh(context.Background(), res.Refresh)
	assert.ErrorIs(t, err, session.ErrTokenInvalid)

	// the rotated one still does
	_, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.NoError(t, err)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newSession(testUser())

	res, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), res.Access)
	assert.ErrorIs(t, err, session.ErrTokenInvalid)
}

func TestRefresh_RejectsGarbageAndForeignSignature(t *testing.T) {
	svc, _ := newSession(testUser())

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, session.ErrTokenInvalid)

	forged := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), signed)
	assert.ErrorIs(t, err, session.ErrTokenInvalid)
}

func TestRefresh_TokenWithoutExpiry(t *testing.T) {
	user := testUser()
	svc, _ := newSession(user)

	// validly signed and typed, but carries no exp claim
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"iss":        "jobport",
		"sub":        user.ID.String(),
		"jti":        uuid.NewString(),
		"iat":        time.Now().Unix(),
		"token_type": jwt.TypeRefresh,
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), signed)
	assert.ErrorIs(t, err, session.ErrTokenInvalid)
}

func TestRefresh_ConcurrentUseOfSameToken(t *testing.T) {
	svc, _ := newSession(testUser())

	res, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(context.Background(), res.Refresh)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, session.ErrTokenInvalid)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent refresh wins")
}

func TestLogout_BlocksSubsequentRefresh(t *testing.T) {
	svc, _ := newSession(testUser())

	res, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), res.Refresh))

	_, err = svc.Refresh(context.Background(), res.Refresh)
	assert.ErrorIs(t, err, session.ErrTokenInvalid)

	// a second logout of the same token reports failure, not success
	assert.ErrorIs(t, svc.Logout(context.Background(), res.Refresh), session.ErrTokenInvalid)
}

func TestLogout_MalformedToken(t *testing.T) {
	svc, _ := newSession(testUser())
	assert.ErrorIs(t, svc.Logout(context.Background(), "garbage"), session.ErrTokenInvalid)
}

func TestRefresh_InactiveUser(t *testing.T) {
	user := testUser()
	signer := jwt.NewSigner("test-secret", "jobport", 15*time.Minute, 24*time.Hour)
	inactive := user
	inactive.IsActive = false
	svc := session.NewService(
		&stubAccounts{user: user, password: "correct-horse-battery"},
		&stubUsers{user: inactive},
		signer,
		newMemBlacklist(),
	)

	res, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), res.Refresh)
	assert.ErrorIs(t, err, session.ErrTokenInvalid)
}
