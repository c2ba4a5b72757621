package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/security/jwt"
	"github.com/jobport/jobport/pkg/softdelete"
)

// ErrTokenInvalid is returned for expired, malformed, replayed or
// blacklisted refresh tokens.
var ErrTokenInvalid = errors.New("token is invalid or expired")

// TokenPair is one minted (access, refresh) pair.
type TokenPair struct {
	Access  string
	Refresh string
}

// LoginResult carries the pair plus the identity it was minted for.
type LoginResult struct {
	TokenPair
	User account.User
}

// Blacklist is the revocation set for refresh tokens, keyed by JTI.
// Consume atomically records the JTI as used; the second caller for the
// same JTI observes false. Entries expire with the token itself.
type Blacklist interface {
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// UseCase describes the session lifecycle: login mints a pair, refresh
// rotates it (invalidating the old refresh token), logout revokes one.
type UseCase interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

type service struct {
	accounts  account.UseCase
	users     account.UserRepository
	signer    *jwt.Signer
	blacklist Blacklist
}

// NewService returns the default UseCase implementation.
func NewService(accounts account.UseCase, users account.UserRepository, signer *jwt.Signer, blacklist Blacklist) UseCase {
	return &service{accounts: accounts, users: users, signer: signer, blacklist: blacklist}
}

func (s *service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	pair, err := s.mint(user)
	if err != nil {
		return LoginResult{}, err
	}
	user.PasswordHash = ""
	return LoginResult{TokenPair: pair, User: user}, nil
}

// Refresh rotates on use: the presented token's JTI is consumed before a
// new pair is issued, so a replay (or a concurrent refresh losing the
// race) fails with ErrTokenInvalid.
func (s *service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.consume(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return TokenPair{}, ErrTokenInvalid
	}
	user, err := s.users.GetByID(ctx, userID, softdelete.Active)
	if err != nil || !user.IsActive {
		return TokenPair{}, ErrTokenInvalid
	}
	return s.mint(user)
}

// Logout revokes the refresh token. Revoking a malformed, expired or
// already-revoked token reports ErrTokenInvalid; the access token keeps
// working until its own expiry.
func (s *service) Logout(ctx context.Context, refreshToken string) error {
	_, err := s.consume(ctx, refreshToken)
	return err
}

func (s *service) consume(ctx context.Context, refreshToken string) (jwt.Claims, error) {
	claims, err := s.signer.Parse(refreshToken, jwt.TypeRefresh)
	if err != nil {
		return jwt.Claims{}, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return jwt.Claims{}, ErrTokenInvalid
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return jwt.Claims{}, ErrTokenInvalid
	}
	ok, err := s.blacklist.Consume(ctx, claims.ID, ttl)
	if err != nil {
		return jwt.Claims{}, err
	}
	if !ok {
		return jwt.Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *service) mint(user account.User) (TokenPair, error) {
	access, err := s.signer.Access(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.signer.Refresh(user)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
