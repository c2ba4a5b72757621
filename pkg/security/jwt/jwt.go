package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/account"
)

// ErrTokenInvalid covers every verification failure: bad signature,
// expiry, wrong token class, unknown signing method.
var ErrTokenInvalid = errors.New("token is invalid or expired")

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims embeds the registered set plus the identity claims carried by
// access tokens. Refresh tokens carry only subject/jti/type.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	UsageType string `json:"usage_type,omitempty"`
	IsStaff   bool   `json:"is_staff,omitempty"`
}

// Signer mints and verifies both token classes with a shared HS256 secret.
type Signer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewSigner(secret, issuer string, accessTTL, refreshTTL time.Duration) *Signer {
	return &Signer{secret: []byte(secret), issuer: issuer, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Access mints a short-lived token embedding the user's identity claims.
func (s *Signer) Access(user account.User) (string, error) {
	claims := Claims{
		RegisteredClaims: s.registered(user.ID, s.accessTTL),
		TokenType:        TypeAccess,
		Username:         user.Username,
		Email:            user.Email,
		UsageType:        string(user.UsageType),
		IsStaff:          user.IsStaff,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Refresh mints a longer-lived token and returns its claims so callers
// can record the JTI and expiry for revocation bookkeeping.
func (s *Signer) Refresh(user account.User) (string, Claims, error) {
	claims := Claims{
		RegisteredClaims: s.registered(user.ID, s.refreshTTL),
		TokenType:        TypeRefresh,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return signed, claims, err
}

func (s *Signer) registered(subject uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// Parse verifies signature, expiry and issuer and checks the token class.
func (s *Signer) Parse(tokenStr, wantType string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return Claims{}, ErrTokenInvalid
	}
	if claims.TokenType != wantType {
		return Claims{}, ErrTokenInvalid
	}
	return *claims, nil
}
