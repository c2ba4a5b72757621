package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/session"
)

type stubAccounts struct {
	account.UseCase
	registered account.RegisterInput
}

func (s *stubAccounts) Register(_ context.Context, in account.RegisterInput) (account.User, error) {
	if in.Password != in.Password2 {
		return account.User{}, account.ValidationError{"password2": "passwords do not match"}
	}
	s.registered = in
	return account.User{Email: in.Email, UsageType: in.UsageType}, nil
}

type stubSessions struct {
	session.UseCase
	loggedOut string
	storeErr  error
}

func (s *stubSessions) Login(_ context.Context, email, password string) (session.LoginResult, error) {
	if password != "opensesame" {
		return session.LoginResult{}, account.ErrInvalidCredentials
	}
	return session.LoginResult{
		TokenPair: session.TokenPair{Access: "acc", Refresh: "ref"},
		User:      account.User{Email: email, Username: "kim", UsageType: account.UsageJobSeeker},
	}, nil
}

func (s *stubSessions) Refresh(_ context.Context, refresh string) (session.TokenPair, error) {
	if refresh != "ref" {
		return session.TokenPair{}, session.ErrTokenInvalid
	}
	return session.TokenPair{Access: "acc2", Refresh: "ref2"}, nil
}

func (s *stubSessions) Logout(_ context.Context, refresh string) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	if refresh != "ref" {
		return session.ErrTokenInvalid
	}
	s.loggedOut = refresh
	return nil
}

func newAuthApp(t *testing.T) (*fiber.App, *stubAccounts, *stubSessions) {
	t.Helper()
	accounts := &stubAccounts{}
	sessions := &stubSessions{}
	h := NewAuthHandler(accounts, sessions)
	app := fiber.New()
	app.Post("/accounts/register/:role", h.Register)
	app.Post("/accounts/login", h.Login)
	app.Post("/accounts/token/refresh", h.Refresh)
	app.Post("/accounts/logout", h.Logout)
	return app, accounts, sessions
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestRegisterCreatesAccount(t *testing.T) {
	app, accounts, _ := newAuthApp(t)

	resp := postJSON(t, app, "/accounts/register/jobseeker",
		`{"email":"kim@example.com","password":"wonderword","password2":"wonderword"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "kim@example.com", body["email"])
	assert.Equal(t, "JobSeeker", body["usage_type"])
	assert.Equal(t, account.UsageJobSeeker, accounts.registered.UsageType)
}

func TestRegisterUnknownRole(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/accounts/register/astronaut", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegisterValidationBody(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/accounts/register/employer",
		`{"email":"kim@example.com","password":"wonderword","password2":"other"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "passwords do not match", body["password2"])
}

func TestLoginSuccess(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/accounts/login",
		`{"email":"kim@example.com","password":"opensesame"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "acc", body["access"])
	assert.Equal(t, "ref", body["refresh"])
	assert.Equal(t, "kim", body["username"])
	assert.Equal(t, "JobSeeker", body["usage_type"])
}

func TestLoginRejectionIsUniform(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/accounts/login",
		`{"email":"kim@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "No active account found with the given credentials", body["message"])
}

func TestRefreshRotates(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/accounts/token/refresh", `{"refresh":"ref"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "acc2", body["access"])
	assert.Equal(t, "ref2", body["refresh"])

	resp = postJSON(t, app, "/accounts/token/refresh", `{"refresh":"stale"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	app, _, sessions := newAuthApp(t)

	resp := postJSON(t, app, "/accounts/logout", `{"refresh":"ref"}`)
	assert.Equal(t, http.StatusResetContent, resp.StatusCode)
	assert.Equal(t, "ref", sessions.loggedOut)

	resp = postJSON(t, app, "/accounts/logout", `{"refresh":"garbage"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/accounts/logout", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogoutRevocationStoreDown(t *testing.T) {
	app, _, sessions := newAuthApp(t)
	sessions.storeErr = errors.New("dial tcp: connection refused")

	resp := postJSON(t, app, "/accounts/logout", `{"refresh":"ref"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Empty(t, sessions.loggedOut)
}
