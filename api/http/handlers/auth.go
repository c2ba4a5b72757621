package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jobport/jobport/api/http/presenter"
	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/session"
)

type AuthHandler struct {
	accounts account.UseCase
	sessions session.UseCase
}

func NewAuthHandler(accounts account.UseCase, sessions session.UseCase) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates an account with the role named in the path.
// @Summary Register an account
// @Tags    accounts
// @Accept  json
// @Produce json
// @Param   role path string true "jobseeker or employer"
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router  /accounts/register/{role} [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	usage, err := account.ParseUsageType(c.Params("role"))
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "unknown role")
	}
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	user, err := h.accounts.Register(c.Context(), account.RegisterInput{
		UsageType: usage,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		var ve account.ValidationError
		if errors.As(err, &ve) {
			return presenter.Fields(c, ve)
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to register")
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"email":      user.Email,
		"usage_type": string(user.UsageType),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and mints an access/refresh pair. Absent, inactive
// and wrong-password accounts all get the same 401 body.
// @Summary Log in
// @Tags    accounts
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "credentials"
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /accounts/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}
	result, err := h.sessions.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			return presenter.Error(c, http.StatusUnauthorized,
				"No active account found with the given credentials")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to login")
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"access":     result.Access,
		"refresh":    result.Refresh,
		"username":   result.User.Username,
		"email":      result.User.Email,
		"usage_type": string(result.User.UsageType),
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh rotates a refresh token: the presented token is consumed and a
// fresh pair is returned. Replaying the old token fails.
// @Summary Refresh the token pair
// @Tags    accounts
// @Accept  json
// @Produce json
// @Param   input body refreshRequest true "refresh token"
// @Success 200 {object} map[string]string
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /accounts/token/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return presenter.Error(c, http.StatusBadRequest, "refresh token is required")
	}
	pair, err := h.sessions.Refresh(c.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, session.ErrTokenInvalid) {
			return presenter.Error(c, http.StatusUnauthorized, session.ErrTokenInvalid.Error())
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to refresh")
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

// Logout revokes the refresh token. The access token stays valid until
// its own expiry.
// @Summary Log out
// @Tags    accounts
// @Accept  json
// @Produce json
// @Param   input body refreshRequest true "refresh token to revoke"
// @Success 205 {object} nil
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /accounts/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return presenter.Error(c, http.StatusBadRequest, "refresh token is required")
	}
	if err := h.sessions.Logout(c.Context(), req.Refresh); err != nil {
		if errors.Is(err, session.ErrTokenInvalid) {
			return presenter.Error(c, http.StatusBadRequest, session.ErrTokenInvalid.Error())
		}
		return presenter.Error(c, http.StatusServiceUnavailable, "token revocation is unavailable")
	}
	return c.SendStatus(http.StatusResetContent)
}
