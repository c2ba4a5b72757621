package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jobport/jobport/api/http/presenter"
	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/posting"
)

// AdminHandler exposes the staff-only views: listing across soft-delete
// states, restore, and permanent purge. Routes are gated by the staff
// middleware, not here.
type AdminHandler struct {
	accounts account.UseCase
	postings posting.UseCase
}

func NewAdminHandler(accounts account.UseCase, postings posting.UseCase) *AdminHandler {
	return &AdminHandler{accounts: accounts, postings: postings}
}

// @Summary List users across soft-delete views
// @Tags    admin
// @Produce json
// @Param   view query string false "active|deleted|all"
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Router  /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	view, err := parseView(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	limit, offset := parseLimitOffset(c, 50)
	users, err := h.accounts.List(c.Context(), view, limit, offset)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list users")
	}
	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, fiber.Map{
			"id":         u.ID.String(),
			"email":      u.Email,
			"username":   u.Username,
			"usage_type": string(u.UsageType),
			"is_active":  u.IsActive,
			"is_staff":   u.IsStaff,
			"is_removed": u.IsRemoved,
		})
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// @Summary Soft-delete a user
// @Tags    admin
// @Param   id path string true "user ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.accounts.Delete(c.Context(), id); err != nil {
		return presenter.Error(c, http.StatusNotFound, "user not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

// RestoreUser brings a soft-deleted user back. Fails when the freed
// email was re-registered in the meantime.
// @Summary Restore a soft-deleted user
// @Tags    admin
// @Param   id path string true "user ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /admin/users/{id}/restore [post]
func (h *AdminHandler) RestoreUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.accounts.Restore(c.Context(), id); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return presenter.Error(c, http.StatusConflict, "email was re-registered; cannot restore")
		}
		return presenter.Error(c, http.StatusNotFound, "user not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

// PurgeUser erases the row. A user still owning a job seeker profile is
// protected from purge.
// @Summary Permanently delete a user
// @Tags    admin
// @Param   id path string true "user ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /admin/users/{id}/purge [delete]
func (h *AdminHandler) PurgeUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.accounts.Purge(c.Context(), id); err != nil {
		if errors.Is(err, account.ErrUserProtected) {
			return presenter.Error(c, http.StatusConflict, err.Error())
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to purge user")
	}
	return c.SendStatus(http.StatusNoContent)
}

type staffRequest struct {
	registerRequest
	UsageType string `json:"usage_type"`
	Superuser bool   `json:"superuser"`
}

// CreateStaff registers a staff account. A usage type in the payload is
// rejected: staff accounts carry no role tag.
// @Summary Create a staff account
// @Tags    admin
// @Accept  json
// @Produce json
// @Param   input body staffRequest true "staff payload"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router  /admin/users [post]
func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	var req staffRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	user, err := h.accounts.RegisterStaff(c.Context(), account.StaffInput{
		RegisterInput: account.RegisterInput{
			UsageType: account.UsageType(req.UsageType),
			Email:     req.Email,
			Username:  req.Username,
			Password:  req.Password,
			Password2: req.Password2,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
		Superuser: req.Superuser,
	})
	if err != nil {
		var ve account.ValidationError
		if errors.As(err, &ve) {
			return presenter.Fields(c, ve)
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to create staff account")
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"id":           user.ID.String(),
		"email":        user.Email,
		"is_staff":     user.IsStaff,
		"is_superuser": user.IsSuperuser,
	})
}

// @Summary List postings across soft-delete views
// @Tags    admin
// @Produce json
// @Param   view query string false "active|deleted|all"
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Router  /admin/postings [get]
func (h *AdminHandler) ListPostings(c *fiber.Ctx) error {
	view, err := parseView(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	limit, offset := parseLimitOffset(c, 50)
	ps, err := h.postings.ListAdmin(c.Context(), view, limit, offset)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list postings")
	}
	return presenter.JSON(c, http.StatusOK, postingsDTO(ps))
}

// @Summary Soft-delete a posting (no ownership check)
// @Tags    admin
// @Param   id path string true "posting ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /admin/postings/{id} [delete]
func (h *AdminHandler) DeletePosting(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.postings.DeleteAdmin(c.Context(), id); err != nil {
		return presenter.Error(c, http.StatusNotFound, "posting not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

// @Summary Restore a soft-deleted posting
// @Tags    admin
// @Param   id path string true "posting ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /admin/postings/{id}/restore [post]
func (h *AdminHandler) RestorePosting(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.postings.RestoreAdmin(c.Context(), id); err != nil {
		return presenter.Error(c, http.StatusNotFound, "posting not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

// @Summary Permanently delete a posting
// @Tags    admin
// @Param   id path string true "posting ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Router  /admin/postings/{id}/purge [delete]
func (h *AdminHandler) PurgePosting(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.postings.PurgeAdmin(c.Context(), id); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to purge posting")
	}
	return c.SendStatus(http.StatusNoContent)
}
