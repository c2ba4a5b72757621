package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jobport/jobport/api/http/presenter"
	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/application"
	"github.com/jobport/jobport/pkg/posting"
)

type ApplicationHandler struct {
	uc       application.UseCase
	accounts account.UseCase
	postings posting.UseCase
}

func NewApplicationHandler(uc application.UseCase, accounts account.UseCase, postings posting.UseCase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc, accounts: accounts, postings: postings}
}

func (h *ApplicationHandler) seeker(c *fiber.Ctx) (account.JobSeeker, error) {
	uid, err := currentUser(c)
	if err != nil {
		return account.JobSeeker{}, err
	}
	return h.accounts.JobSeekerOf(c.Context(), uid)
}

type applyRequest struct {
	JobPostingID uuid.UUID `json:"job_posting_id"`
}

// Apply submits an application for the caller's job seeker profile. A
// second active application for the same posting is rejected.
// @Summary Apply to a posting
// @Tags    applications
// @Accept  json
// @Produce json
// @Param   input body applyRequest true "posting reference"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /applications [post]
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	seeker, err := h.seeker(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only job seeker accounts can apply")
	}
	var req applyRequest
	if err := c.BodyParser(&req); err != nil || req.JobPostingID == uuid.Nil {
		return presenter.Error(c, http.StatusBadRequest, "job_posting_id is required")
	}
	if _, err := h.postings.GetByID(c.Context(), req.JobPostingID); err != nil {
		return presenter.Error(c, http.StatusNotFound, "posting not found")
	}
	app, err := h.uc.Apply(c.Context(), seeker.ID, req.JobPostingID)
	if err != nil {
		if errors.Is(err, application.ErrAlreadyApplied) {
			return presenter.Error(c, http.StatusConflict, err.Error())
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to apply")
	}
	return presenter.JSON(c, http.StatusCreated, applicationDTO(app))
}

// ListMine lists the caller's own applications.
// @Summary List my applications
// @Tags    applications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Router  /applications [get]
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	seeker, err := h.seeker(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only job seeker accounts have applications")
	}
	limit, offset := parseLimitOffset(c, 50)
	apps, err := h.uc.ListBySeeker(c.Context(), seeker.ID, limit, offset)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list applications")
	}
	return presenter.JSON(c, http.StatusOK, applicationsDTO(apps))
}

// ListByPosting lists applications to one of the caller's postings.
// @Summary List applications for a posting
// @Tags    applications
// @Produce json
// @Param   id path string true "posting ID (UUID)"
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /postings/{id}/applications [get]
func (h *ApplicationHandler) ListByPosting(c *fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not identify user")
	}
	company, err := h.accounts.CompanyOf(c.Context(), uid)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only employer accounts can review applications")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	p, err := h.postings.GetByID(c.Context(), id)
	if err != nil || p.CompanyID != company.ID {
		return presenter.Error(c, http.StatusNotFound, "posting not found")
	}
	limit, offset := parseLimitOffset(c, 50)
	apps, err := h.uc.ListByPosting(c.Context(), id, limit, offset)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list applications")
	}
	return presenter.JSON(c, http.StatusOK, applicationsDTO(apps))
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus moves an application between Pending, Accepted and Rejected.
// Only the posting's owner may do this.
// @Summary Update application status
// @Tags    applications
// @Accept  json
// @Produce json
// @Param   id path string true "application ID (UUID)"
// @Param   input body statusRequest true "new status"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/status [put]
func (h *ApplicationHandler) SetStatus(c *fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not identify user")
	}
	company, err := h.accounts.CompanyOf(c.Context(), uid)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only employer accounts can review applications")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	status, err := application.ParseStatus(req.Status)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	app, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "application not found")
	}
	p, err := h.postings.GetByID(c.Context(), app.JobPostingID)
	if err != nil || p.CompanyID != company.ID {
		return presenter.Error(c, http.StatusNotFound, "application not found")
	}
	if err := h.uc.SetStatus(c.Context(), id, status); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to update status")
	}
	return c.SendStatus(http.StatusNoContent)
}

// Withdraw soft-deletes the caller's application, freeing the slot for
// a later re-apply.
// @Summary Withdraw an application
// @Tags    applications
// @Param   id path string true "application ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id} [delete]
func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	seeker, err := h.seeker(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only job seeker accounts have applications")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.uc.Withdraw(c.Context(), seeker.ID, id); err != nil {
		return presenter.Error(c, http.StatusNotFound, "application not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

func applicationDTO(app application.Application) fiber.Map {
	return fiber.Map{
		"id":             app.ID.String(),
		"job_seeker_id":  app.JobSeekerID.String(),
		"job_posting_id": app.JobPostingID.String(),
		"status":         string(app.Status),
		"applied_at":     app.AppliedAt,
	}
}

func applicationsDTO(apps []application.Application) []fiber.Map {
	out := make([]fiber.Map, 0, len(apps))
	for _, a := range apps {
		out = append(out, applicationDTO(a))
	}
	return out
}
