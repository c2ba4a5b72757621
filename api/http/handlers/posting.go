package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jobport/jobport/api/http/presenter"
	"github.com/jobport/jobport/pkg/account"
	"github.com/jobport/jobport/pkg/posting"
)

// Searcher is the read side of the search index.
type Searcher interface {
	Search(query string) ([]map[string]any, error)
}

type PostingHandler struct {
	uc       posting.UseCase
	accounts account.UseCase
	search   Searcher
}

func NewPostingHandler(uc posting.UseCase, accounts account.UseCase, search Searcher) *PostingHandler {
	return &PostingHandler{uc: uc, accounts: accounts, search: search}
}

// company resolves the caller to their company profile. Only employer
// accounts own postings.
func (h *PostingHandler) company(c *fiber.Ctx) (account.Company, error) {
	uid, err := currentUser(c)
	if err != nil {
		return account.Company{}, err
	}
	return h.accounts.CompanyOf(c.Context(), uid)
}

type postingRequest struct {
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	ExpiryDate       time.Time   `json:"expiry_date"`
	SalaryRangeStart *int        `json:"salary_range_start"`
	SalaryRangeEnd   *int        `json:"salary_range_end"`
	WorkingHours     string      `json:"working_hours"`
	SkillIDs         []uuid.UUID `json:"skill_ids"`
	IndustryAreaIDs  []uuid.UUID `json:"industry_area_ids"`
}

// @Summary Publish a job posting
// @Tags    postings
// @Accept  json
// @Produce json
// @Param   input body postingRequest true "posting payload"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /postings [post]
func (h *PostingHandler) Create(c *fiber.Ctx) error {
	company, err := h.company(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only employer accounts can publish postings")
	}
	var req postingRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	p, err := h.uc.Create(c.Context(), posting.JobPosting{
		CompanyID:        company.ID,
		Title:            req.Title,
		Description:      req.Description,
		ExpiryDate:       req.ExpiryDate,
		SalaryRangeStart: req.SalaryRangeStart,
		SalaryRangeEnd:   req.SalaryRangeEnd,
		WorkingHours:     req.WorkingHours,
		SkillIDs:         req.SkillIDs,
		IndustryAreaIDs:  req.IndustryAreaIDs,
	})
	if err != nil {
		var ve posting.ErrValidation
		if errors.As(err, &ve) {
			return presenter.Error(c, http.StatusBadRequest, ve.Error())
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to create posting")
	}
	return presenter.JSON(c, http.StatusCreated, postingDTO(p))
}

// @Summary List active postings
// @Tags    postings
// @Produce json
// @Success 200 {array} map[string]any
// @Router  /postings [get]
func (h *PostingHandler) List(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, 50)
	ps, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list postings")
	}
	return presenter.JSON(c, http.StatusOK, postingsDTO(ps))
}

// @Summary Get a posting
// @Tags    postings
// @Produce json
// @Param   id path string true "posting ID (UUID)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /postings/{id} [get]
func (h *PostingHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	p, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "posting not found")
	}
	return presenter.JSON(c, http.StatusOK, postingDTO(p))
}

// @Summary Update a posting
// @Tags    postings
// @Accept  json
// @Produce json
// @Param   id path string true "posting ID (UUID)"
// @Param   input body postingRequest true "posting payload"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /postings/{id} [put]
func (h *PostingHandler) Update(c *fiber.Ctx) error {
	company, err := h.company(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only employer accounts can edit postings")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	var req postingRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	p, err := h.uc.Update(c.Context(), company.ID, posting.JobPosting{
		ID:               id,
		Title:            req.Title,
		Description:      req.Description,
		ExpiryDate:       req.ExpiryDate,
		SalaryRangeStart: req.SalaryRangeStart,
		SalaryRangeEnd:   req.SalaryRangeEnd,
		WorkingHours:     req.WorkingHours,
		SkillIDs:         req.SkillIDs,
		IndustryAreaIDs:  req.IndustryAreaIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, posting.ErrNotFound), errors.Is(err, posting.ErrNotOwner):
			return presenter.Error(c, http.StatusNotFound, "posting not found")
		default:
			var ve posting.ErrValidation
			if errors.As(err, &ve) {
				return presenter.Error(c, http.StatusBadRequest, ve.Error())
			}
			return presenter.Error(c, http.StatusInternalServerError, "failed to update posting")
		}
	}
	return presenter.JSON(c, http.StatusOK, postingDTO(p))
}

// @Summary Delete a posting
// @Tags    postings
// @Param   id path string true "posting ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /postings/{id} [delete]
func (h *PostingHandler) Delete(c *fiber.Ctx) error {
	company, err := h.company(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only employer accounts can delete postings")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.uc.Delete(c.Context(), company.ID, id); err != nil {
		return presenter.Error(c, http.StatusNotFound, "posting not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

type photoRequest struct {
	FilePath string `json:"file_path"`
}

// AddPhoto uploads a photo record and makes it the posting's active one;
// any previous active photo is deactivated in the same transaction.
// @Summary Add a posting photo
// @Tags    postings
// @Accept  json
// @Produce json
// @Param   id path string true "posting ID (UUID)"
// @Param   input body photoRequest true "photo payload"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /postings/{id}/photos [post]
func (h *PostingHandler) AddPhoto(c *fiber.Ctx) error {
	company, err := h.company(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only employer accounts can add photos")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	var req photoRequest
	if err := c.BodyParser(&req); err != nil || req.FilePath == "" {
		return presenter.Error(c, http.StatusBadRequest, "file_path is required")
	}
	photo, err := h.uc.AddPhoto(c.Context(), company.ID, id, req.FilePath)
	if err != nil {
		if errors.Is(err, posting.ErrNotFound) || errors.Is(err, posting.ErrNotOwner) {
			return presenter.Error(c, http.StatusNotFound, "posting not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to add photo")
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"id":        photo.ID.String(),
		"file_path": photo.FilePath,
		"is_active": photo.IsActive,
	})
}

// @Summary List posting photos
// @Tags    postings
// @Produce json
// @Param   id path string true "posting ID (UUID)"
// @Success 200 {array} map[string]any
// @Router  /postings/{id}/photos [get]
func (h *PostingHandler) ListPhotos(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	photos, err := h.uc.ListPhotos(c.Context(), id)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list photos")
	}
	out := make([]fiber.Map, 0, len(photos))
	for _, ph := range photos {
		out = append(out, fiber.Map{
			"id":        ph.ID.String(),
			"file_path": ph.FilePath,
			"is_active": ph.IsActive,
		})
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// DeletePhoto soft-deletes one photo of the caller's posting. Removing
// the active photo clears the posting's active pointer.
// @Summary Delete a posting photo
// @Tags    postings
// @Produce json
// @Param   id path string true "posting ID (UUID)"
// @Param   photoId path string true "photo ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /postings/{id}/photos/{photoId} [delete]
func (h *PostingHandler) DeletePhoto(c *fiber.Ctx) error {
	company, err := h.company(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only employer accounts can delete photos")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	photoID, err := uuid.Parse(c.Params("photoId"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.uc.DeletePhoto(c.Context(), company.ID, id, photoID); err != nil {
		if errors.Is(err, posting.ErrNotFound) || errors.Is(err, posting.ErrNotOwner) {
			return presenter.Error(c, http.StatusNotFound, "photo not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to delete photo")
	}
	return c.SendStatus(http.StatusNoContent)
}

// ClearPhotos soft-deletes every photo of the caller's posting in one
// operation and reports the count.
// @Summary Delete all posting photos
// @Tags    postings
// @Produce json
// @Param   id path string true "posting ID (UUID)"
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /postings/{id}/photos [delete]
func (h *PostingHandler) ClearPhotos(c *fiber.Ctx) error {
	company, err := h.company(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "only employer accounts can delete photos")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	removed, err := h.uc.ClearPhotos(c.Context(), company.ID, id)
	if err != nil {
		if errors.Is(err, posting.ErrNotFound) || errors.Is(err, posting.ErrNotOwner) {
			return presenter.Error(c, http.StatusNotFound, "posting not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to delete photos")
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"removed": removed})
}

// Search queries the search index. Results may lag behind the store;
// the index is best-effort.
// @Summary Full-text posting search
// @Tags    postings
// @Produce json
// @Param   q query string true "search query"
// @Success 200 {array} map[string]any
// @Router  /postings/search [get]
func (h *PostingHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return presenter.Error(c, http.StatusBadRequest, "q is required")
	}
	hits, err := h.search.Search(q)
	if err != nil {
		return presenter.Error(c, http.StatusServiceUnavailable, "search is unavailable")
	}
	if hits == nil {
		hits = []map[string]any{}
	}
	return presenter.JSON(c, http.StatusOK, hits)
}

func postingDTO(p posting.JobPosting) fiber.Map {
	body := fiber.Map{
		"id":                 p.ID.String(),
		"company_id":         p.CompanyID.String(),
		"title":              p.Title,
		"description":        p.Description,
		"expiry_date":        p.ExpiryDate,
		"salary_range_start": p.SalaryRangeStart,
		"salary_range_end":   p.SalaryRangeEnd,
		"working_hours":      p.WorkingHours,
		"skill_ids":          p.SkillIDs,
		"industry_area_ids":  p.IndustryAreaIDs,
	}
	if p.ActivePhotoID != nil {
		body["active_photo_id"] = p.ActivePhotoID.String()
	}
	return body
}

func postingsDTO(ps []posting.JobPosting) []fiber.Map {
	out := make([]fiber.Map, 0, len(ps))
	for _, p := range ps {
		out = append(out, postingDTO(p))
	}
	return out
}
