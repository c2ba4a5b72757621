package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jobport/jobport/api/http/presenter"
	"github.com/jobport/jobport/pkg/taxonomy"
)

// TaxonomyHandler serves one reference collection. Two instances are
// registered, one per kind.
type TaxonomyHandler struct {
	uc   taxonomy.UseCase
	kind taxonomy.Kind
}

func NewTaxonomyHandler(uc taxonomy.UseCase, kind taxonomy.Kind) *TaxonomyHandler {
	return &TaxonomyHandler{uc: uc, kind: kind}
}

type termRequest struct {
	Name string `json:"name"`
}

// @Summary Create a reference term
// @Tags    taxonomy
// @Accept  json
// @Produce json
// @Param   input body termRequest true "term payload"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /skills [post]
func (h *TaxonomyHandler) Create(c *fiber.Ctx) error {
	var req termRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	term, err := h.uc.Create(c.Context(), h.kind, req.Name)
	if err != nil {
		if errors.Is(err, taxonomy.ErrEmpty) {
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to create term")
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"id":   term.ID.String(),
		"name": term.Name,
	})
}

// List is public for active terms; deleted/all views are staff-only.
// @Summary List reference terms
// @Tags    taxonomy
// @Produce json
// @Param   view query string false "active|deleted|all"
// @Success 200 {array} map[string]any
// @Router  /skills [get]
func (h *TaxonomyHandler) List(c *fiber.Ctx) error {
	view, err := parseView(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	limit, offset := parseLimitOffset(c, 100)
	terms, err := h.uc.List(c.Context(), h.kind, view, limit, offset)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list terms")
	}
	out := make([]fiber.Map, 0, len(terms))
	for _, t := range terms {
		out = append(out, fiber.Map{"id": t.ID.String(), "name": t.Name})
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// @Summary Delete a reference term
// @Tags    taxonomy
// @Param   id path string true "term ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /skills/{id} [delete]
func (h *TaxonomyHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.uc.Delete(c.Context(), h.kind, id); err != nil {
		return presenter.Error(c, http.StatusNotFound, "term not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

// @Summary Restore a deleted term
// @Tags    taxonomy
// @Param   id path string true "term ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /skills/{id}/restore [post]
func (h *TaxonomyHandler) Restore(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.uc.Restore(c.Context(), h.kind, id); err != nil {
		return presenter.Error(c, http.StatusNotFound, "term not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

// Purge erases the term and its join-table references for good.
// @Summary Permanently delete a term
// @Tags    taxonomy
// @Param   id path string true "term ID (UUID)"
// @Security BearerAuth
// @Success 204 {object} nil
// @Router  /skills/{id}/purge [delete]
func (h *TaxonomyHandler) Purge(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid UUID")
	}
	if err := h.uc.Purge(c.Context(), h.kind, id); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to purge term")
	}
	return c.SendStatus(http.StatusNoContent)
}
