package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jobport/jobport/api/http/presenter"
	"github.com/jobport/jobport/pkg/account"
)

type AccountHandler struct {
	uc account.UseCase
}

func NewAccountHandler(uc account.UseCase) *AccountHandler { return &AccountHandler{uc: uc} }

func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	idStr, _ := c.Locals("userId").(string)
	return uuid.Parse(idStr)
}

// Me returns the caller's identity plus the role-specific profile.
// @Summary Current account
// @Tags    accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /accounts/me [get]
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not identify user")
	}
	user, err := h.uc.GetByID(c.Context(), uid)
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "account not found")
	}
	body := fiber.Map{
		"id":         user.ID.String(),
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"usage_type": string(user.UsageType),
		"is_staff":   user.IsStaff,
	}
	switch user.UsageType {
	case account.UsageJobSeeker:
		if seeker, err := h.uc.JobSeekerOf(c.Context(), uid); err == nil {
			body["job_seeker"] = seekerDTO(seeker)
		}
	case account.UsageEmployer:
		if company, err := h.uc.CompanyOf(c.Context(), uid); err == nil {
			body["company"] = companyDTO(company)
		}
	}
	return presenter.JSON(c, http.StatusOK, body)
}

type updateSeekerRequest struct {
	BirthDate *time.Time  `json:"birth_date"`
	Gender    string      `json:"gender"`
	Education string      `json:"education"`
	SkillIDs  []uuid.UUID `json:"skill_ids"`
}

type updateCompanyRequest struct {
	Name              string      `json:"name"`
	EstablishmentYear int         `json:"establishment_year"`
	PhoneNumber       string      `json:"phone_number"`
	IndustryAreaIDs   []uuid.UUID `json:"industry_area_ids"`
}

// UpdateMe updates the role-specific profile. The body shape depends on
// the caller's usage type.
// @Summary Update current profile
// @Tags    accounts
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /accounts/me [put]
func (h *AccountHandler) UpdateMe(c *fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not identify user")
	}
	usage, _ := c.Locals("usageType").(string)
	switch account.UsageType(usage) {
	case account.UsageJobSeeker:
		return h.updateSeeker(c, uid)
	case account.UsageEmployer:
		return h.updateCompany(c, uid)
	default:
		return presenter.Error(c, http.StatusBadRequest, "account has no profile to update")
	}
}

func (h *AccountHandler) updateSeeker(c *fiber.Ctx, uid uuid.UUID) error {
	var req updateSeekerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	seeker, err := h.uc.JobSeekerOf(c.Context(), uid)
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "profile not found")
	}
	seeker.BirthDate = req.BirthDate
	seeker.Gender = account.Gender(req.Gender)
	seeker.Education = account.Education(req.Education)
	seeker.SkillIDs = req.SkillIDs
	if err := h.uc.UpdateJobSeeker(c.Context(), seeker); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to update profile")
	}
	return presenter.JSON(c, http.StatusOK, seekerDTO(seeker))
}

func (h *AccountHandler) updateCompany(c *fiber.Ctx, uid uuid.UUID) error {
	var req updateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	company, err := h.uc.CompanyOf(c.Context(), uid)
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "profile not found")
	}
	company.Name = req.Name
	company.EstablishmentYear = req.EstablishmentYear
	company.PhoneNumber = req.PhoneNumber
	company.IndustryAreaIDs = req.IndustryAreaIDs
	if err := h.uc.UpdateCompany(c.Context(), company); err != nil {
		var ve account.ValidationError
		if errors.As(err, &ve) {
			return presenter.Fields(c, ve)
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to update profile")
	}
	return presenter.JSON(c, http.StatusOK, companyDTO(company))
}

type addressRequest struct {
	AddressText string `json:"address_text"`
	City        string `json:"city"`
	IsActive    bool   `json:"is_active"`
}

// AddAddress attaches an address to the caller's profile. Activating it
// deactivates the previous active address atomically.
// @Summary Add an address
// @Tags    accounts
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /accounts/me/addresses [post]
func (h *AccountHandler) AddAddress(c *fiber.Ctx) error {
	kind, ownerID, err := h.owner(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "account has no profile")
	}
	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if req.AddressText == "" || req.City == "" {
		return presenter.Error(c, http.StatusBadRequest, "address_text and city are required")
	}
	addr, err := h.uc.AddAddress(c.Context(), account.Address{
		OwnerKind:   kind,
		OwnerID:     ownerID,
		AddressText: req.AddressText,
		City:        req.City,
		IsActive:    req.IsActive,
	})
	if err != nil {
		if errors.Is(err, account.ErrAddressConflict) {
			return presenter.Error(c, http.StatusConflict, err.Error())
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to add address")
	}
	return presenter.JSON(c, http.StatusCreated, addressDTO(addr))
}

// ListAddresses lists the caller's addresses, active first.
// @Summary List addresses
// @Tags    accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Router  /accounts/me/addresses [get]
func (h *AccountHandler) ListAddresses(c *fiber.Ctx) error {
	kind, ownerID, err := h.owner(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "account has no profile")
	}
	addrs, err := h.uc.ListAddresses(c.Context(), kind, ownerID)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list addresses")
	}
	out := make([]fiber.Map, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, addressDTO(a))
	}
	return presenter.JSON(c, http.StatusOK, out)
}

type seekerFileRequest struct {
	FilePath string `json:"file_path"`
}

// AddFile records a document (resume, certificate) for the caller's
// job seeker profile.
// @Summary Add a seeker document
// @Tags    accounts
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /accounts/me/files [post]
func (h *AccountHandler) AddFile(c *fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not identify user")
	}
	seeker, err := h.uc.JobSeekerOf(c.Context(), uid)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "account has no job seeker profile")
	}
	var req seekerFileRequest
	if err := c.BodyParser(&req); err != nil || req.FilePath == "" {
		return presenter.Error(c, http.StatusBadRequest, "file_path is required")
	}
	seekerID := seeker.ID
	file, err := h.uc.AddSeekerFile(c.Context(), account.SeekerFile{
		JobSeekerID: &seekerID,
		FilePath:    req.FilePath,
		IsActive:    true,
	})
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to add file")
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"id":        file.ID.String(),
		"file_path": file.FilePath,
		"is_active": file.IsActive,
	})
}

// ListFiles lists the documents attached to the caller's job seeker
// profile in upload order.
// @Summary List seeker documents
// @Tags    accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /accounts/me/files [get]
func (h *AccountHandler) ListFiles(c *fiber.Ctx) error {
	uid, err := currentUser(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "could not identify user")
	}
	files, err := h.uc.ListSeekerFiles(c.Context(), uid)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return presenter.Error(c, http.StatusBadRequest, "account has no job seeker profile")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to list files")
	}
	out := make([]fiber.Map, 0, len(files))
	for _, f := range files {
		out = append(out, fiber.Map{
			"id":        f.ID.String(),
			"file_path": f.FilePath,
			"is_active": f.IsActive,
		})
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// owner resolves the caller's profile into an address owner reference.
func (h *AccountHandler) owner(c *fiber.Ctx) (account.OwnerKind, uuid.UUID, error) {
	uid, err := currentUser(c)
	if err != nil {
		return "", uuid.Nil, err
	}
	usage, _ := c.Locals("usageType").(string)
	switch account.UsageType(usage) {
	case account.UsageJobSeeker:
		seeker, err := h.uc.JobSeekerOf(c.Context(), uid)
		if err != nil {
			return "", uuid.Nil, err
		}
		return account.OwnerJobSeeker, seeker.ID, nil
	case account.UsageEmployer:
		company, err := h.uc.CompanyOf(c.Context(), uid)
		if err != nil {
			return "", uuid.Nil, err
		}
		return account.OwnerCompany, company.ID, nil
	default:
		return "", uuid.Nil, account.ErrNotFound
	}
}

func seekerDTO(s account.JobSeeker) fiber.Map {
	return fiber.Map{
		"id":         s.ID.String(),
		"birth_date": s.BirthDate,
		"gender":     string(s.Gender),
		"education":  string(s.Education),
		"skill_ids":  s.SkillIDs,
	}
}

func companyDTO(cm account.Company) fiber.Map {
	return fiber.Map{
		"id":                 cm.ID.String(),
		"name":               cm.Name,
		"establishment_year": cm.EstablishmentYear,
		"phone_number":       cm.PhoneNumber,
		"industry_area_ids":  cm.IndustryAreaIDs,
	}
}

func addressDTO(a account.Address) fiber.Map {
	return fiber.Map{
		"id":           a.ID.String(),
		"address_text": a.AddressText,
		"city":         a.City,
		"is_active":    a.IsActive,
	}
}
