package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jobport/jobport/api/http/handlers"
	"github.com/jobport/jobport/pkg/security/jwt"
)

// Handlers bundles everything Register wires onto the app.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Account     *handlers.AccountHandler
	Posting     *handlers.PostingHandler
	Application *handlers.ApplicationHandler
	Skill       *handlers.TaxonomyHandler
	Industry    *handlers.TaxonomyHandler
	Admin       *handlers.AdminHandler
	Health      *handlers.HealthHandler
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, h Handlers, authMW fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	accounts := v1.Group("/accounts")
	accounts.Post("/register/:role", h.Auth.Register)
	accounts.Post("/login", h.Auth.Login)
	accounts.Post("/token/refresh", h.Auth.Refresh)
	accounts.Post("/logout", authMW, h.Auth.Logout)
	accounts.Get("/me", authMW, h.Account.Me)
	accounts.Put("/me", authMW, h.Account.UpdateMe)
	accounts.Get("/me/addresses", authMW, h.Account.ListAddresses)
	accounts.Post("/me/addresses", authMW, h.Account.AddAddress)
	accounts.Get("/me/files", authMW, h.Account.ListFiles)
	accounts.Post("/me/files", authMW, h.Account.AddFile)

	postings := v1.Group("/postings")
	postings.Get("/search", h.Posting.Search)
	postings.Get("/", h.Posting.List)
	postings.Get("/:id", h.Posting.GetByID)
	postings.Get("/:id/photos", h.Posting.ListPhotos)
	postings.Post("/", authMW, h.Posting.Create)
	postings.Put("/:id", authMW, h.Posting.Update)
	postings.Delete("/:id", authMW, h.Posting.Delete)
	postings.Post("/:id/photos", authMW, h.Posting.AddPhoto)
	postings.Delete("/:id/photos/:photoId", authMW, h.Posting.DeletePhoto)
	postings.Delete("/:id/photos", authMW, h.Posting.ClearPhotos)
	postings.Get("/:id/applications", authMW, h.Application.ListByPosting)

	apps := v1.Group("/applications", authMW)
	apps.Post("/", h.Application.Apply)
	apps.Get("/", h.Application.ListMine)
	apps.Put("/:id/status", h.Application.SetStatus)
	apps.Delete("/:id", h.Application.Withdraw)

	registerTaxonomy(v1.Group("/skills"), h.Skill, authMW)
	registerTaxonomy(v1.Group("/industry-areas"), h.Industry, authMW)

	// Staff-only surface: cross-view listing, restore, purge.
	admin := v1.Group("/admin", authMW, jwt.RequireStaff())
	admin.Get("/users", h.Admin.ListUsers)
	admin.Post("/users", h.Admin.CreateStaff)
	admin.Delete("/users/:id", h.Admin.DeleteUser)
	admin.Post("/users/:id/restore", h.Admin.RestoreUser)
	admin.Delete("/users/:id/purge", h.Admin.PurgeUser)
	admin.Get("/postings", h.Admin.ListPostings)
	admin.Delete("/postings/:id", h.Admin.DeletePosting)
	admin.Post("/postings/:id/restore", h.Admin.RestorePosting)
	admin.Delete("/postings/:id/purge", h.Admin.PurgePosting)
}

// registerTaxonomy wires one reference collection. Reads are public,
// mutation is staff-only.
func registerTaxonomy(g fiber.Router, h *handlers.TaxonomyHandler, authMW fiber.Handler) {
	g.Get("/", h.List)
	g.Post("/", authMW, jwt.RequireStaff(), h.Create)
	g.Delete("/:id", authMW, jwt.RequireStaff(), h.Delete)
	g.Post("/:id/restore", authMW, jwt.RequireStaff(), h.Restore)
	g.Delete("/:id/purge", authMW, jwt.RequireStaff(), h.Purge)
}
