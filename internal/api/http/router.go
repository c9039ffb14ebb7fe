package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-triage/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-triage/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	KB      *handlers.KBHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets", auth.Middleware())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/suggestion", cfg.Tickets.GetSuggestion)
	tickets.Post("/:id/suggestion/feedback", cfg.Tickets.SubmitFeedback)
	tickets.Get("/:id/audit", cfg.Tickets.ListAudit)

	staffOnly := tickets.Group("", auth.RequireStaff())
	staffOnly.Post("/:id/reply", cfg.Tickets.Reply)
	staffOnly.Post("/:id/assign", cfg.Tickets.Assign)
	staffOnly.Post("/:id/status", cfg.Tickets.UpdateStatus)

	kb := app.Group("/kb/articles", auth.Middleware())
	kb.Get("", cfg.KB.ListArticles)
	kb.Get("/:id", cfg.KB.GetArticle)

	kbStaff := kb.Group("", auth.RequireStaff())
	kbStaff.Post("", cfg.KB.CreateArticle)
	kbStaff.Put("/:id", cfg.KB.UpdateArticle)
	kbStaff.Delete("/:id", cfg.KB.DeleteArticle)
}
