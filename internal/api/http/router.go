package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enterprise-onboarding/internal/api/http/handlers"
	"github.com/spec-kit/enterprise-onboarding/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Requests       *handlers.RequestsHandler
	Review         *handlers.ReviewHandler
	Setup          *handlers.SetupHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	public := app.Group("/enterprise")
	public.Post("/requests", cfg.Requests.Submit)
	public.Post("/setup/validate", cfg.Setup.ValidateCode)
	public.Post("/setup/complete", cfg.Setup.CompleteSetup)

	admin := app.Group("/admin/enterprise", cfg.AuthMiddleware.Handle)
	admin.Get("/requests", cfg.Requests.List)
	admin.Patch("/requests/:id/review", cfg.Requests.UpdateReview)
	admin.Post("/requests/:id/decision", cfg.Review.ApplyDecision)
	admin.Post("/requests/:id/code/resend", cfg.Review.ResendCode)
	admin.Post("/requests/:id/code/revoke", cfg.Review.RevokeCode)
	admin.Get("/access-codes", cfg.Requests.Overview)
}
