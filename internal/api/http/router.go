package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Browsing is public; mutations require a
// bearer credential with the admin role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Get("/user", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)

	issues := api.Group("/issues")
	issues.Get("/", cfg.Issues.ListIssues)
	issues.Get("/:id", cfg.Issues.GetIssue)

	protected := issues.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	protected.Post("/", cfg.Issues.CreateIssue)
	protected.Put("/:id", cfg.Issues.UpdateIssue)
	protected.Delete("/:id", cfg.Issues.DeleteIssue)
}
