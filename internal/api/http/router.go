package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/movementpass/public-api/internal/api/http/handlers"
	"github.com/movementpass/public-api/internal/auth"
	"github.com/movementpass/public-api/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Identity       *handlers.IdentityHandler
	Passes         *handlers.PassesHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	identity := app.Group("/identity")
	identity.Post("/register", cfg.Identity.Register)
	identity.Post("/login", cfg.Identity.Login)

	passes := app.Group("/passes", cfg.AuthMiddleware.Handle)
	passes.Post("/", cfg.Passes.Apply)
	passes.Get("/", cfg.Passes.List)
	passes.Get("/:id<len(32)>", cfg.Passes.Get)
}
