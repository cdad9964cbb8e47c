package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Products       *handlers.ProductsHandler
	Account        *handlers.AccountHandler
	Orders         *handlers.OrdersHandler
	Profiles       *handlers.ProfilesHandler
	Posts          *handlers.PostsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Permissions are attached per route.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authenticated := cfg.AuthMiddleware.Handle
	user := auth.RequireUser()
	staff := auth.RequireStaff()

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", authenticated, user, cfg.Auth.Me)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", authenticated, staff, cfg.Products.Create)
	products.Patch("/:id", authenticated, staff, cfg.Products.Update)
	products.Delete("/:id", authenticated, staff, cfg.Products.Delete)

	account := app.Group("/account", authenticated, user)
	account.Get("/", cfg.Account.List)
	account.Post("/deposit", cfg.Account.Deposit)
	account.Post("/withdraw", cfg.Account.Withdraw)
	account.Get("/transactions", cfg.Account.Transactions)

	orders := app.Group("/orders", authenticated, user)
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/", cfg.Orders.List)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Patch("/:id/status", staff, cfg.Orders.UpdateStatus)

	profiles := app.Group("/userprofiles")
	profiles.Get("/", cfg.Profiles.List)
	profiles.Get("/:id", cfg.Profiles.Get)
	profiles.Post("/", authenticated, user, cfg.Profiles.Create)
	profiles.Patch("/:id", authenticated, user, cfg.Profiles.Update)
	profiles.Delete("/:id", authenticated, user, cfg.Profiles.Delete)

	posts := app.Group("/posts")
	posts.Get("/", cfg.Posts.List)
	posts.Get("/:id", cfg.Posts.Get)
	posts.Post("/", authenticated, user, cfg.Posts.Create)
	posts.Patch("/:id", authenticated, user, cfg.Posts.Update)
	posts.Delete("/:id", authenticated, user, cfg.Posts.Delete)
}
