package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/catalog-service/internal/api/http/handlers"
	"github.com/spec-kit/catalog-service/internal/auth"
	"github.com/spec-kit/catalog-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Categories     *handlers.CategoriesHandler
	Products       *handlers.ProductsHandler
	Reviews        *handlers.ReviewsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users", cfg.Users.Register)
	authGroup.Post("/token", cfg.Users.Login)
	authGroup.Post("/refresh", cfg.Users.Refresh)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	categories := app.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	adminCategories := categories.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	adminCategories.Post("/", cfg.Categories.Create)
	adminCategories.Put("/:id", cfg.Categories.Update)
	adminCategories.Delete("/:id", cfg.Categories.Delete)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/category/:id", cfg.Products.ListByCategory)
	products.Get("/:id", cfg.Products.Get)
	products.Get("/:id/reviews", cfg.Reviews.ListByProduct)
	sellerProducts := products.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSeller))
	sellerProducts.Post("/", cfg.Products.Create)
	sellerProducts.Put("/:id", cfg.Products.Update)
	sellerProducts.Delete("/:id", cfg.Products.Delete)

	reviews := app.Group("/reviews")
	reviews.Get("/", cfg.Reviews.List)
	reviews.Post("/", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleBuyer), cfg.Reviews.Create)
	reviews.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Reviews.Delete)
}
