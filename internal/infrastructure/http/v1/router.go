// Package v1 wires HTTP handlers into the API router.
package v1

import (
	"github.com/gin-gonic/gin"

	"freshmart/internal/domain/auth"
	"freshmart/internal/infrastructure/http/v1/handlers"
	"freshmart/internal/infrastructure/http/v1/middleware"
	"freshmart/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	JWTService *auth.JWTService

	Health           *handlers.HealthHandler
	Auth             *handlers.AuthHandler
	Category         *handlers.CategoryHandler
	Product          *handlers.ProductHandler
	StockTransaction *handlers.StockTransactionHandler
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Middleware order matters: recovery first, error handler last so it
	// sees errors registered by everything below it.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	health := router.Group("/health")
	{
		health.GET("/live", cfg.Health.Live)
		health.GET("/ready", cfg.Health.Ready)
		health.GET("/info", cfg.Health.Info)
	}

	api := router.Group("/api/v1")

	// Public endpoints
	api.POST("/auth/login", cfg.Auth.Login)

	// Authenticated endpoints
	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWTService))
	{
		authed.GET("/auth/me", cfg.Auth.Me)

		// Catalog reads are open to any authenticated user
		authed.GET("/categories", cfg.Category.List)
		authed.GET("/categories/:id", cfg.Category.Get)
		authed.GET("/products", cfg.Product.List)
		authed.GET("/products/low-stock", cfg.Product.LowStock)
		authed.GET("/products/:id", cfg.Product.Get)

		// Ledger history is visible to staff and above
		history := authed.Group("")
		history.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleStaff))
		{
			history.GET("/stock-transactions", cfg.StockTransaction.List)
			history.GET("/stock-transactions/:id", cfg.StockTransaction.Get)
			history.GET("/stock-transactions/turnover/:productId", cfg.StockTransaction.Turnover)
			history.GET("/products/:id/movements", cfg.StockTransaction.Movements)
		}

		// Catalog writes and ledger writes require manager or admin
		manage := authed.Group("")
		manage.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager))
		{
			manage.POST("/categories", cfg.Category.Create)
			manage.PUT("/categories/:id", cfg.Category.Update)
			manage.DELETE("/categories/:id", cfg.Category.Delete)

			manage.POST("/products", cfg.Product.Create)
			manage.PUT("/products/:id", cfg.Product.Update)
			manage.DELETE("/products/:id", cfg.Product.Delete)

			manage.POST("/stock-transactions", cfg.StockTransaction.Create)
			manage.GET("/stock-transactions/:id/audit", cfg.StockTransaction.AuditTrail)
		}

		// User management is admin only
		admin := authed.Group("")
		admin.Use(middleware.RequireRole(auth.RoleAdmin))
		{
			admin.POST("/auth/register", cfg.Auth.Register)
		}
	}

	return router
}
