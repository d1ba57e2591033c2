// FreshMart API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"freshmart/internal/domain/auth"
	"freshmart/internal/domain/catalog/category"
	"freshmart/internal/domain/catalog/product"
	"freshmart/internal/domain/ledger"
	v1 "freshmart/internal/infrastructure/http/v1"
	"freshmart/internal/infrastructure/http/v1/handlers"
	"freshmart/internal/infrastructure/storage/postgres"
	"freshmart/internal/infrastructure/storage/postgres/auth_repo"
	"freshmart/internal/infrastructure/storage/postgres/catalog_repo"
	"freshmart/internal/infrastructure/storage/postgres/ledger_repo"
	"freshmart/pkg/logger"
	"freshmart/pkg/numerator"
)

func main() {
	ctx := context.Background()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "production") == "development",
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		panic(err)
	}
	ctx = logger.WithLogger(ctx, log)

	if getEnv("APP_ENV", "production") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		logger.Fatal(ctx, "failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	audit, err := postgres.NewAuditService(txManager)
	if err != nil {
		logger.Fatal(ctx, "failed to init audit service", "error", err)
	}

	num := numerator.New(pool)

	// Repositories
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	ledgerRepo := ledger_repo.NewStockTransactionRepo(txManager, audit)
	userRepo := auth_repo.NewUserRepo(txManager)

	// Services
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, jwtService)
	categoryService := category.NewService(categoryRepo, num)
	productService := product.NewService(productRepo, num)
	ledgerService := ledger.NewService(ledgerRepo, productRepo, authService, num, txManager)

	// HTTP
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		JWTService:       jwtService,
		Health:           handlers.NewHealthHandler(pool),
		Auth:             handlers.NewAuthHandler(authService),
		Category:         handlers.NewCategoryHandler(categoryService),
		Product:          handlers.NewProductHandler(productService),
		StockTransaction: handlers.NewStockTransactionHandler(ledgerService, audit),
	})

	// Periodic pool statistics, stopped on shutdown.
	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(statsCtx, pool.Pool)
			}
		}
	}()

	addr := ":" + getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "forced shutdown", "error", err)
	}

	logger.Info(ctx, "server stopped")
}

// getEnv returns env value or default.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// mustEnv returns env value or exits.
func mustEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("required environment variable not set: " + key)
	}
	return val
}
