// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"freshmart/internal/core/apperror"
	appctx "freshmart/internal/core/context"
	"freshmart/internal/core/types"
	"freshmart/internal/domain/auth"
	"freshmart/internal/domain/catalog/category"
	"freshmart/internal/domain/catalog/product"
	"freshmart/internal/domain/ledger"
	"freshmart/internal/infrastructure/storage/postgres"
	"freshmart/internal/infrastructure/storage/postgres/auth_repo"
	"freshmart/internal/infrastructure/storage/postgres/catalog_repo"
	"freshmart/internal/infrastructure/storage/postgres/ledger_repo"
	"freshmart/pkg/logger"
	"freshmart/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	audit, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to init audit service", "error", err)
	}
	num := numerator.New(pool)

	userRepo := auth_repo.NewUserRepo(txManager)
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	ledgerRepo := ledger_repo.NewStockTransactionRepo(txManager, audit)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(getEnv("JWT_SECRET", "seed-only-secret")))
	authService := auth.NewService(userRepo, jwtService)
	categoryService := category.NewService(categoryRepo, num)
	productService := product.NewService(productRepo, num)
	ledgerService := ledger.NewService(ledgerRepo, productRepo, authService, num, txManager)

	admin, err := seedAdmin(ctx, authService)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") != "true" {
		log.Info("seeding completed successfully")
		return
	}

	// Demo data is recorded on behalf of the admin so the opening stock
	// transaction has a proper actor.
	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID: admin.ID.String(),
		Email:  admin.Email,
		Name:   admin.Name,
		Roles:  admin.Roles,
	})

	if err := seedDemoData(ctx, categoryService, productService, ledgerService, log); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedAdmin(ctx context.Context, authService *auth.Service) (*auth.User, error) {
	email := getEnv("ADMIN_EMAIL", "admin@freshmart.local")
	password := getEnv("ADMIN_PASSWORD", "Admin123!")

	admin, err := authService.Register(ctx, email, "System Admin", password, auth.RoleAdmin)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate {
			logger.Info(ctx, "admin user already exists", "email", email)
			result, loginErr := authService.Login(ctx, email, password)
			if loginErr != nil {
				return nil, fmt.Errorf("admin exists but login failed: %w", loginErr)
			}
			return result.User, nil
		}
		return nil, err
	}

	logger.Info(ctx, "admin user created", "email", email, "user_id", admin.ID)
	return admin, nil
}

type productSeed struct {
	name     string
	category string
	unit     string
	price    string
	minStock int64
	opening  int64
}

func seedDemoData(
	ctx context.Context,
	categories *category.Service,
	products *product.Service,
	ledgerSvc *ledger.Service,
	log *logger.Logger,
) error {
	log.Info("seeding demo data...")

	categoryNames := []string{"Fruits", "Vegetables", "Dairy", "Bakery"}
	categoryIDs := make(map[string]*category.Category, len(categoryNames))

	for _, name := range categoryNames {
		c := &category.Category{}
		c.Name = name
		if err := categories.Create(ctx, c); err != nil {
			return fmt.Errorf("create category %s: %w", name, err)
		}
		categoryIDs[name] = c
	}

	seeds := []productSeed{
		{"Apples", "Fruits", "kg", "1.50", 20, 100},
		{"Bananas", "Fruits", "kg", "0.80", 20, 150},
		{"Tomatoes", "Vegetables", "kg", "2.10", 15, 80},
		{"Potatoes", "Vegetables", "kg", "0.60", 50, 300},
		{"Milk 1L", "Dairy", "pcs", "1.10", 30, 120},
		{"Cheese 200g", "Dairy", "pcs", "3.40", 10, 40},
		{"White Bread", "Bakery", "pcs", "1.20", 25, 60},
	}

	openingLines := make([]ledger.LineInput, 0, len(seeds))

	for _, s := range seeds {
		p := product.New("", s.name, types.MustMoney(s.price))
		p.Unit = s.unit
		p.MinStockLevel = s.minStock
		if c, ok := categoryIDs[s.category]; ok {
			categoryID := c.ID
			p.CategoryID = &categoryID
		}

		if err := products.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", s.name, err)
		}

		openingLines = append(openingLines, ledger.LineInput{
			ProductID: p.ID,
			Quantity:  s.opening,
		})
	}

	// Opening balances go through the ledger like any other movement,
	// so history explains every unit on hand.
	t, err := ledgerSvc.Create(ctx, ledger.CreateInput{
		Direction: ledger.DirectionIn,
		Note:      "opening stock",
		Lines:     openingLines,
	})
	if err != nil {
		return fmt.Errorf("record opening stock: %w", err)
	}

	log.Infow("demo data seeded",
		"categories", len(categoryNames),
		"products", len(seeds),
		"opening_transaction", t.Number,
	)
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
