package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-bookstore-api/internal/handler"
	"go-bookstore-api/internal/middleware"
	"go-bookstore-api/internal/model"
	"go-bookstore-api/internal/repository"
	"go-bookstore-api/internal/service"
	"go-bookstore-api/internal/ws"
	"go-bookstore-api/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	db := database.ConnectDB()
	// TODO: move to a dedicated migration tool before the schema settles
	db.AutoMigrate(
		&model.Book{},
		&model.PriceHistory{},
		&model.StockMovement{},
		&model.Transaction{},
		&model.User{},
		&model.Privilege{},
		&model.Role{},
	)

	seedPrivilegesRolesAndAdmin(db)

	wsHub := ws.NewHub()
	go wsHub.Run()

	// Dependency injection
	store := repository.NewGormStore(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	guard := service.NewBookGuard()
	priceLedger := service.NewPriceLedger(store, guard, wsHub)
	stockLedger := service.NewStockLedger(store, guard, wsHub)
	bookService := service.NewBookService(store, guard, priceLedger, wsHub)
	txService := service.NewTransactionService(store, guard, wsHub)
	dashService := service.NewDashboardService(store)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	bookHandler := handler.NewBookHandler(bookService, priceLedger, stockLedger)
	txHandler := handler.NewTransactionHandler(txService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	app := fiber.New(fiber.Config{
		AppName: "Bookstore Ledger API v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetStockMovement)
	protected.Get("/dashboard/financial-summary", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetFinancialSummary)

	// Book catalog. low-stock goes before :id so Fiber doesn't match it
	// as a book id.
	protected.Get("/books", middleware.RequirePrivilege("book:view"), bookHandler.SearchBooks)
	protected.Get("/books/low-stock", middleware.RequirePrivilege("book:view"), bookHandler.GetLowStockBooks)
	protected.Get("/books/:id", middleware.RequirePrivilege("book:view"), bookHandler.GetBook)
	protected.Post("/books", middleware.RequirePrivilege("book:create"), bookHandler.CreateBook)
	protected.Put("/books/:id", middleware.RequirePrivilege("book:update"), bookHandler.UpdateBook)
	protected.Delete("/books/:id", middleware.RequirePrivilege("book:delete"), bookHandler.DeleteBook)

	// Ledger endpoints
	protected.Put("/books/:id/price", middleware.RequirePrivilege("price:update"), bookHandler.UpdatePrice)
	protected.Get("/books/:id/price-history", middleware.RequirePrivilege("book:view"), bookHandler.GetPriceHistory)
	protected.Put("/books/:id/stock", middleware.RequirePrivilege("stock:update"), bookHandler.UpdateStock)
	protected.Get("/books/:id/stock-movements", middleware.RequirePrivilege("book:view"), bookHandler.GetStockMovements)

	// Transactions
	protected.Get("/transactions", middleware.RequirePrivilege("transaction:view"), txHandler.SearchTransactions)
	protected.Get("/transactions/:id", middleware.RequirePrivilege("transaction:view"), txHandler.GetTransaction)
	protected.Post("/transactions/sale", middleware.RequirePrivilege("transaction:create"), txHandler.RecordSale)
	protected.Post("/transactions/purchase", middleware.RequirePrivilege("transaction:create"), txHandler.RecordPurchase)
	protected.Post("/transactions/return", middleware.RequirePrivilege("transaction:create"), txHandler.RecordReturn)

	// User management
	protected.Get("/users", middleware.RequirePrivilege("user:view"), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege("user:view"), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles and privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// Graceful shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// ADMIN gets every privilege
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		db.Model(&adminRole).Association("Privileges").Replace(allPrivileges)
		log.Println("ADMIN role assigned all privileges")
	}

	// STAFF works the catalog and register but not user management
	staffRole, err := roleRepo.FindByCode(model.RoleStaff)
	if err == nil && len(staffRole.Privileges) == 0 {
		staffPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			switch p.Code {
			case "user:view", "user:create", "user:update", "user:delete", "user:update_privilege":
				continue
			}
			staffPrivileges = append(staffPrivileges, p)
		}
		db.Model(&staffRole).Association("Privileges").Replace(staffPrivileges)
		log.Println("STAFF role assigned catalog privileges")
	}

	// Default admin account for first login
	if _, err := userRepo.FindByUsername("admin"); err != nil {
		adminRole, _ := roleRepo.FindByCode(model.RoleAdmin)

		admin := &model.User{
			Username:   "admin",
			Email:      "admin@example.com",
			FullName:   "Administrator",
			RoleID:     &adminRole.ID,
			IsActive:   true,
			Privileges: adminRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("Admin user created: admin / admin123")
		}
	}
}
