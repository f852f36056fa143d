package main

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/middleware"
	"bizzybrain/backend/progression"
	"bizzybrain/backend/routes"
	"bizzybrain/backend/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// The progression engine owns every ledger/streak/achievement update.
	engine := progression.NewService(db, logger)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.ClientURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		dbOK := err == nil && sqlDB.Ping() == nil
		status := fiber.StatusOK
		if !dbOK {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"success":   dbOK,
			"message":   "BizzyBrain API is running",
			"timestamp": time.Now().UTC(),
			"database":  dbOK,
		})
	})

	// Setup routes
	routes.SetupRoutes(app, db, cfg, engine)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
