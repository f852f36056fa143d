package routes

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/controllers"
	"bizzybrain/backend/middleware"
	"bizzybrain/backend/progression"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, engine *progression.Service) {
	authMiddleware := middleware.AuthMiddleware(cfg)
	optionalAuth := middleware.OptionalAuth(cfg)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, engine)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Get("/api/auth/profile", authMiddleware, authController.GetProfile)
	app.Put("/api/auth/profile", authMiddleware, authController.UpdateProfile)

	// Terms routes
	termsController := controllers.NewTermsController(db, cfg)
	terms := app.Group("/api/terms", optionalAuth)
	terms.Get("/", termsController.GetTerms)
	terms.Get("/categories/stats", termsController.GetCategoryStats)
	terms.Get("/search/advanced", termsController.AdvancedSearch)
	terms.Get("/:id", termsController.GetTerm)

	// Quiz routes
	quizController := controllers.NewQuizController(db, cfg, engine)
	quiz := app.Group("/api/quiz", authMiddleware)
	quiz.Get("/term/:termId", quizController.GetQuizForTerm)
	quiz.Post("/submit", quizController.SubmitQuiz)
	quiz.Get("/history", quizController.GetHistory)
	quiz.Get("/stats", quizController.GetStats)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, engine)
	progress := app.Group("/api/progress", authMiddleware)
	progress.Get("/", progressController.GetProgress)
	progress.Post("/term", progressController.UpdateTermProgress)
	progress.Get("/streak", progressController.GetStreak)
	progress.Get("/achievements", progressController.GetAchievements)

	// Learning path routes
	pathsController := controllers.NewLearningPathsController(db, cfg, engine)
	paths := app.Group("/api/learning-paths")
	paths.Get("/", optionalAuth, pathsController.GetPaths)
	paths.Get("/user/progress", authMiddleware, pathsController.GetUserProgress)
	paths.Get("/:id", optionalAuth, pathsController.GetPath)
	paths.Post("/:id/start", authMiddleware, pathsController.StartPath)
	paths.Post("/:pathId/steps/:stepId/complete", authMiddleware, pathsController.CompleteStep)

	// User routes
	usersController := controllers.NewUsersController(db, cfg, engine)
	users := app.Group("/api/users", authMiddleware)
	users.Get("/favorites", usersController.GetFavorites)
	users.Post("/favorites/:termId", usersController.ToggleFavorite)
	users.Get("/dashboard", usersController.GetDashboard)
	users.Put("/preferences", usersController.UpdatePreferences)
}
