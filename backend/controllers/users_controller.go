package controllers

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/models"
	"bizzybrain/backend/progression"
	"bizzybrain/backend/utils"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UsersController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *progression.Service
}

func NewUsersController(db *gorm.DB, cfg *config.Config, engine *progression.Service) *UsersController {
	return &UsersController{DB: db, Cfg: cfg, Engine: engine}
}

// GetFavorites lists the user's favorited terms, newest first.
func (uc *UsersController) GetFavorites(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	var favorites []models.TermFavorite
	if err := uc.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&favorites).Error; err != nil {
		return utils.Internal(c, "Failed to fetch favorites", "FAVORITES_FETCH_ERROR")
	}

	result := make([]fiber.Map, 0, len(favorites))
	for _, fav := range favorites {
		var term models.Term
		if err := uc.DB.First(&term, fav.TermID).Error; err != nil {
			continue
		}
		result = append(result, fiber.Map{
			"id":           fav.ID,
			"favorited_at": fav.CreatedAt,
			"term": fiber.Map{
				"id":                  term.ID,
				"title":               term.Title,
				"category":            term.Category,
				"difficulty":          term.Difficulty,
				"simple_definition":   term.SimpleDefinition,
				"rating":              term.Rating,
				"estimated_read_time": term.EstimatedReadTime,
			},
		})
	}

	return c.JSON(fiber.Map{"favorites": result})
}

// ToggleFavorite flips the favorite state for a term.
func (uc *UsersController) ToggleFavorite(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	termID, err := strconv.Atoi(c.Params("termId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid term ID", "INVALID_TERM_ID")
	}

	var term models.Term
	if err := uc.DB.Select("id").First(&term, termID).Error; err != nil {
		return utils.NotFound(c, "Term not found", "TERM_NOT_FOUND")
	}

	var existing models.TermFavorite
	err = uc.DB.Where("user_id = ? AND term_id = ?", userID, termID).First(&existing).Error
	if err == nil {
		if err := uc.DB.Delete(&existing).Error; err != nil {
			return utils.Internal(c, "Failed to toggle favorite", "FAVORITE_TOGGLE_ERROR")
		}
		return utils.Success(c, fiber.StatusOK, "Term removed from favorites", fiber.Map{
			"is_favorited": false,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Internal(c, "Failed to toggle favorite", "FAVORITE_TOGGLE_ERROR")
	}

	fav := models.TermFavorite{UserID: userID, TermID: uint(termID)}
	if err := uc.DB.Create(&fav).Error; err != nil {
		return utils.Internal(c, "Failed to toggle favorite", "FAVORITE_TOGGLE_ERROR")
	}
	return utils.Success(c, fiber.StatusOK, "Term added to favorites", fiber.Map{
		"is_favorited": true,
	})
}

// GetDashboard bundles the ledger with recent activity for the home view.
func (uc *UsersController) GetDashboard(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	ledger, err := uc.Engine.EnsureLedger(userID)
	if err != nil {
		return utils.Internal(c, "Failed to fetch dashboard data", "DASHBOARD_FETCH_ERROR")
	}

	var recentTerms []models.TermProgress
	uc.DB.Where("user_id = ?", userID).Order("last_accessed DESC").Limit(5).Find(&recentTerms)

	var recentQuizzes []models.QuizAttempt
	uc.DB.Where("user_id = ?", userID).Order("completed_at DESC").Limit(5).Find(&recentQuizzes)

	var activePaths []models.UserLearningPathProgress
	uc.DB.Where("user_id = ? AND is_completed = ?", userID, false).
		Order("updated_at DESC").Limit(3).Find(&activePaths)

	var achievementsCount int64
	uc.DB.Model(&models.UserAchievement{}).Where("user_id = ?", userID).Count(&achievementsCount)

	return c.JSON(fiber.Map{
		"progress": ledger,
		"recent_activity": fiber.Map{
			"terms":   recentTerms,
			"quizzes": recentQuizzes,
		},
		"active_learning_paths": activePaths,
		"achievements_count":    achievementsCount,
	})
}

// UpdatePreferences stores the user's study preferences.
func (uc *UsersController) UpdatePreferences(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	type preferencesInput struct {
		FavoriteSubjects     string `json:"favorite_subjects"`
		LearningGoals        string `json:"learning_goals"`
		StudyReminders       *bool  `json:"study_reminders"`
		DifficultyPreference string `json:"difficulty_preference"`
		ParentNotifications  *bool  `json:"parent_notifications"`
	}

	var input preferencesInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", "INVALID_BODY")
	}

	updates := map[string]interface{}{}
	if input.FavoriteSubjects != "" {
		updates["favorite_subjects"] = input.FavoriteSubjects
	}
	if input.LearningGoals != "" {
		updates["learning_goals"] = input.LearningGoals
	}
	if input.StudyReminders != nil {
		updates["study_reminders"] = *input.StudyReminders
	}
	if input.DifficultyPreference != "" {
		updates["difficulty_preference"] = input.DifficultyPreference
	}
	if input.ParentNotifications != nil {
		updates["parent_notifications"] = *input.ParentNotifications
	}

	if len(updates) > 0 {
		if err := uc.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return utils.Internal(c, "Failed to update preferences", "PREFERENCES_UPDATE_ERROR")
		}
	}

	var user models.User
	uc.DB.First(&user, "id = ?", userID)
	return utils.Success(c, fiber.StatusOK, "Preferences updated successfully", fiber.Map{
		"preferences": fiber.Map{
			"favorite_subjects":     user.FavoriteSubjects,
			"learning_goals":        user.LearningGoals,
			"study_reminders":       user.StudyReminders,
			"difficulty_preference": user.DifficultyPreference,
			"parent_notifications":  user.ParentNotifications,
		},
	})
}
