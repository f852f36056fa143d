package controllers

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/models"
	"bizzybrain/backend/progression"
	"bizzybrain/backend/utils"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *progression.Service
}

func NewProgressController(db *gorm.DB, cfg *config.Config, engine *progression.Service) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Engine: engine}
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns the ledger, per-term progress, favorites and recent achievements
// @Tags progress
// @Produce json
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	ledger, err := pc.Engine.EnsureLedger(userID)
	if err != nil {
		return utils.Internal(c, "Failed to fetch progress", "PROGRESS_FETCH_ERROR")
	}

	var termProgress []models.TermProgress
	if err := pc.DB.Where("user_id = ?", userID).Find(&termProgress).Error; err != nil {
		return utils.Internal(c, "Failed to fetch progress", "PROGRESS_FETCH_ERROR")
	}

	var favorites []models.TermFavorite
	if err := pc.DB.Where("user_id = ?", userID).Find(&favorites).Error; err != nil {
		return utils.Internal(c, "Failed to fetch progress", "PROGRESS_FETCH_ERROR")
	}

	var achievements []models.UserAchievement
	pc.DB.Where("user_id = ?", userID).Order("earned_at DESC").Limit(5).Find(&achievements)

	categories := make(map[string]bool)
	progressEntries := make([]fiber.Map, 0, len(termProgress))
	for _, tp := range termProgress {
		var term models.Term
		if err := pc.DB.Select("id, title, category, difficulty").First(&term, tp.TermID).Error; err != nil {
			continue
		}
		categories[term.Category] = true
		progressEntries = append(progressEntries, fiber.Map{
			"term_id":       tp.TermID,
			"term_title":    term.Title,
			"category":      term.Category,
			"difficulty":    term.Difficulty,
			"status":        tp.Status,
			"time_spent":    tp.TimeSpent,
			"last_accessed": tp.LastAccessed,
		})
	}

	favoriteEntries := make([]fiber.Map, 0, len(favorites))
	for _, fav := range favorites {
		var term models.Term
		if err := pc.DB.Select("id, title, category, difficulty").First(&term, fav.TermID).Error; err != nil {
			continue
		}
		favoriteEntries = append(favoriteEntries, fiber.Map{
			"term_id":      fav.TermID,
			"term_title":   term.Title,
			"category":     term.Category,
			"difficulty":   term.Difficulty,
			"favorited_at": fav.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"progress": fiber.Map{
			"level":               ledger.Level,
			"total_xp":            ledger.TotalXP,
			"xp_to_next_level":    progression.XPToNextLevel(ledger.TotalXP),
			"terms_learned":       ledger.TermsLearned,
			"quizzes_completed":   ledger.QuizzesCompleted,
			"current_streak":      ledger.CurrentStreak,
			"longest_streak":      ledger.LongestStreak,
			"categories_explored": len(categories),
			"total_study_time":    ledger.TotalStudyTime,
		},
		"term_progress":       progressEntries,
		"favorites":           favoriteEntries,
		"recent_achievements": achievements,
	})
}

// UpdateTermProgress handles the viewed/completed/favorited/unfavorited
// actions for a term.
func (pc *ProgressController) UpdateTermProgress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	type progressInput struct {
		TermID     uint   `json:"term_id"`
		Action     string `json:"action"`
		TimeSpent  int    `json:"time_spent"`
		Difficulty string `json:"difficulty"`
	}

	var input progressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", "INVALID_BODY")
	}
	if input.Difficulty != "" && input.Difficulty != "easy" && input.Difficulty != "medium" && input.Difficulty != "hard" {
		return utils.ValidationError(c, map[string]string{"difficulty": "must be easy, medium or hard"})
	}

	var action *progression.ActionResult
	var err error

	switch input.Action {
	case "viewed":
		action, err = pc.Engine.RecordTermView(userID, input.TermID, input.TimeSpent)
	case "completed":
		action, err = pc.Engine.RecordTermCompletion(userID, input.TermID, input.TimeSpent, input.Difficulty)
	case "favorited", "unfavorited":
		return pc.toggleFavorite(c, userID, input.TermID, input.Action == "favorited")
	default:
		return utils.ValidationError(c, map[string]string{"action": "must be viewed, completed, favorited or unfavorited"})
	}

	if err != nil {
		switch {
		case errors.Is(err, progression.ErrTermNotFound):
			return utils.NotFound(c, "Term not found", "TERM_NOT_FOUND")
		case errors.Is(err, progression.ErrInvalidInput):
			return utils.BadRequest(c, err.Error(), "VALIDATION_ERROR")
		default:
			return utils.Internal(c, "Failed to update progress", "PROGRESS_UPDATE_ERROR")
		}
	}

	return utils.Success(c, fiber.StatusOK, "Progress updated successfully", fiber.Map{
		"action":       input.Action,
		"term_id":      input.TermID,
		"progress":     action.Ledger,
		"xp_earned":    action.XPAwarded,
		"achievements": action.NewAchievements,
	})
}

func (pc *ProgressController) toggleFavorite(c *fiber.Ctx, userID uuid.UUID, termID uint, favorite bool) error {
	if favorite {
		var fav models.TermFavorite
		if err := pc.DB.Where("user_id = ? AND term_id = ?", userID, termID).
			FirstOrCreate(&fav, models.TermFavorite{UserID: userID, TermID: termID}).Error; err != nil {
			return utils.Internal(c, "Failed to update progress", "PROGRESS_UPDATE_ERROR")
		}
	} else {
		if err := pc.DB.Where("user_id = ? AND term_id = ?", userID, termID).
			Delete(&models.TermFavorite{}).Error; err != nil {
			return utils.Internal(c, "Failed to update progress", "PROGRESS_UPDATE_ERROR")
		}
	}

	return utils.Success(c, fiber.StatusOK, "Progress updated successfully", fiber.Map{
		"term_id":      termID,
		"is_favorited": favorite,
	})
}

// GetStreak recomputes and persists the current streak from recent
// activity, and reports the last activity days.
func (pc *ProgressController) GetStreak(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	ledger, activityDays, err := pc.Engine.RefreshStreak(userID)
	if err != nil {
		return utils.Internal(c, "Failed to fetch streak information", "STREAK_FETCH_ERROR")
	}

	days := make([]string, 0, len(activityDays))
	for _, day := range activityDays {
		days = append(days, day.Format("2006-01-02"))
	}

	return c.JSON(fiber.Map{
		"current_streak": ledger.CurrentStreak,
		"longest_streak": ledger.LongestStreak,
		"activity_dates": days,
		"streak_target":  7,
	})
}

// GetAchievements returns the catalog annotated with earned status.
func (pc *ProgressController) GetAchievements(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	var earned []models.UserAchievement
	if err := pc.DB.Where("user_id = ?", userID).Order("earned_at DESC").Find(&earned).Error; err != nil {
		return utils.Internal(c, "Failed to fetch achievements", "ACHIEVEMENTS_FETCH_ERROR")
	}

	earnedAt := make(map[string]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementType] = ua.EarnedAt
	}

	result := make([]fiber.Map, 0, len(progression.Catalog))
	for _, def := range progression.Catalog {
		entry := fiber.Map{
			"type":        def.Type,
			"title":       def.Title,
			"description": def.Description,
			"rarity":      def.Rarity,
			"earned":      false,
		}
		if at, ok := earnedAt[def.Type]; ok {
			entry["earned"] = true
			entry["earned_at"] = at
		}
		result = append(result, entry)
	}

	return c.JSON(fiber.Map{
		"achievements":    result,
		"total_earned":    len(earned),
		"total_available": len(progression.Catalog),
	})
}
