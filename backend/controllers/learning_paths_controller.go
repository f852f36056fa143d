package controllers

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/models"
	"bizzybrain/backend/progression"
	"bizzybrain/backend/utils"
	"encoding/json"
	"errors"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LearningPathsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *progression.Service
}

func NewLearningPathsController(db *gorm.DB, cfg *config.Config, engine *progression.Service) *LearningPathsController {
	return &LearningPathsController{DB: db, Cfg: cfg, Engine: engine}
}

// GetPaths godoc
// @Summary List learning paths
// @Description Returns all paths with per-user step status when authenticated
// @Tags learning-paths
// @Produce json
// @Router /learning-paths [get]
func (lc *LearningPathsController) GetPaths(c *fiber.Ctx) error {
	var paths []models.LearningPath
	if err := lc.DB.Preload("Steps").Order("order_index").Find(&paths).Error; err != nil {
		return utils.Internal(c, "Failed to fetch learning paths", "LEARNING_PATHS_FETCH_ERROR")
	}

	progressByPath := make(map[uint]models.UserLearningPathProgress)
	if userID, ok := currentUserID(c); ok {
		var rows []models.UserLearningPathProgress
		lc.DB.Where("user_id = ?", userID).Find(&rows)
		for _, row := range rows {
			progressByPath[row.LearningPathID] = row
		}
	}

	result := make([]fiber.Map, 0, len(paths))
	for _, path := range paths {
		progress, started := progressByPath[path.ID]
		var userProgress *models.UserLearningPathProgress
		if started {
			userProgress = &progress
		}
		result = append(result, pathSummary(path, userProgress, false))
	}

	return c.JSON(fiber.Map{"learning_paths": result})
}

func (lc *LearningPathsController) GetPath(c *fiber.Ctx) error {
	pathID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid learning path ID", "INVALID_PATH_ID")
	}

	var path models.LearningPath
	if err := lc.DB.Preload("Steps").First(&path, pathID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Learning path not found", "LEARNING_PATH_NOT_FOUND")
		}
		return utils.Internal(c, "Failed to fetch learning path", "LEARNING_PATH_FETCH_ERROR")
	}

	var userProgress *models.UserLearningPathProgress
	if userID, ok := currentUserID(c); ok {
		var progress models.UserLearningPathProgress
		if err := lc.DB.Where("user_id = ? AND learning_path_id = ?", userID, path.ID).
			First(&progress).Error; err == nil {
			userProgress = &progress
		}
	}

	return c.JSON(fiber.Map{"learning_path": pathSummary(path, userProgress, true)})
}

// StartPath creates the progress row, or reports the existing one.
func (lc *LearningPathsController) StartPath(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	pathID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid learning path ID", "INVALID_PATH_ID")
	}

	progress, created, err := lc.Engine.StartPath(userID, uint(pathID))
	if err != nil {
		if errors.Is(err, progression.ErrPathNotFound) {
			return utils.NotFound(c, "Learning path not found", "LEARNING_PATH_NOT_FOUND")
		}
		return utils.Internal(c, "Failed to start learning path", "LEARNING_PATH_START_ERROR")
	}

	message := "Learning path already started"
	if created {
		message = "Learning path started successfully"
	}
	return utils.Success(c, fiber.StatusOK, message, fiber.Map{
		"progress": progress,
	})
}

// CompleteStep godoc
// @Summary Complete a learning path step
// @Description Marks the step done, awards step XP and checks path completion
// @Tags learning-paths
// @Accept json
// @Produce json
// @Router /learning-paths/{pathId}/steps/{stepId}/complete [post]
func (lc *LearningPathsController) CompleteStep(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	pathID, err := strconv.Atoi(c.Params("pathId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid learning path ID", "INVALID_PATH_ID")
	}
	stepID, err := strconv.Atoi(c.Params("stepId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid step ID", "INVALID_STEP_ID")
	}

	type stepInput struct {
		TimeSpent  int    `json:"time_spent"`
		Difficulty string `json:"difficulty"`
	}
	var input stepInput
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return utils.BadRequest(c, "Cannot parse JSON", "INVALID_BODY")
	}

	progress, action, err := lc.Engine.CompleteStep(userID, uint(pathID), uint(stepID), input.TimeSpent, input.Difficulty)
	if err != nil {
		switch {
		case errors.Is(err, progression.ErrStepNotFound):
			return utils.NotFound(c, "Learning path step not found", "STEP_NOT_FOUND")
		case errors.Is(err, progression.ErrPathNotStarted):
			return utils.NotFound(c, "Learning path progress not found", "PROGRESS_NOT_FOUND")
		case errors.Is(err, progression.ErrInvalidInput):
			return utils.BadRequest(c, err.Error(), "VALIDATION_ERROR")
		default:
			return utils.Internal(c, "Failed to complete step", "STEP_COMPLETION_ERROR")
		}
	}

	return utils.Success(c, fiber.StatusOK, "Step completed successfully", fiber.Map{
		"progress":          progress,
		"ledger":            action.Ledger,
		"xp_awarded":        action.XPAwarded,
		"achievements":      action.NewAchievements,
		"is_path_completed": progress.IsCompleted,
	})
}

// GetUserProgress lists the user's started paths, newest first.
func (lc *LearningPathsController) GetUserProgress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	var rows []models.UserLearningPathProgress
	if err := lc.DB.Where("user_id = ?", userID).Order("started_at DESC").Find(&rows).Error; err != nil {
		return utils.Internal(c, "Failed to fetch user progress", "USER_PROGRESS_FETCH_ERROR")
	}

	result := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		var path models.LearningPath
		if err := lc.DB.Select("id, title, category, icon, color").First(&path, row.LearningPathID).Error; err != nil {
			continue
		}
		result = append(result, fiber.Map{
			"path_id":         row.LearningPathID,
			"path_title":      path.Title,
			"path_category":   path.Category,
			"path_icon":       path.Icon,
			"path_color":      path.Color,
			"current_step":    row.CurrentStep,
			"completed_steps": countCompletedSteps(row.CompletedSteps),
			"is_completed":    row.IsCompleted,
			"started_at":      row.StartedAt,
			"completed_at":    row.CompletedAt,
			"last_accessed":   row.UpdatedAt,
		})
	}

	return c.JSON(fiber.Map{"user_progress": result})
}

func pathSummary(path models.LearningPath, progress *models.UserLearningPathProgress, includeContent bool) fiber.Map {
	steps := append([]models.LearningPathStep(nil), path.Steps...)
	sort.Slice(steps, func(i, j int) bool { return steps[i].OrderIndex < steps[j].OrderIndex })

	completed := map[uint]bool{}
	currentStep := 1
	isCompleted := false
	if progress != nil {
		var ids []uint
		json.Unmarshal([]byte(progress.CompletedSteps), &ids)
		for _, id := range ids {
			completed[id] = true
		}
		currentStep = progress.CurrentStep
		isCompleted = progress.IsCompleted
	}

	stepEntries := make([]fiber.Map, 0, len(steps))
	for _, step := range steps {
		var termIDs []uint
		json.Unmarshal([]byte(step.TermIDs), &termIDs)
		entry := fiber.Map{
			"id":             step.ID,
			"title":          step.Title,
			"description":    step.Description,
			"order_index":    step.OrderIndex,
			"estimated_time": step.EstimatedTime,
			"difficulty":     step.Difficulty,
			"term_ids":       termIDs,
			"status":         stepStatus(step, progress, completed),
		}
		if includeContent {
			entry["content"] = step.Content
		}
		stepEntries = append(stepEntries, entry)
	}

	return fiber.Map{
		"id":              path.ID,
		"title":           path.Title,
		"description":     path.Description,
		"category":        path.Category,
		"difficulty":      path.Difficulty,
		"estimated_time":  path.EstimatedTime,
		"icon":            path.Icon,
		"color":           path.Color,
		"total_steps":     len(steps),
		"completed_steps": len(completed),
		"current_step":    currentStep,
		"is_completed":    isCompleted,
		"steps":           stepEntries,
	}
}

func stepStatus(step models.LearningPathStep, progress *models.UserLearningPathProgress, completed map[uint]bool) string {
	if progress == nil {
		return "locked"
	}
	if completed[step.ID] {
		return "completed"
	}
	if step.OrderIndex == progress.CurrentStep {
		return "current"
	}
	if step.OrderIndex < progress.CurrentStep {
		return "completed"
	}
	return "locked"
}

func countCompletedSteps(encoded string) int {
	var ids []uint
	json.Unmarshal([]byte(encoded), &ids)
	return len(ids)
}
