package controllers

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/models"
	"bizzybrain/backend/progression"
	"bizzybrain/backend/utils"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *progression.Service
}

func NewQuizController(db *gorm.DB, cfg *config.Config, engine *progression.Service) *QuizController {
	return &QuizController{DB: db, Cfg: cfg, Engine: engine}
}

// GetQuizForTerm godoc
// @Summary Quiz questions for a term
// @Description Returns the term's questions without correct answers
// @Tags quiz
// @Produce json
// @Router /quiz/term/{termId} [get]
func (qc *QuizController) GetQuizForTerm(c *fiber.Ctx) error {
	termID, err := strconv.Atoi(c.Params("termId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid term ID", "INVALID_TERM_ID")
	}

	var term models.Term
	if err := qc.DB.First(&term, termID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Term not found", "TERM_NOT_FOUND")
		}
		return utils.Internal(c, "Failed to fetch quiz", "QUIZ_FETCH_ERROR")
	}

	var questions []models.QuizQuestion
	if err := qc.DB.Where("term_id = ?", termID).Order("order_index").Find(&questions).Error; err != nil {
		return utils.Internal(c, "Failed to fetch quiz", "QUIZ_FETCH_ERROR")
	}

	// Correct answers and explanations stay server-side until submission.
	result := make([]fiber.Map, 0, len(questions))
	for _, q := range questions {
		var options []string
		if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
			return utils.Internal(c, "Failed to fetch quiz", "QUIZ_FETCH_ERROR")
		}
		result = append(result, fiber.Map{
			"id":         q.ID,
			"question":   q.Question,
			"options":    options,
			"difficulty": q.Difficulty,
		})
	}

	return c.JSON(fiber.Map{
		"term": fiber.Map{
			"id":    term.ID,
			"title": term.Title,
		},
		"questions": result,
	})
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Description Scores the answers, records the attempt, and applies XP, streak and achievement updates
// @Tags quiz
// @Accept json
// @Produce json
// @Router /quiz/submit [post]
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	type submitInput struct {
		TermID         uint                     `json:"term_id"`
		Answers        []progression.QuizAnswer `json:"answers"`
		TotalTimeSpent int                      `json:"total_time_spent"`
	}

	var input submitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", "INVALID_BODY")
	}

	quizResult, action, err := qc.Engine.SubmitQuiz(userID, input.TermID, input.Answers, input.TotalTimeSpent)
	if err != nil {
		switch {
		case errors.Is(err, progression.ErrQuizNotFound):
			return utils.NotFound(c, "Quiz questions not found", "QUIZ_NOT_FOUND")
		case errors.Is(err, progression.ErrInvalidInput):
			return utils.BadRequest(c, err.Error(), "VALIDATION_ERROR")
		default:
			return utils.Internal(c, "Failed to submit quiz", "QUIZ_SUBMISSION_ERROR")
		}
	}

	return c.JSON(fiber.Map{
		"message":      "Quiz submitted successfully",
		"results":      quizResult,
		"progress":     action.Ledger,
		"xp_earned":    action.XPAwarded,
		"achievements": action.NewAchievements,
	})
}

// GetHistory returns the user's quiz attempts, newest first.
func (qc *QuizController) GetHistory(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var attempts []models.QuizAttempt
	if err := qc.DB.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).Offset(offset).
		Find(&attempts).Error; err != nil {
		return utils.Internal(c, "Failed to fetch quiz history", "QUIZ_HISTORY_ERROR")
	}

	result := make([]fiber.Map, 0, len(attempts))
	for _, attempt := range attempts {
		var term models.Term
		qc.DB.Select("id, title, category").First(&term, attempt.TermID)
		result = append(result, fiber.Map{
			"id":              attempt.ID,
			"term_id":         attempt.TermID,
			"term_title":      term.Title,
			"term_category":   term.Category,
			"score":           attempt.Score,
			"correct_answers": attempt.CorrectAnswers,
			"total_questions": attempt.TotalQuestions,
			"time_spent":      attempt.TimeSpent,
			"xp_earned":       attempt.XPEarned,
			"completed_at":    attempt.CompletedAt,
		})
	}

	return c.JSON(fiber.Map{
		"attempts": result,
		"pagination": fiber.Map{
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GetStats aggregates the user's attempt history.
func (qc *QuizController) GetStats(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	var attempts []models.QuizAttempt
	if err := qc.DB.Where("user_id = ?", userID).Find(&attempts).Error; err != nil {
		return utils.Internal(c, "Failed to fetch quiz statistics", "QUIZ_STATS_ERROR")
	}

	totalAttempts := len(attempts)
	totalScore := 0
	totalXP := 0
	perfectScores := 0
	var activity []time.Time
	for _, attempt := range attempts {
		totalScore += attempt.Score
		totalXP += attempt.XPEarned
		if attempt.Score == 100 {
			perfectScores++
		}
		activity = append(activity, attempt.CompletedAt)
	}

	averageScore := 0
	if totalAttempts > 0 {
		averageScore = (totalScore + totalAttempts/2) / totalAttempts
	}

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"total_attempts":     totalAttempts,
			"average_score":      averageScore,
			"total_xp":           totalXP,
			"perfect_scores":     perfectScores,
			"current_streak":     progression.CurrentStreak(activity, time.Now()),
			"max_streak":         progression.LongestStreak(activity),
			"category_breakdown": qc.categoryBreakdown(attempts),
		},
	})
}

func (qc *QuizController) categoryBreakdown(attempts []models.QuizAttempt) map[string]int {
	breakdown := make(map[string]int)
	for _, attempt := range attempts {
		var term models.Term
		if err := qc.DB.Select("category").First(&term, attempt.TermID).Error; err != nil {
			continue
		}
		breakdown[term.Category]++
	}
	return breakdown
}
