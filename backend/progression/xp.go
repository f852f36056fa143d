package progression

import (
	"fmt"
	"math"

	"bizzybrain/backend/models"
)

// XP awards per action type. Quizzes scale with length and score, the rest
// are flat.
const (
	XPPerQuestion    = 10
	XPTermCompletion = 50
	XPPathStep       = 75
	XPPerLevel       = 1000
)

// XPForQuiz converts a 0-100 score over questionCount questions into an XP
// award: a perfect score earns 10 XP per question, scaled down linearly.
func XPForQuiz(score, questionCount int) int {
	base := float64(questionCount * XPPerQuestion)
	return int(math.Round(base * float64(score) / 100))
}

// LevelForXP derives the level tier from cumulative XP.
func LevelForXP(totalXP int) int {
	return totalXP/XPPerLevel + 1
}

// XPToNextLevel is a display value, always >= 0 for a consistent ledger.
func XPToNextLevel(totalXP int) int {
	return LevelForXP(totalXP)*XPPerLevel - totalXP
}

// ApplyXP adds delta to the ledger and recomputes the level. A delta that
// would take TotalXP negative indicates a caller bug and leaves the ledger
// untouched. A zero delta still recomputes the level.
func ApplyXP(ledger *models.UserProgress, delta int) error {
	next := ledger.TotalXP + delta
	if next < 0 {
		return fmt.Errorf("xp delta %d would make total xp negative (current %d)", delta, ledger.TotalXP)
	}
	ledger.TotalXP = next
	ledger.Level = LevelForXP(next)
	return nil
}
