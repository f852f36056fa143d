package progression

import (
	"testing"

	"bizzybrain/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestXPForQuiz(t *testing.T) {
	assert.Equal(t, 0, XPForQuiz(0, 5))
	assert.Equal(t, 50, XPForQuiz(100, 5))
	assert.Equal(t, 100, XPForQuiz(100, 10))
	assert.Equal(t, 40, XPForQuiz(80, 5))
	assert.Equal(t, 17, XPForQuiz(33, 5)) // round(16.5)
}

func TestXPForQuizMonotonic(t *testing.T) {
	prev := -1
	for score := 0; score <= 100; score++ {
		xp := XPForQuiz(score, 7)
		assert.GreaterOrEqual(t, xp, prev, "score %d", score)
		prev = xp
	}
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(999))
	assert.Equal(t, 2, LevelForXP(1000))
	assert.Equal(t, 3, LevelForXP(2500))
}

func TestXPToNextLevel(t *testing.T) {
	assert.Equal(t, 1000, XPToNextLevel(0))
	assert.Equal(t, 1, XPToNextLevel(999))
	assert.Equal(t, 1000, XPToNextLevel(1000))

	for xp := 0; xp <= 5000; xp += 37 {
		assert.Positive(t, XPToNextLevel(xp), "xp %d", xp)
	}
}

func TestApplyXP(t *testing.T) {
	ledger := models.UserProgress{TotalXP: 950, Level: 1}

	err := ApplyXP(&ledger, 40)
	assert.NoError(t, err)
	assert.Equal(t, 990, ledger.TotalXP)
	assert.Equal(t, 1, ledger.Level)

	err = ApplyXP(&ledger, 40)
	assert.NoError(t, err)
	assert.Equal(t, 1030, ledger.TotalXP)
	assert.Equal(t, 2, ledger.Level)
}

func TestApplyXPAdditive(t *testing.T) {
	sequential := models.UserProgress{}
	assert.NoError(t, ApplyXP(&sequential, 730))
	assert.NoError(t, ApplyXP(&sequential, 420))

	once := models.UserProgress{}
	assert.NoError(t, ApplyXP(&once, 1150))

	assert.Equal(t, once.TotalXP, sequential.TotalXP)
	assert.Equal(t, once.Level, sequential.Level)
}

func TestApplyXPZeroDeltaRecomputesLevel(t *testing.T) {
	// A stale stored level gets corrected even by a no-op award.
	ledger := models.UserProgress{TotalXP: 2100, Level: 1}
	assert.NoError(t, ApplyXP(&ledger, 0))
	assert.Equal(t, 2100, ledger.TotalXP)
	assert.Equal(t, 3, ledger.Level)
}

func TestApplyXPRejectsNegativeTotal(t *testing.T) {
	ledger := models.UserProgress{TotalXP: 100, Level: 1}
	err := ApplyXP(&ledger, -200)
	assert.Error(t, err)
	assert.Equal(t, 100, ledger.TotalXP)
	assert.Equal(t, 1, ledger.Level)
}
