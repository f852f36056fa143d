package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func typesOf(defs []AchievementDef) []string {
	var types []string
	for _, def := range defs {
		types = append(types, def.Type)
	}
	return types
}

func TestEvaluateFreshUser(t *testing.T) {
	newly := Evaluate(AchievementState{}, map[string]bool{})
	assert.Empty(t, newly)
}

func TestEvaluateFirstTerm(t *testing.T) {
	state := AchievementState{TermsLearned: 1}
	assert.Equal(t, []string{AchievementFirstTerm}, typesOf(Evaluate(state, map[string]bool{})))
}

func TestEvaluatePerfectQuiz(t *testing.T) {
	state := AchievementState{BestQuizScore: 100, QuizAttempts: 1}
	assert.Contains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementPerfectQuiz)

	state.BestQuizScore = 99
	assert.NotContains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementPerfectQuiz)
}

func TestEvaluateQuizMasterThreshold(t *testing.T) {
	state := AchievementState{QuizAttempts: 9}
	assert.NotContains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementQuizMaster)

	state.QuizAttempts = 10
	assert.Contains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementQuizMaster)
}

func TestEvaluateWeekStreak(t *testing.T) {
	state := AchievementState{CurrentStreak: 6}
	assert.NotContains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementWeekStreak)

	state.CurrentStreak = 7
	assert.Contains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementWeekStreak)
}

func TestEvaluateCategoryExplorer(t *testing.T) {
	state := AchievementState{CategoriesExplored: 3, TotalCategories: 4}
	assert.NotContains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementCategoryExplorer)

	state.CategoriesExplored = 4
	assert.Contains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementCategoryExplorer)
}

func TestEvaluateCategoryExplorerNoCategories(t *testing.T) {
	// An empty catalog of categories must not auto-award the badge.
	state := AchievementState{CategoriesExplored: 0, TotalCategories: 0}
	assert.NotContains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementCategoryExplorer)
}

func TestEvaluateSpeedLearner(t *testing.T) {
	state := AchievementState{MaxTermsInOneDay: 10, TermsLearned: 10}
	assert.Contains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementSpeedLearner)
}

func TestEvaluatePathCompleted(t *testing.T) {
	state := AchievementState{AnyPathCompleted: true}
	assert.Contains(t, typesOf(Evaluate(state, map[string]bool{})), AchievementPathCompleted)
}

func TestEvaluateIdempotent(t *testing.T) {
	state := AchievementState{BestQuizScore: 100, QuizAttempts: 10, TermsLearned: 3}

	earned := map[string]bool{}
	first := Evaluate(state, earned)
	assert.ElementsMatch(t,
		[]string{AchievementFirstTerm, AchievementQuizMaster, AchievementPerfectQuiz},
		typesOf(first))

	for _, def := range first {
		earned[def.Type] = true
	}
	assert.Empty(t, Evaluate(state, earned))
}

func TestEvaluateNeverReturnsEarned(t *testing.T) {
	state := AchievementState{TermsLearned: 5, CurrentStreak: 9}
	earned := map[string]bool{AchievementFirstTerm: true}
	assert.Equal(t, []string{AchievementWeekStreak}, typesOf(Evaluate(state, earned)))
}

func TestCatalogEntry(t *testing.T) {
	def, ok := CatalogEntry(AchievementQuizMaster)
	assert.True(t, ok)
	assert.Equal(t, "Quiz Master", def.Title)

	_, ok = CatalogEntry("no_such_badge")
	assert.False(t, ok)
}
