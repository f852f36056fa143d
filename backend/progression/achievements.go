package progression

// Achievement types. The catalog is data: handlers and the evaluator both
// read it, neither hard-codes titles.
const (
	AchievementFirstTerm        = "first_term"
	AchievementQuizMaster       = "quiz_master"
	AchievementPerfectQuiz      = "perfect_quiz"
	AchievementWeekStreak       = "week_streak"
	AchievementCategoryExplorer = "category_explorer"
	AchievementSpeedLearner     = "speed_learner"
	AchievementPathCompleted    = "path_completed"
)

type AchievementDef struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rarity      string `json:"rarity"`
}

var Catalog = []AchievementDef{
	{Type: AchievementFirstTerm, Title: "First Steps", Description: "Learned your first term", Rarity: "common"},
	{Type: AchievementQuizMaster, Title: "Quiz Master", Description: "Completed 10 quizzes", Rarity: "rare"},
	{Type: AchievementPerfectQuiz, Title: "Perfect Scholar", Description: "Got 100% on a quiz", Rarity: "epic"},
	{Type: AchievementWeekStreak, Title: "Week Warrior", Description: "Maintained a 7-day learning streak", Rarity: "rare"},
	{Type: AchievementCategoryExplorer, Title: "Category Explorer", Description: "Explored every category", Rarity: "epic"},
	{Type: AchievementSpeedLearner, Title: "Speed Learner", Description: "Learned 10 terms in one day", Rarity: "legendary"},
	{Type: AchievementPathCompleted, Title: "Path Master", Description: "Completed your first learning path", Rarity: "rare"},
}

// CatalogEntry looks up a definition by type.
func CatalogEntry(achievementType string) (AchievementDef, bool) {
	for _, def := range Catalog {
		if def.Type == achievementType {
			return def, true
		}
	}
	return AchievementDef{}, false
}

// AchievementState is the snapshot of a user's progress the qualification
// rules run against. The service layer assembles it from the store; keeping
// the rules pure keeps them testable without a database.
type AchievementState struct {
	TermsLearned       int
	QuizAttempts       int
	BestQuizScore      int
	CurrentStreak      int
	CategoriesExplored int
	TotalCategories    int
	MaxTermsInOneDay   int
	AnyPathCompleted   bool
}

func (s AchievementState) qualifies(achievementType string) bool {
	switch achievementType {
	case AchievementFirstTerm:
		return s.TermsLearned >= 1
	case AchievementQuizMaster:
		return s.QuizAttempts >= 10
	case AchievementPerfectQuiz:
		return s.BestQuizScore >= 100
	case AchievementWeekStreak:
		return s.CurrentStreak >= 7
	case AchievementCategoryExplorer:
		return s.TotalCategories > 0 && s.CategoriesExplored >= s.TotalCategories
	case AchievementSpeedLearner:
		return s.MaxTermsInOneDay >= 10
	case AchievementPathCompleted:
		return s.AnyPathCompleted
	}
	return false
}

// Evaluate returns the catalog entries that newly qualify: those the state
// satisfies and the earned set does not yet contain. Re-qualifying an
// already-earned achievement yields nothing.
func Evaluate(state AchievementState, earned map[string]bool) []AchievementDef {
	var newly []AchievementDef
	for _, def := range Catalog {
		if earned[def.Type] {
			continue
		}
		if state.qualifies(def.Type) {
			newly = append(newly, def)
		}
	}
	return newly
}
