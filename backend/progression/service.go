package progression

import (
	"bizzybrain/backend/models"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTermNotFound   = errors.New("term not found")
	ErrQuizNotFound   = errors.New("quiz questions not found")
	ErrPathNotFound   = errors.New("learning path not found")
	ErrStepNotFound   = errors.New("learning path step not found")
	ErrPathNotStarted = errors.New("learning path progress not found")
	ErrInvalidInput   = errors.New("invalid input")
)

// ledger updates are retried this many times before the conflict surfaces
// to the caller.
const maxLedgerRetries = 3

// Service is the single code path that turns completed user actions into
// ledger updates, streak recomputes and achievement awards. All handlers
// that mutate progress go through it.
type Service struct {
	db     *gorm.DB
	logger *log.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *log.Logger) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}

// ActionResult is what every progress-mutating action reports back: the
// refreshed ledger, the XP the action earned, and any badges it unlocked.
type ActionResult struct {
	Ledger          models.UserProgress `json:"ledger"`
	XPAwarded       int                 `json:"xp_awarded"`
	NewAchievements []AchievementDef    `json:"new_achievements"`
}

type QuizAnswer struct {
	QuestionID     uint `json:"question_id"`
	SelectedAnswer int  `json:"selected_answer"`
	TimeSpent      int  `json:"time_spent"`
}

type QuestionResult struct {
	QuestionID     uint   `json:"question_id"`
	SelectedAnswer int    `json:"selected_answer"`
	CorrectAnswer  int    `json:"correct_answer"`
	IsCorrect      bool   `json:"is_correct"`
	Explanation    string `json:"explanation,omitempty"`
	TimeSpent      int    `json:"time_spent"`
}

type QuizResult struct {
	Score           int              `json:"score"`
	CorrectAnswers  int              `json:"correct_answers"`
	TotalQuestions  int              `json:"total_questions"`
	XPEarned        int              `json:"xp_earned"`
	TimeSpent       int              `json:"time_spent"`
	QuestionResults []QuestionResult `json:"question_results"`
}

// RecordTermView upserts the user's progress row for a term as "viewed" and
// accrues study time. Viewing never downgrades a completed term.
func (s *Service) RecordTermView(userID uuid.UUID, termID uint, timeSpent int) (*ActionResult, error) {
	if timeSpent < 0 {
		return nil, fmt.Errorf("%w: time spent must not be negative", ErrInvalidInput)
	}
	if err := s.termExists(termID); err != nil {
		return nil, err
	}

	result, err := s.updateLedger(userID, func(tx *gorm.DB, ledger *models.UserProgress) (int, error) {
		if err := s.upsertTermProgress(tx, userID, termID, models.TermStatusViewed, timeSpent, ""); err != nil {
			return 0, err
		}
		ledger.TotalStudyTime += timeSpent
		return 0, nil
	})
	if err != nil {
		return nil, err
	}

	result.NewAchievements = s.awardAchievements(userID, result.Ledger)
	return result, nil
}

// RecordTermCompletion marks a term completed and awards the flat
// completion XP.
func (s *Service) RecordTermCompletion(userID uuid.UUID, termID uint, timeSpent int, difficulty string) (*ActionResult, error) {
	if timeSpent < 0 {
		return nil, fmt.Errorf("%w: time spent must not be negative", ErrInvalidInput)
	}
	if err := s.termExists(termID); err != nil {
		return nil, err
	}

	result, err := s.updateLedger(userID, func(tx *gorm.DB, ledger *models.UserProgress) (int, error) {
		if err := s.upsertTermProgress(tx, userID, termID, models.TermStatusCompleted, timeSpent, difficulty); err != nil {
			return 0, err
		}

		var completed int64
		if err := tx.Model(&models.TermProgress{}).
			Where("user_id = ? AND status = ?", userID, models.TermStatusCompleted).
			Count(&completed).Error; err != nil {
			return 0, err
		}
		ledger.TermsLearned = int(completed)
		ledger.TotalStudyTime += timeSpent
		return XPTermCompletion, nil
	})
	if err != nil {
		return nil, err
	}

	result.NewAchievements = s.awardAchievements(userID, result.Ledger)
	return result, nil
}

// SubmitQuiz scores the submitted answers against the term's questions,
// records an immutable attempt, and applies the outcome to the ledger.
func (s *Service) SubmitQuiz(userID uuid.UUID, termID uint, answers []QuizAnswer, totalTimeSpent int) (*QuizResult, *ActionResult, error) {
	if totalTimeSpent < 0 {
		return nil, nil, fmt.Errorf("%w: time spent must not be negative", ErrInvalidInput)
	}
	if len(answers) == 0 {
		return nil, nil, fmt.Errorf("%w: no answers submitted", ErrInvalidInput)
	}

	var questions []models.QuizQuestion
	if err := s.db.Where("term_id = ?", termID).Order("order_index").Find(&questions).Error; err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, ErrQuizNotFound
	}

	quizResult := scoreQuiz(questions, answers, totalTimeSpent)

	result, err := s.updateLedger(userID, func(tx *gorm.DB, ledger *models.UserProgress) (int, error) {
		snapshot, err := json.Marshal(quizResult.QuestionResults)
		if err != nil {
			return 0, err
		}
		attempt := models.QuizAttempt{
			UserID:         userID,
			TermID:         termID,
			Score:          quizResult.Score,
			CorrectAnswers: quizResult.CorrectAnswers,
			TotalQuestions: quizResult.TotalQuestions,
			TimeSpent:      totalTimeSpent,
			XPEarned:       quizResult.XPEarned,
			Answers:        string(snapshot),
			CompletedAt:    s.now(),
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return 0, err
		}

		if err := s.upsertTermProgress(tx, userID, termID, models.TermStatusCompleted, 0, ""); err != nil {
			return 0, err
		}

		ledger.QuizzesCompleted++
		var completed int64
		if err := tx.Model(&models.TermProgress{}).
			Where("user_id = ? AND status = ?", userID, models.TermStatusCompleted).
			Count(&completed).Error; err != nil {
			return 0, err
		}
		ledger.TermsLearned = int(completed)
		return quizResult.XPEarned, nil
	})
	if err != nil {
		return nil, nil, err
	}

	result.NewAchievements = s.awardAchievements(userID, result.Ledger)
	return &quizResult, result, nil
}

// StartPath creates a progress row for a path, or returns the existing one.
func (s *Service) StartPath(userID uuid.UUID, pathID uint) (*models.UserLearningPathProgress, bool, error) {
	var path models.LearningPath
	if err := s.db.First(&path, pathID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrPathNotFound
		}
		return nil, false, err
	}

	var progress models.UserLearningPathProgress
	err := s.db.Where("user_id = ? AND learning_path_id = ?", userID, pathID).First(&progress).Error
	if err == nil {
		return &progress, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	progress = models.UserLearningPathProgress{
		UserID:         userID,
		LearningPathID: pathID,
		CurrentStep:    1,
		CompletedSteps: "[]",
		StartedAt:      s.now(),
	}
	if err := s.db.Create(&progress).Error; err != nil {
		return nil, false, err
	}
	return &progress, true, nil
}

// CompleteStep marks one step of a started path completed, awards the step
// XP, and flips the path to completed once every step is done.
func (s *Service) CompleteStep(userID uuid.UUID, pathID, stepID uint, timeSpent int, difficulty string) (*models.UserLearningPathProgress, *ActionResult, error) {
	if timeSpent < 0 {
		return nil, nil, fmt.Errorf("%w: time spent must not be negative", ErrInvalidInput)
	}

	var step models.LearningPathStep
	if err := s.db.Where("id = ? AND learning_path_id = ?", stepID, pathID).First(&step).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrStepNotFound
		}
		return nil, nil, err
	}

	var totalSteps int64
	if err := s.db.Model(&models.LearningPathStep{}).Where("learning_path_id = ?", pathID).Count(&totalSteps).Error; err != nil {
		return nil, nil, err
	}

	var pathProgress models.UserLearningPathProgress
	result, err := s.updateLedger(userID, func(tx *gorm.DB, ledger *models.UserProgress) (int, error) {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND learning_path_id = ?", userID, pathID).
			First(&pathProgress).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrPathNotStarted
			}
			return 0, err
		}

		if err := advancePath(&pathProgress, stepID, step.OrderIndex, int(totalSteps), s.now()); err != nil {
			return 0, err
		}
		if err := tx.Save(&pathProgress).Error; err != nil {
			return 0, err
		}

		completion := models.LearningPathStepCompletion{
			UserID:           userID,
			LearningPathID:   pathID,
			StepID:           stepID,
			TimeSpent:        timeSpent,
			DifficultyRating: difficulty,
			CompletedAt:      s.now(),
		}
		if err := tx.Create(&completion).Error; err != nil {
			return 0, err
		}

		ledger.TotalStudyTime += timeSpent
		return XPPathStep, nil
	})
	if err != nil {
		return nil, nil, err
	}

	result.NewAchievements = s.awardAchievements(userID, result.Ledger)
	return &pathProgress, result, nil
}

// RefreshStreak recomputes the current streak from the user's activity in
// the lookback window and persists it. Returns the ledger and the distinct
// activity days, newest first.
func (s *Service) RefreshStreak(userID uuid.UUID) (*models.UserProgress, []time.Time, error) {
	activity, err := s.recentActivity(userID)
	if err != nil {
		return nil, nil, err
	}

	var ledger models.UserProgress
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ledger, err = s.lockLedger(tx, userID)
		if err != nil {
			return err
		}
		ledger.CurrentStreak = CurrentStreak(activity, s.now())
		if ledger.CurrentStreak > ledger.LongestStreak {
			ledger.LongestStreak = ledger.CurrentStreak
		}
		return tx.Save(&ledger).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return &ledger, ActivityDays(activity, 7), nil
}

// EnsureLedger creates the zeroed ledger for a new user. Registration calls
// this so every user has a row from day one.
func (s *Service) EnsureLedger(userID uuid.UUID) (*models.UserProgress, error) {
	var ledger models.UserProgress
	err := s.db.Where("user_id = ?", userID).First(&ledger).Error
	if err == nil {
		return &ledger, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ledger = models.UserProgress{UserID: userID, Level: 1}
	if err := s.db.Create(&ledger).Error; err != nil {
		return nil, err
	}
	return &ledger, nil
}

// updateLedger runs mutate inside one transaction holding a row lock on the
// user's ledger, so concurrent actions for the same user serialize instead
// of losing increments. mutate returns the XP delta to apply; counters and
// streak are updated before the row is written back.
func (s *Service) updateLedger(userID uuid.UUID, mutate func(tx *gorm.DB, ledger *models.UserProgress) (int, error)) (*ActionResult, error) {
	var result *ActionResult
	var lastErr error

	for attempt := 0; attempt < maxLedgerRetries; attempt++ {
		result, lastErr = s.tryUpdateLedger(userID, mutate)
		if lastErr == nil || !isTransient(lastErr) {
			return result, lastErr
		}
		s.logger.Printf("ledger update conflict for user %s (attempt %d): %v", userID, attempt+1, lastErr)
	}
	return nil, fmt.Errorf("ledger update failed after %d attempts: %w", maxLedgerRetries, lastErr)
}

func (s *Service) tryUpdateLedger(userID uuid.UUID, mutate func(tx *gorm.DB, ledger *models.UserProgress) (int, error)) (*ActionResult, error) {
	var result ActionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ledger, err := s.lockLedger(tx, userID)
		if err != nil {
			return err
		}

		delta, err := mutate(tx, &ledger)
		if err != nil {
			return err
		}
		if err := ApplyXP(&ledger, delta); err != nil {
			return err
		}

		activity, err := s.recentActivityTx(tx, userID)
		if err != nil {
			return err
		}
		ledger.CurrentStreak = CurrentStreak(activity, s.now())
		if ledger.CurrentStreak > ledger.LongestStreak {
			ledger.LongestStreak = ledger.CurrentStreak
		}

		if err := tx.Save(&ledger).Error; err != nil {
			return err
		}
		result = ActionResult{Ledger: ledger, XPAwarded: delta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) lockLedger(tx *gorm.DB, userID uuid.UUID) (models.UserProgress, error) {
	var ledger models.UserProgress
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ledger = models.UserProgress{UserID: userID, Level: 1}
		err = tx.Create(&ledger).Error
	}
	return ledger, err
}

func (s *Service) termExists(termID uint) error {
	var term models.Term
	if err := s.db.Select("id").First(&term, termID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTermNotFound
		}
		return err
	}
	return nil
}

// upsertTermProgress keeps one row per user+term. Status only moves
// forward: a later view never downgrades a completed term.
func (s *Service) upsertTermProgress(tx *gorm.DB, userID uuid.UUID, termID uint, status string, timeSpent int, difficulty string) error {
	var progress models.TermProgress
	err := tx.Where("user_id = ? AND term_id = ?", userID, termID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.TermProgress{
			UserID:           userID,
			TermID:           termID,
			Status:           status,
			TimeSpent:        timeSpent,
			DifficultyRating: difficulty,
			LastAccessed:     s.now(),
		}
		return tx.Create(&progress).Error
	}
	if err != nil {
		return err
	}

	if status == models.TermStatusCompleted {
		progress.Status = models.TermStatusCompleted
	}
	progress.TimeSpent += timeSpent
	if difficulty != "" {
		progress.DifficultyRating = difficulty
	}
	progress.LastAccessed = s.now()
	return tx.Save(&progress).Error
}

func (s *Service) recentActivity(userID uuid.UUID) ([]time.Time, error) {
	return s.recentActivityTx(s.db, userID)
}

// recentActivityTx collects activity timestamps (term accesses and quiz
// attempts) inside the lookback window.
func (s *Service) recentActivityTx(tx *gorm.DB, userID uuid.UUID) ([]time.Time, error) {
	cutoff := s.now().AddDate(0, 0, -StreakLookbackDays)

	var termTimes []time.Time
	if err := tx.Model(&models.TermProgress{}).
		Where("user_id = ? AND last_accessed >= ?", userID, cutoff).
		Pluck("last_accessed", &termTimes).Error; err != nil {
		return nil, err
	}

	var quizTimes []time.Time
	if err := tx.Model(&models.QuizAttempt{}).
		Where("user_id = ? AND completed_at >= ?", userID, cutoff).
		Pluck("completed_at", &quizTimes).Error; err != nil {
		return nil, err
	}

	return append(termTimes, quizTimes...), nil
}

// awardAchievements evaluates the catalog against the user's refreshed
// state and inserts what newly qualifies. Best-effort: failures are logged
// and never fail the action that triggered evaluation. A duplicate-key
// rejection from the unique index means a concurrent action got there
// first and is treated as already awarded.
func (s *Service) awardAchievements(userID uuid.UUID, ledger models.UserProgress) []AchievementDef {
	state, earned, err := s.achievementState(userID, ledger)
	if err != nil {
		s.logger.Printf("achievement evaluation failed for user %s: %v", userID, err)
		return nil
	}

	var awarded []AchievementDef
	for _, def := range Evaluate(state, earned) {
		record := models.UserAchievement{
			UserID:          userID,
			AchievementType: def.Type,
			Title:           def.Title,
			Description:     def.Description,
			EarnedAt:        s.now(),
		}
		if err := s.db.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err) {
				continue
			}
			s.logger.Printf("achievement award failed for user %s (%s): %v", userID, def.Type, err)
			continue
		}
		awarded = append(awarded, def)
	}
	return awarded
}

func (s *Service) achievementState(userID uuid.UUID, ledger models.UserProgress) (AchievementState, map[string]bool, error) {
	state := AchievementState{
		TermsLearned:  ledger.TermsLearned,
		CurrentStreak: ledger.CurrentStreak,
	}

	var attempts int64
	if err := s.db.Model(&models.QuizAttempt{}).Where("user_id = ?", userID).Count(&attempts).Error; err != nil {
		return state, nil, err
	}
	state.QuizAttempts = int(attempts)

	var bestScore int
	if err := s.db.Model(&models.QuizAttempt{}).Where("user_id = ?", userID).
		Select("COALESCE(MAX(score), 0)").Scan(&bestScore).Error; err != nil {
		return state, nil, err
	}
	state.BestQuizScore = bestScore

	var totalCategories int64
	if err := s.db.Model(&models.Term{}).Distinct("category").Count(&totalCategories).Error; err != nil {
		return state, nil, err
	}
	state.TotalCategories = int(totalCategories)

	var explored int64
	if err := s.db.Model(&models.TermProgress{}).
		Joins("JOIN terms ON terms.id = term_progresses.term_id").
		Where("term_progresses.user_id = ?", userID).
		Distinct("terms.category").Count(&explored).Error; err != nil {
		return state, nil, err
	}
	state.CategoriesExplored = int(explored)

	var maxDay int
	if err := s.db.Raw(`
        SELECT COALESCE(MAX(cnt), 0) FROM (
            SELECT COUNT(*) AS cnt
            FROM term_progresses
            WHERE user_id = ? AND status = ? AND deleted_at IS NULL
            GROUP BY DATE(last_accessed AT TIME ZONE 'UTC')
        ) daily
    `, userID, models.TermStatusCompleted).Scan(&maxDay).Error; err != nil {
		return state, nil, err
	}
	state.MaxTermsInOneDay = maxDay

	var completedPaths int64
	if err := s.db.Model(&models.UserLearningPathProgress{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&completedPaths).Error; err != nil {
		return state, nil, err
	}
	state.AnyPathCompleted = completedPaths > 0

	earned := make(map[string]bool)
	var rows []models.UserAchievement
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return state, nil, err
	}
	for _, row := range rows {
		earned[row.AchievementType] = true
	}

	return state, earned, nil
}

// scoreQuiz grades one answer per question: the first answer for a question
// wins, later duplicates and answers for unknown question ids are dropped.
// Scoring over the question set keeps the score in 0..100 and correct count
// at most the question count, whatever the payload repeats.
func scoreQuiz(questions []models.QuizQuestion, answers []QuizAnswer, totalTimeSpent int) QuizResult {
	byQuestion := make(map[uint]QuizAnswer, len(answers))
	for _, answer := range answers {
		if _, seen := byQuestion[answer.QuestionID]; !seen {
			byQuestion[answer.QuestionID] = answer
		}
	}

	correct := 0
	results := make([]QuestionResult, 0, len(questions))
	for _, question := range questions {
		answer, answered := byQuestion[question.ID]
		if !answered {
			answer = QuizAnswer{QuestionID: question.ID, SelectedAnswer: -1}
		}
		isCorrect := answered && question.CorrectAnswer == answer.SelectedAnswer
		if isCorrect {
			correct++
		}
		results = append(results, QuestionResult{
			QuestionID:     question.ID,
			SelectedAnswer: answer.SelectedAnswer,
			CorrectAnswer:  question.CorrectAnswer,
			IsCorrect:      isCorrect,
			Explanation:    question.Explanation,
			TimeSpent:      answer.TimeSpent,
		})
	}

	score := int(math.Round(float64(correct) / float64(len(questions)) * 100))
	return QuizResult{
		Score:           score,
		CorrectAnswers:  correct,
		TotalQuestions:  len(questions),
		XPEarned:        XPForQuiz(score, len(questions)),
		TimeSpent:       totalTimeSpent,
		QuestionResults: results,
	}
}

// advancePath folds one completed step into a path progress row. Completing
// a step twice does not grow the set, the path flips to completed exactly
// when the set covers every step, and CurrentStep never exceeds the step
// count nor moves backwards.
func advancePath(progress *models.UserLearningPathProgress, stepID uint, stepOrder, totalSteps int, now time.Time) error {
	completedSteps, err := decodeStepIDs(progress.CompletedSteps)
	if err != nil {
		return err
	}
	if !containsStep(completedSteps, stepID) {
		completedSteps = append(completedSteps, stepID)
	}
	encoded, err := json.Marshal(completedSteps)
	if err != nil {
		return err
	}

	done := len(completedSteps) >= totalSteps
	progress.CompletedSteps = string(encoded)
	progress.IsCompleted = done
	if done {
		progress.CurrentStep = totalSteps
		completedAt := now
		progress.CompletedAt = &completedAt
	} else if stepOrder+1 > progress.CurrentStep {
		progress.CurrentStep = stepOrder + 1
	}
	if progress.CurrentStep > totalSteps {
		progress.CurrentStep = totalSteps
	}
	return nil
}

func decodeStepIDs(encoded string) ([]uint, error) {
	if encoded == "" {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(encoded), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func containsStep(ids []uint, id uint) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") || strings.Contains(msg, "could not serialize")
}

func isDuplicateKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
