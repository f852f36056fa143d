package progression

import (
	"errors"
	"testing"
	"time"

	"bizzybrain/backend/models"

	"github.com/stretchr/testify/assert"
)

func quizQuestions(n int) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, n)
	for i := range questions {
		questions[i].ID = uint(i + 1)
		questions[i].CorrectAnswer = 2
		questions[i].Explanation = "because"
	}
	return questions
}

func TestScoreQuizAllCorrect(t *testing.T) {
	questions := quizQuestions(5)
	answers := make([]QuizAnswer, 5)
	for i := range answers {
		answers[i] = QuizAnswer{QuestionID: uint(i + 1), SelectedAnswer: 2}
	}

	result := scoreQuiz(questions, answers, 120)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 5, result.CorrectAnswers)
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, 50, result.XPEarned)
	assert.Equal(t, 120, result.TimeSpent)
	for _, qr := range result.QuestionResults {
		assert.True(t, qr.IsCorrect)
		assert.Equal(t, 2, qr.CorrectAnswer)
	}
}

func TestScoreQuizPartial(t *testing.T) {
	questions := quizQuestions(5)
	answers := []QuizAnswer{
		{QuestionID: 1, SelectedAnswer: 2},
		{QuestionID: 2, SelectedAnswer: 2},
		{QuestionID: 3, SelectedAnswer: 2},
		{QuestionID: 4, SelectedAnswer: 2},
		{QuestionID: 5, SelectedAnswer: 0},
	}

	result := scoreQuiz(questions, answers, 90)
	assert.Equal(t, 80, result.Score)
	assert.Equal(t, 4, result.CorrectAnswers)
	assert.Equal(t, 40, result.XPEarned)
}

func TestScoreQuizUnknownQuestionIgnored(t *testing.T) {
	// An answer for a question id outside the quiz is dropped, and the
	// question it displaced is graded as unanswered.
	questions := quizQuestions(2)
	answers := []QuizAnswer{
		{QuestionID: 1, SelectedAnswer: 2},
		{QuestionID: 99, SelectedAnswer: 2},
	}

	result := scoreQuiz(questions, answers, 30)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 50, result.Score)
	assert.Len(t, result.QuestionResults, 2)
	assert.Equal(t, uint(2), result.QuestionResults[1].QuestionID)
	assert.Equal(t, -1, result.QuestionResults[1].SelectedAnswer)
	assert.False(t, result.QuestionResults[1].IsCorrect)
}

func TestScoreQuizDuplicateAnswersDoNotInflateScore(t *testing.T) {
	// Repeating one correct answer must not raise the score past 100 or the
	// correct count past the question count.
	questions := quizQuestions(1)
	answers := []QuizAnswer{
		{QuestionID: 1, SelectedAnswer: 2},
		{QuestionID: 1, SelectedAnswer: 2},
		{QuestionID: 1, SelectedAnswer: 2},
	}

	result := scoreQuiz(questions, answers, 15)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 1, result.TotalQuestions)
	assert.Equal(t, 10, result.XPEarned)
	assert.Len(t, result.QuestionResults, 1)
}

func TestScoreQuizFirstAnswerWins(t *testing.T) {
	questions := quizQuestions(1)
	answers := []QuizAnswer{
		{QuestionID: 1, SelectedAnswer: 0},
		{QuestionID: 1, SelectedAnswer: 2},
	}

	result := scoreQuiz(questions, answers, 15)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.CorrectAnswers)
	assert.Equal(t, 0, result.QuestionResults[0].SelectedAnswer)
}

func TestScoreQuizScoresAgainstAllQuestions(t *testing.T) {
	// Answering only some questions is scored against the full quiz, not
	// the answered subset.
	questions := quizQuestions(4)
	answers := []QuizAnswer{{QuestionID: 1, SelectedAnswer: 2}}

	result := scoreQuiz(questions, answers, 10)
	assert.Equal(t, 25, result.Score)
	assert.Equal(t, 4, result.TotalQuestions)
}

func pathProgressWith(completed string, currentStep int) models.UserLearningPathProgress {
	return models.UserLearningPathProgress{
		CompletedSteps: completed,
		CurrentStep:    currentStep,
	}
}

func TestAdvancePathIntermediateStep(t *testing.T) {
	progress := pathProgressWith("[]", 1)
	err := advancePath(&progress, 1, 1, 3, time.Now())

	assert.NoError(t, err)
	assert.False(t, progress.IsCompleted)
	assert.Nil(t, progress.CompletedAt)
	assert.Equal(t, "[1]", progress.CompletedSteps)
	assert.Equal(t, 2, progress.CurrentStep)
}

func TestAdvancePathFinalStepCompletes(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	progress := pathProgressWith("[1,2]", 3)
	err := advancePath(&progress, 3, 3, 3, now)

	assert.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 3, progress.CurrentStep)
	if assert.NotNil(t, progress.CompletedAt) {
		assert.Equal(t, now, *progress.CompletedAt)
	}
}

func TestAdvancePathNotDoneUntilAllStepsCovered(t *testing.T) {
	// Two of three steps done is not a completed path, whatever order they
	// were done in.
	progress := pathProgressWith("[3]", 3)
	err := advancePath(&progress, 2, 2, 3, time.Now())

	assert.NoError(t, err)
	assert.False(t, progress.IsCompleted)
	assert.Nil(t, progress.CompletedAt)
}

func TestAdvancePathOutOfOrderKeepsCurrentStep(t *testing.T) {
	// Going back to finish step 1 after step 2 must not rewind the cursor.
	progress := pathProgressWith("[2]", 3)
	err := advancePath(&progress, 1, 1, 3, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 3, progress.CurrentStep)
	assert.False(t, progress.IsCompleted)
}

func TestAdvancePathRepeatCompletionIsIdempotent(t *testing.T) {
	progress := pathProgressWith("[1]", 2)
	err := advancePath(&progress, 1, 1, 3, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, "[1]", progress.CompletedSteps)
	assert.False(t, progress.IsCompleted)
	assert.Equal(t, 2, progress.CurrentStep)
}

func TestAdvancePathCurrentStepCappedAtTotal(t *testing.T) {
	progress := pathProgressWith("[1]", 2)
	err := advancePath(&progress, 2, 2, 2, time.Now())

	assert.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 2, progress.CurrentStep)
}

func TestAdvancePathBrokenStateSurfaces(t *testing.T) {
	progress := pathProgressWith("{broken", 1)
	err := advancePath(&progress, 1, 1, 3, time.Now())
	assert.Error(t, err)
}

func TestDecodeStepIDs(t *testing.T) {
	ids, err := decodeStepIDs("[1,2,5]")
	assert.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 5}, ids)

	ids, err = decodeStepIDs("[]")
	assert.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = decodeStepIDs("")
	assert.NoError(t, err)
	assert.Nil(t, ids)

	_, err = decodeStepIDs("{broken")
	assert.Error(t, err)
}

func TestContainsStep(t *testing.T) {
	assert.True(t, containsStep([]uint{1, 2, 3}, 2))
	assert.False(t, containsStep([]uint{1, 2, 3}, 4))
	assert.False(t, containsStep(nil, 1))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_user_achievements_user_type" (SQLSTATE 23505)`)))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")))
	assert.True(t, isTransient(errors.New("ERROR: could not serialize access due to concurrent update")))
	assert.False(t, isTransient(errors.New("record not found")))
}
