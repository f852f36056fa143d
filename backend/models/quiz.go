package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizAttempt is immutable once created. It is the audit trail streak and
// achievement computations read from.
type QuizAttempt struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	TermID         uint      `gorm:"not null" json:"term_id"`
	Score          int       `gorm:"not null" json:"score"` // 0-100
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	TimeSpent      int       `json:"time_spent"` // seconds
	XPEarned       int       `json:"xp_earned"`
	Answers        string    `json:"answers"` // JSON snapshot of per-question results
	CompletedAt    time.Time `gorm:"index" json:"completed_at"`
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
