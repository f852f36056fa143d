package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProgress is the per-user progress ledger. Level is derived from
// TotalXP (1000 XP per level) and is recomputed on every XP mutation.
type UserProgress struct {
	gorm.Model
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	TotalXP          int       `gorm:"default:0" json:"total_xp"`
	Level            int       `gorm:"default:1" json:"level"`
	TermsLearned     int       `gorm:"default:0" json:"terms_learned"`
	QuizzesCompleted int       `gorm:"default:0" json:"quizzes_completed"`
	CurrentStreak    int       `gorm:"default:0" json:"current_streak"`
	LongestStreak    int       `gorm:"default:0" json:"longest_streak"`
	TotalStudyTime   int       `gorm:"default:0" json:"total_study_time"` // minutes
}

const (
	TermStatusViewed    = "viewed"
	TermStatusCompleted = "completed"
)

// TermProgress is upserted, one row per user+term pair.
type TermProgress struct {
	gorm.Model
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_term_progress_user_term;not null" json:"user_id"`
	TermID           uint      `gorm:"uniqueIndex:idx_term_progress_user_term;not null" json:"term_id"`
	Status           string    `gorm:"default:viewed" json:"status"` // viewed, completed
	TimeSpent        int       `gorm:"default:0" json:"time_spent"`  // minutes
	DifficultyRating string    `json:"difficulty_rating,omitempty"`  // easy, medium, hard
	LastAccessed     time.Time `json:"last_accessed"`
}

// TermFavorite existence = favorited. Deleted outright on toggle-off.
type TermFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_term_favorites_user_term;not null" json:"user_id"`
	TermID    uint      `gorm:"uniqueIndex:idx_term_favorites_user_term;not null" json:"term_id"`
	CreatedAt time.Time `json:"created_at"`
}
