package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningPath struct {
	gorm.Model
	Title         string `gorm:"not null" json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	EstimatedTime int    `json:"estimated_time"` // minutes
	Icon          string `json:"icon"`
	Color         string `json:"color"`
	OrderIndex    int    `json:"order_index"`
	Steps         []LearningPathStep
}

type LearningPathStep struct {
	gorm.Model
	LearningPathID uint   `gorm:"index;not null" json:"learning_path_id"`
	Title          string `gorm:"not null" json:"title"`
	Description    string `json:"description"`
	Content        string `json:"content"`
	OrderIndex     int    `json:"order_index"`
	EstimatedTime  int    `json:"estimated_time"`
	Difficulty     string `json:"difficulty"`
	TermIDs        string `json:"term_ids"` // JSON array of term ids
}

// UserLearningPathProgress tracks one user's walk through one path.
// IsCompleted holds only once every step id is in CompletedSteps.
type UserLearningPathProgress struct {
	gorm.Model
	UserID         uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_path_progress_user_path;not null" json:"user_id"`
	LearningPathID uint       `gorm:"uniqueIndex:idx_path_progress_user_path;not null" json:"learning_path_id"`
	CurrentStep    int        `gorm:"default:1" json:"current_step"`
	CompletedSteps string     `gorm:"default:'[]'" json:"completed_steps"` // JSON array of step ids
	IsCompleted    bool       `gorm:"default:false" json:"is_completed"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type LearningPathStepCompletion struct {
	gorm.Model
	UserID           uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	LearningPathID   uint      `gorm:"not null" json:"learning_path_id"`
	StepID           uint      `gorm:"not null" json:"step_id"`
	TimeSpent        int       `json:"time_spent"`
	DifficultyRating string    `json:"difficulty_rating,omitempty"`
	CompletedAt      time.Time `json:"completed_at"`
}
