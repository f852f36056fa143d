package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Age          *int      `json:"age,omitempty"`
	ParentEmail  string    `json:"parent_email,omitempty"`

	FavoriteSubjects     string `json:"favorite_subjects,omitempty"` // JSON array
	LearningGoals        string `json:"learning_goals,omitempty"`    // JSON array
	StudyReminders       bool   `gorm:"default:false" json:"study_reminders"`
	DifficultyPreference string `json:"difficulty_preference,omitempty"`
	ParentNotifications  bool   `gorm:"default:false" json:"parent_notifications"`

	LastLogin *time.Time     `json:"last_login,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
