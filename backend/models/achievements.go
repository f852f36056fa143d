package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAchievement records one earned badge. The composite unique index is
// what makes awarding idempotent under concurrent qualifying actions: a
// duplicate insert is rejected by the database, not silently doubled.
type UserAchievement struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_achievements_user_type;not null" json:"user_id"`
	AchievementType string    `gorm:"uniqueIndex:idx_user_achievements_user_type;not null" json:"achievement_type"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	EarnedAt        time.Time `json:"earned_at"`
}
