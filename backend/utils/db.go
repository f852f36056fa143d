package utils

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/models"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the postgres connection and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserProgress{},
		&models.Term{},
		&models.QuizQuestion{},
		&models.TermProgress{},
		&models.TermFavorite{},
		&models.QuizAttempt{},
		&models.LearningPath{},
		&models.LearningPathStep{},
		&models.UserLearningPathProgress{},
		&models.LearningPathStepCompletion{},
		&models.UserAchievement{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
