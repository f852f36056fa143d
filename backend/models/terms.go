package models

import "gorm.io/gorm"

type Term struct {
	gorm.Model
	Title               string  `gorm:"not null" json:"title"`
	Category            string  `gorm:"index;not null" json:"category"`
	Difficulty          string  `json:"difficulty"` // beginner, intermediate, advanced
	SimpleDefinition    string  `json:"simple_definition"`
	Example             string  `json:"example"`
	DetailedExplanation string  `json:"detailed_explanation"`
	WhyItMatters        string  `json:"why_it_matters"`
	Rating              float64 `gorm:"default:0" json:"rating"`
	EstimatedReadTime   int     `json:"estimated_read_time"` // minutes
	Questions           []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	TermID        uint   `gorm:"index;not null" json:"term_id"`
	Question      string `gorm:"not null" json:"question"`
	Options       string `gorm:"not null" json:"options"` // JSON array of options
	CorrectAnswer int    `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Difficulty    string `json:"difficulty"`
	OrderIndex    int    `json:"order_index"`
}
