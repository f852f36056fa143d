package controllers

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/models"
	"bizzybrain/backend/utils"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TermsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTermsController(db *gorm.DB, cfg *config.Config) *TermsController {
	return &TermsController{DB: db, Cfg: cfg}
}

var termSortColumns = map[string]string{
	"title":      "title",
	"category":   "category",
	"difficulty": "difficulty",
	"rating":     "rating",
	"created_at": "created_at",
}

// GetTerms godoc
// @Summary List terms
// @Description Returns terms with optional category/difficulty/search filters
// @Tags terms
// @Produce json
// @Router /terms [get]
func (tc *TermsController) GetTerms(c *fiber.Ctx) error {
	category := c.Query("category")
	difficulty := c.Query("difficulty")
	search := c.Query("search")
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	sortBy := c.Query("sort_by", "title")
	sortOrder := c.Query("sort_order", "asc")

	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	column, ok := termSortColumns[sortBy]
	if !ok {
		column = "title"
	}
	if sortOrder != "desc" {
		sortOrder = "asc"
	}

	query := tc.DB.Model(&models.Term{})
	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR simple_definition ILIKE ?", pattern, pattern)
	}

	var terms []models.Term
	if err := query.Order(column + " " + sortOrder).Limit(limit).Offset(offset).Find(&terms).Error; err != nil {
		return utils.Internal(c, "Failed to fetch terms", "TERMS_FETCH_ERROR")
	}

	userID, authed := currentUserID(c)
	result := make([]fiber.Map, 0, len(terms))
	for _, term := range terms {
		entry := termSummary(term)
		if authed {
			tc.decorate(entry, userID, term.ID)
		}
		result = append(result, entry)
	}

	return c.JSON(fiber.Map{
		"terms": result,
		"pagination": fiber.Map{
			"limit":  limit,
			"offset": offset,
			"total":  len(result),
		},
	})
}

func (tc *TermsController) GetTerm(c *fiber.Ctx) error {
	termID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid term ID", "INVALID_TERM_ID")
	}

	var term models.Term
	if err := tc.DB.First(&term, termID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Term not found", "TERM_NOT_FOUND")
		}
		return utils.Internal(c, "Failed to fetch term", "TERM_FETCH_ERROR")
	}

	entry := termSummary(term)
	entry["detailed_explanation"] = term.DetailedExplanation
	entry["why_it_matters"] = term.WhyItMatters
	entry["example"] = term.Example
	if userID, ok := currentUserID(c); ok {
		tc.decorate(entry, userID, term.ID)
	}

	return c.JSON(fiber.Map{"term": entry})
}

// GetCategoryStats returns term counts per category.
func (tc *TermsController) GetCategoryStats(c *fiber.Ctx) error {
	type categoryCount struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}

	var counts []categoryCount
	if err := tc.DB.Model(&models.Term{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category").
		Scan(&counts).Error; err != nil {
		return utils.Internal(c, "Failed to fetch category statistics", "CATEGORIES_STATS_ERROR")
	}

	return c.JSON(fiber.Map{"categories": counts})
}

// AdvancedSearch filters across multiple categories/difficulties plus
// rating and read-time bounds.
func (tc *TermsController) AdvancedSearch(c *fiber.Ctx) error {
	searchQuery := c.Query("q")
	categories := c.Query("categories")
	difficulties := c.Query("difficulties")
	minRating := c.Query("min_rating")
	maxReadTime := c.QueryInt("max_read_time", 0)
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := tc.DB.Model(&models.Term{})
	if searchQuery != "" {
		pattern := "%" + searchQuery + "%"
		query = query.Where("title ILIKE ? OR simple_definition ILIKE ? OR example ILIKE ?", pattern, pattern, pattern)
	}
	if categories != "" {
		query = query.Where("category IN ?", strings.Split(categories, ","))
	}
	if difficulties != "" {
		query = query.Where("difficulty IN ?", strings.Split(difficulties, ","))
	}
	if minRating != "" {
		if rating, err := strconv.ParseFloat(minRating, 64); err == nil {
			query = query.Where("rating >= ?", rating)
		}
	}
	if maxReadTime > 0 {
		query = query.Where("estimated_read_time <= ?", maxReadTime)
	}

	var terms []models.Term
	if err := query.Limit(limit).Find(&terms).Error; err != nil {
		return utils.Internal(c, "Search failed", "SEARCH_ERROR")
	}

	userID, authed := currentUserID(c)
	result := make([]fiber.Map, 0, len(terms))
	for _, term := range terms {
		entry := termSummary(term)
		if authed {
			tc.decorate(entry, userID, term.ID)
		}
		result = append(result, entry)
	}

	return c.JSON(fiber.Map{
		"terms":         result,
		"search_query":  searchQuery,
		"results_count": len(result),
	})
}

func termSummary(term models.Term) fiber.Map {
	return fiber.Map{
		"id":                  term.ID,
		"title":               term.Title,
		"category":            term.Category,
		"difficulty":          term.Difficulty,
		"simple_definition":   term.SimpleDefinition,
		"rating":              term.Rating,
		"estimated_read_time": term.EstimatedReadTime,
		"created_at":          term.CreatedAt,
	}
}

// decorate adds per-user favorite/progress state to a term entry.
func (tc *TermsController) decorate(entry fiber.Map, userID uuid.UUID, termID uint) {
	var favorites int64
	tc.DB.Model(&models.TermFavorite{}).
		Where("user_id = ? AND term_id = ?", userID, termID).
		Count(&favorites)
	entry["is_favorited"] = favorites > 0

	var progress models.TermProgress
	if err := tc.DB.Where("user_id = ? AND term_id = ?", userID, termID).First(&progress).Error; err == nil {
		entry["user_progress"] = fiber.Map{
			"status":        progress.Status,
			"time_spent":    progress.TimeSpent,
			"last_accessed": progress.LastAccessed,
		}
	}
}
