package controllers

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/models"
	"bizzybrain/backend/progression"
	"bizzybrain/backend/utils"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *progression.Service
}

func NewAuthController(db *gorm.DB, cfg *config.Config, engine *progression.Service) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Engine: engine}
}

type registerInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Age         *int   `json:"age"`
	ParentEmail string `json:"parent_email"`
}

func (in *registerInput) validate() map[string]string {
	errs := make(map[string]string)
	if !strings.Contains(in.Email, "@") {
		errs["email"] = "Please enter a valid email address"
	}
	if len(in.Password) < 6 {
		errs["password"] = "Password must be at least 6 characters long"
	}
	if len(in.FirstName) < 2 || len(in.FirstName) > 50 {
		errs["first_name"] = "First name must be between 2 and 50 characters"
	}
	if len(in.LastName) < 2 || len(in.LastName) > 50 {
		errs["last_name"] = "Last name must be between 2 and 50 characters"
	}
	if in.Age != nil && (*in.Age < 5 || *in.Age > 18) {
		errs["age"] = "Age must be between 5 and 18"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Register godoc
// @Summary Register a new user
// @Description Creates a user account and its zeroed progress ledger
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input registerInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", "INVALID_BODY")
	}
	if errs := input.validate(); errs != nil {
		return utils.ValidationError(c, errs)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	if err := ac.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return utils.Error(c, fiber.StatusConflict, "User already exists with this email", "USER_EXISTS")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Internal(c, "Could not query database", "REGISTRATION_ERROR")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Internal(c, "Could not hash password", "REGISTRATION_ERROR")
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Age:          input.Age,
		ParentEmail:  input.ParentEmail,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.Internal(c, "Could not create user", "REGISTRATION_ERROR")
	}

	// Every user gets a ledger from day one.
	if _, err := ac.Engine.EnsureLedger(user.ID); err != nil {
		return utils.Internal(c, "Could not initialize progress", "REGISTRATION_ERROR")
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Email, ac.Cfg)
	if err != nil {
		return utils.Internal(c, "Could not generate token", "REGISTRATION_ERROR")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   token,
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"age":        user.Age,
			"created_at": user.CreatedAt,
		},
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type loginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", "INVALID_BODY")
	}

	var user models.User
	err := ac.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
		}
		return utils.Internal(c, "Could not query database", "LOGIN_ERROR")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Error(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
	}

	now := time.Now()
	ac.DB.Model(&user).Update("last_login", now)

	token, err := utils.GenerateJWTToken(user.ID, user.Email, ac.Cfg)
	if err != nil {
		return utils.Internal(c, "Could not generate token", "LOGIN_ERROR")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"age":        user.Age,
			"last_login": now,
		},
	})
}

// GetProfile returns the account plus its ledger snapshot.
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	var user models.User
	if err := ac.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.NotFound(c, "User not found", "USER_NOT_FOUND")
	}

	var ledger models.UserProgress
	ac.DB.Where("user_id = ?", userID).First(&ledger)

	return c.JSON(fiber.Map{
		"user":     user,
		"progress": ledger,
	})
}

func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Authentication required")
	}

	type profileInput struct {
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		Age              *int   `json:"age"`
		FavoriteSubjects string `json:"favorite_subjects"`
		LearningGoals    string `json:"learning_goals"`
	}

	var input profileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON", "INVALID_BODY")
	}

	updates := map[string]interface{}{}
	if input.FirstName != "" {
		updates["first_name"] = input.FirstName
	}
	if input.LastName != "" {
		updates["last_name"] = input.LastName
	}
	if input.Age != nil {
		updates["age"] = *input.Age
	}
	if input.FavoriteSubjects != "" {
		updates["favorite_subjects"] = input.FavoriteSubjects
	}
	if input.LearningGoals != "" {
		updates["learning_goals"] = input.LearningGoals
	}

	var user models.User
	if err := ac.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.NotFound(c, "User not found", "USER_NOT_FOUND")
	}
	if len(updates) > 0 {
		if err := ac.DB.Model(&user).Updates(updates).Error; err != nil {
			return utils.Internal(c, "Could not update profile", "PROFILE_UPDATE_ERROR")
		}
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
