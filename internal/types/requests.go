package types

import (
	"time"

	"github.com/mealdiary/backend/internal/models"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are
// left untouched; non-nil fields overwrite.
type UpdateProfileRequest struct {
	DisplayName         *string  `json:"display_name"`
	Height              *float64 `json:"height"`
	Weight              *float64 `json:"weight"`
	ActivityLevel       *string  `json:"activity_level"`
	DietGoals           []string `json:"diet_goals"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
	DailyCalorieTarget  *int     `json:"daily_calorie_target"`
}

// CreateMealRequest represents the meal log creation body. An omitted
// meal_type is inferred from the eaten_at time of day.
type CreateMealRequest struct {
	MealType   models.MealType `json:"meal_type"`
	Content    string          `json:"content"`
	EatenAt    *time.Time      `json:"eaten_at"`
	Location   string          `json:"location"`
	PhotoPaths []string        `json:"photo_paths"`
	Tags       []string        `json:"tags"`
	Price      float64         `json:"price"`
}

// UpdateMealRequest carries a partial meal log update.
type UpdateMealRequest struct {
	MealType   *models.MealType `json:"meal_type"`
	Content    *string          `json:"content"`
	EatenAt    *time.Time       `json:"eaten_at"`
	Location   *string          `json:"location"`
	PhotoPaths []string         `json:"photo_paths"`
	Tags       []string         `json:"tags"`
	Price      *float64         `json:"price"`
}

// RecommendationRequest selects the meal slot to recommend for. An empty
// meal_type defaults to dinner.
type RecommendationRequest struct {
	MealType models.MealType `json:"meal_type"`
}

// CalendarDay is one date with its meal count, for the calendar page.
type CalendarDay struct {
	Date      string `json:"date"`
	MealCount int    `json:"meal_count"`
}

// MealStats summarizes a window of meal logs.
type MealStats struct {
	MealCount    int                     `json:"meal_count"`
	DistinctDays int                     `json:"distinct_days"`
	TotalSpend   float64                 `json:"total_spend"`
	CountBySlot  map[models.MealType]int `json:"count_by_slot"`
}
