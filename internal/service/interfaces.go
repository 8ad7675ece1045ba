package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mealdiary/backend/internal/models"
	"github.com/mealdiary/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, email, password string) (string, *models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.UserProfile, error)
}

// IMealService defines the interface for meal log operations
type IMealService interface {
	CreateMeal(ctx context.Context, userID uuid.UUID, req *types.CreateMealRequest) (*models.MealLog, error)
	GetMeal(ctx context.Context, userID, mealID uuid.UUID) (*models.MealLog, error)
	UpdateMeal(ctx context.Context, userID, mealID uuid.UUID, req *types.UpdateMealRequest) (*models.MealLog, error)
	DeleteMeal(ctx context.Context, userID, mealID uuid.UUID) error
	ListMeals(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.MealLog, error)
	GetRecentMeals(ctx context.Context, userID uuid.UUID, daysBack int) ([]models.MealLog, error)
	GetTodayMeals(ctx context.Context, userID uuid.UUID) ([]models.MealLog, error)
	CalendarSummary(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]types.CalendarDay, error)
	WeeklyStats(ctx context.Context, userID uuid.UUID) (*types.MealStats, error)
}

// IPhotoService defines the interface for meal photo storage
type IPhotoService interface {
	UploadMealPhoto(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error)
	PhotoURL(ctx context.Context, key string) (string, error)
	PhotoURLs(ctx context.Context, keys []string) []string
}

// IRecommendationService defines the interface for the streaming
// recommendation relay and its cache.
type IRecommendationService interface {
	StreamRecommendation(ctx context.Context, prompt string, sink func(delta string) error) (string, error)
	CacheRecommendation(ctx context.Context, userID uuid.UUID, slot models.MealType, text string) error
	LatestRecommendation(ctx context.Context, userID uuid.UUID, slot models.MealType) (string, error)
}
