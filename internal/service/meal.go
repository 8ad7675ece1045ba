package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealdiary/backend/internal/dateutil"
	"github.com/mealdiary/backend/internal/models"
	"github.com/mealdiary/backend/internal/types"
)

var (
	// ErrMealNotFound means no meal log with that id belongs to the user.
	ErrMealNotFound = errors.New("meal log not found")
)

const maxContentLength = 200

// MealService handles meal log operations
type MealService struct {
	db *gorm.DB
}

// Ensure MealService implements IMealService
var _ IMealService = (*MealService)(nil)

// NewMealService creates a new MealService instance
func NewMealService(db *gorm.DB) *MealService {
	return &MealService{
		db: db,
	}
}

func validateMealInput(mealType models.MealType, content string, price float64) error {
	if !mealType.Valid() {
		return fmt.Errorf("unknown meal type %q", mealType)
	}
	if len([]rune(content)) > maxContentLength {
		return fmt.Errorf("content exceeds %d characters", maxContentLength)
	}
	if price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// CreateMeal records one eating event for the user. A missing meal type
// is inferred from the eaten_at time of day.
func (s *MealService) CreateMeal(ctx context.Context, userID uuid.UUID, req *types.CreateMealRequest) (*models.MealLog, error) {
	eatenAt := time.Now()
	if req.EatenAt != nil {
		eatenAt = *req.EatenAt
	}

	mealType := req.MealType
	if mealType == "" {
		mealType = dateutil.DetectMealType(eatenAt.In(dateutil.Beijing).Hour())
	}

	if err := validateMealInput(mealType, req.Content, req.Price); err != nil {
		return nil, err
	}

	meal := models.MealLog{
		ID:         uuid.New(),
		UserID:     userID,
		PhotoPaths: models.JSONBStringArray(req.PhotoPaths),
		Content:    req.Content,
		MealType:   mealType,
		EatenAt:    eatenAt,
		Location:   req.Location,
		Tags:       models.JSONBStringArray(req.Tags),
		Price:      req.Price,
	}

	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, err
	}

	return &meal, nil
}

// GetMeal fetches one meal log owned by the user.
func (s *MealService) GetMeal(ctx context.Context, userID, mealID uuid.UUID) (*models.MealLog, error) {
	var meal models.MealLog
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", mealID, userID).First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return &meal, nil
}

// UpdateMeal applies the provided fields to a meal log owned by the user.
func (s *MealService) UpdateMeal(ctx context.Context, userID, mealID uuid.UUID, req *types.UpdateMealRequest) (*models.MealLog, error) {
	meal, err := s.GetMeal(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	if req.MealType != nil {
		meal.MealType = *req.MealType
	}
	if req.Content != nil {
		meal.Content = *req.Content
	}
	if req.EatenAt != nil {
		meal.EatenAt = *req.EatenAt
	}
	if req.Location != nil {
		meal.Location = *req.Location
	}
	if req.PhotoPaths != nil {
		meal.PhotoPaths = models.JSONBStringArray(req.PhotoPaths)
	}
	if req.Tags != nil {
		meal.Tags = models.JSONBStringArray(req.Tags)
	}
	if req.Price != nil {
		meal.Price = *req.Price
	}

	if err := validateMealInput(meal.MealType, meal.Content, meal.Price); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(meal).Error; err != nil {
		return nil, err
	}

	return meal, nil
}

// DeleteMeal removes a meal log owned by the user.
func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", mealID, userID).Delete(&models.MealLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMealNotFound
	}
	return nil
}

// ListMeals returns the user's meals for one Beijing calendar date,
// ascending by eaten_at.
func (s *MealService) ListMeals(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.MealLog, error) {
	start := dateutil.StartOfDay(date)
	end := dateutil.EndOfDay(date)

	var meals []models.MealLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND eaten_at BETWEEN ? AND ?", userID, start, end).
		Order("eaten_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

// GetRecentMeals returns the user's meals from the last daysBack Beijing
// calendar days up to now, ascending by eaten_at.
func (s *MealService) GetRecentMeals(ctx context.Context, userID uuid.UUID, daysBack int) ([]models.MealLog, error) {
	now := time.Now()
	start := dateutil.StartOfDay(now.AddDate(0, 0, -(daysBack - 1)))

	var meals []models.MealLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND eaten_at >= ?", userID, start).
		Order("eaten_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

// GetTodayMeals returns the user's meals for the current Beijing day.
func (s *MealService) GetTodayMeals(ctx context.Context, userID uuid.UUID) ([]models.MealLog, error) {
	return s.ListMeals(ctx, userID, time.Now())
}

// CalendarSummary returns the per-day meal counts for one month, for the
// calendar page.
func (s *MealService) CalendarSummary(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]types.CalendarDay, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, dateutil.Beijing).UTC()
	end := time.Date(year, month+1, 1, 0, 0, 0, 0, dateutil.Beijing).UTC()

	var meals []models.MealLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, start, end).
		Order("eaten_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	for _, meal := range meals {
		label := dateutil.DateLabel(meal.EatenAt)
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	days := make([]types.CalendarDay, 0, len(order))
	for _, label := range order {
		days = append(days, types.CalendarDay{Date: label, MealCount: counts[label]})
	}
	return days, nil
}

// WeeklyStats summarizes the user's last 7 Beijing days: meal and day
// counts, total spend, and per-slot counts.
func (s *MealService) WeeklyStats(ctx context.Context, userID uuid.UUID) (*types.MealStats, error) {
	meals, err := s.GetRecentMeals(ctx, userID, 7)
	if err != nil {
		return nil, err
	}

	stats := &types.MealStats{
		MealCount:    len(meals),
		CountBySlot:  make(map[models.MealType]int),
		DistinctDays: DistinctDayCount(meals),
	}
	for _, meal := range meals {
		stats.TotalSpend += meal.Price
		stats.CountBySlot[meal.MealType]++
	}
	return stats, nil
}
