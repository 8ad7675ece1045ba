package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealdiary/backend/internal/models"
	"github.com/mealdiary/backend/internal/types"
)

// ProfileService handles user profile operations
type ProfileService struct {
	db *gorm.DB
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db: db,
	}
}

// GetProfile retrieves a user's profile. It returns (nil, nil) when the
// user has not created a profile yet, so callers can tell "no profile"
// from a storage failure.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile creates the user's profile on first save and updates it
// afterwards. At most one profile exists per user.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{
			ID:     uuid.New(),
			UserID: userID,
		}
	} else if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = req.DisplayName
	}
	if req.Height != nil {
		profile.Height = req.Height
	}
	if req.Weight != nil {
		profile.Weight = req.Weight
	}
	if req.ActivityLevel != nil {
		profile.ActivityLevel = req.ActivityLevel
	}
	if req.DietGoals != nil {
		profile.DietGoals = models.JSONBStringArray(req.DietGoals)
	}
	if req.DietaryRestrictions != nil {
		profile.DietaryRestrictions = models.JSONBStringArray(req.DietaryRestrictions)
	}
	if req.Allergies != nil {
		profile.Allergies = models.JSONBStringArray(req.Allergies)
	}
	if req.DailyCalorieTarget != nil {
		profile.DailyCalorieTarget = req.DailyCalorieTarget
	}
	profile.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}
