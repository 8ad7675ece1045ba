package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealdiary/backend/internal/models"
	"github.com/mealdiary/backend/internal/types"
)

func TestGetProfileMissingReturnsNilNil(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)

	profile, err := svc.GetProfile(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestUpsertProfileCreatesThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	userID := uuid.New()

	created, err := svc.UpsertProfile(context.Background(), userID, &types.UpdateProfileRequest{
		DisplayName: strPtr("小李"),
		Height:      f64Ptr(170),
		Allergies:   []string{"花生"},
	})
	require.NoError(t, err)
	require.NotNil(t, created.DisplayName)
	assert.Equal(t, "小李", *created.DisplayName)
	assert.Equal(t, models.JSONBStringArray{"花生"}, created.Allergies)

	// A second save updates in place; untouched fields survive
	updated, err := svc.UpsertProfile(context.Background(), userID, &types.UpdateProfileRequest{
		Weight:             f64Ptr(65),
		DailyCalorieTarget: intPtr(1800),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	require.NotNil(t, updated.DisplayName)
	assert.Equal(t, "小李", *updated.DisplayName)
	require.NotNil(t, updated.Weight)
	assert.Equal(t, 65.0, *updated.Weight)

	var count int64
	db.Model(&models.UserProfile{}).Where("user_id = ?", userID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpsertProfileThenGet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	userID := uuid.New()

	_, err := svc.UpsertProfile(context.Background(), userID, &types.UpdateProfileRequest{
		ActivityLevel:       strPtr(models.ActivityLight),
		DietGoals:           []string{"减脂"},
		DietaryRestrictions: []string{"海鲜"},
	})
	require.NoError(t, err)

	got, err := svc.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.ActivityLevel)
	assert.Equal(t, models.ActivityLight, *got.ActivityLevel)
	assert.Equal(t, models.JSONBStringArray{"减脂"}, got.DietGoals)
	assert.Equal(t, models.JSONBStringArray{"海鲜"}, got.DietaryRestrictions)
}
