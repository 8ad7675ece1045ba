package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

// Activity levels a profile may declare.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// UserProfile holds the diet-related profile for a user. Body metrics are
// optional; a nil pointer means the user never provided the value, which
// is different from zero.
type UserProfile struct {
	ID                  uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID              uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	DisplayName         *string          `gorm:"size:50" json:"display_name"`
	Height              *float64         `json:"height"`
	Weight              *float64         `json:"weight"`
	ActivityLevel       *string          `gorm:"size:20" json:"activity_level"`
	DietGoals           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"diet_goals"`
	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_restrictions"`
	Allergies           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	DailyCalorieTarget  *int             `json:"daily_calorie_target"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	DeletedAt           gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
