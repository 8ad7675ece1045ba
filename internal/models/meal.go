package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// MealType tags when/what a meal log represents.
type MealType string

const (
	MealTypeBreakfast      MealType = "breakfast"
	MealTypeLunch          MealType = "lunch"
	MealTypeAfternoonSnack MealType = "afternoon_snack"
	MealTypeDinner         MealType = "dinner"
	MealTypeEveningSnack   MealType = "evening_snack"
	MealTypeSnack          MealType = "snack"
)

// MealTypeOrder is the canonical display order for meal slots.
var MealTypeOrder = []MealType{
	MealTypeBreakfast,
	MealTypeLunch,
	MealTypeAfternoonSnack,
	MealTypeDinner,
	MealTypeEveningSnack,
	MealTypeSnack,
}

var mealTypeLabels = map[MealType]string{
	MealTypeBreakfast:      "早餐",
	MealTypeLunch:          "午餐",
	MealTypeAfternoonSnack: "下午加餐",
	MealTypeDinner:         "晚餐",
	MealTypeEveningSnack:   "晚上加餐",
	MealTypeSnack:          "加餐",
}

// Valid reports whether m is one of the six known meal slots.
func (m MealType) Valid() bool {
	_, ok := mealTypeLabels[m]
	return ok
}

// Label returns the display label for the slot, falling back to the raw
// value for unknown slots.
func (m MealType) Label() string {
	if label, ok := mealTypeLabels[m]; ok {
		return label
	}
	return string(m)
}

// MealLog is one logged eating event.
type MealLog struct {
	ID         uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	PhotoPaths JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"photo_paths"`
	Content    string           `gorm:"size:200" json:"content"`
	MealType   MealType         `gorm:"size:20;not null" json:"meal_type"`
	EatenAt    time.Time        `gorm:"not null;index" json:"eaten_at"`
	Location   string           `gorm:"size:100" json:"location"`
	Tags       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Price      float64          `gorm:"not null;default:0" json:"price"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (MealLog) TableName() string {
	return "meal_logs"
}
