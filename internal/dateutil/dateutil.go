// Package dateutil pins all day-boundary math to Beijing time (UTC+8).
// The product is single-region; "today" means today in Beijing no matter
// where the server runs.
package dateutil

import (
	"time"

	"github.com/mealdiary/backend/internal/models"
)

// Beijing is the fixed UTC+8 offset used for all calendar boundaries.
var Beijing = time.FixedZone("CST", 8*3600)

// StartOfDay returns 00:00:00 of t's Beijing calendar date, in UTC.
func StartOfDay(t time.Time) time.Time {
	local := t.In(Beijing)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Beijing)
	return start.UTC()
}

// EndOfDay returns the last instant of t's Beijing calendar date, in UTC.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// DateLabel formats t's Beijing calendar date for display, e.g. "2026/08/31".
func DateLabel(t time.Time) string {
	return t.In(Beijing).Format("2006/01/02")
}

// TimeLabel formats t's Beijing wall-clock time, e.g. "12:30".
func TimeLabel(t time.Time) string {
	return t.In(Beijing).Format("15:04")
}

// SameDay reports whether a and b fall on the same Beijing calendar date.
func SameDay(a, b time.Time) bool {
	al, bl := a.In(Beijing), b.In(Beijing)
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}

// DetectMealType guesses the meal slot for the given Beijing hour (0-23).
func DetectMealType(hour int) models.MealType {
	switch {
	case hour >= 5 && hour <= 8:
		return models.MealTypeBreakfast
	case hour >= 9 && hour <= 13:
		return models.MealTypeLunch
	case hour >= 14 && hour <= 16:
		return models.MealTypeAfternoonSnack
	case hour >= 17 && hour <= 20:
		return models.MealTypeDinner
	case hour >= 21 || hour <= 4:
		return models.MealTypeEveningSnack
	}
	return models.MealTypeSnack
}
