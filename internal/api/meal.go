package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mealdiary/backend/internal/dateutil"
	"github.com/mealdiary/backend/internal/models"
	"github.com/mealdiary/backend/internal/service"
	"github.com/mealdiary/backend/internal/types"
)

// MealHandler serves the meal log CRUD and summary endpoints.
type MealHandler struct {
	mealService  service.IMealService
	photoService service.IPhotoService
}

func NewMealHandler(mealService service.IMealService, photoService service.IPhotoService) *MealHandler {
	return &MealHandler{
		mealService:  mealService,
		photoService: photoService,
	}
}

func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup) {
	meals := router.Group("/meals")
	{
		meals.POST("", h.CreateMeal)
		meals.GET("", h.ListMeals)
		meals.GET("/today", h.TodayMeals)
		meals.GET("/calendar", h.Calendar)
		meals.GET("/stats", h.WeeklyStats)
		meals.GET("/:id", h.GetMeal)
		meals.PUT("/:id", h.UpdateMeal)
		meals.DELETE("/:id", h.DeleteMeal)
	}
}

// mealResponse is a meal log with its photo keys resolved to viewable
// URLs.
type mealResponse struct {
	models.MealLog
	PhotoURLs []string `json:"photo_urls"`
}

func (h *MealHandler) withPhotoURLs(c *gin.Context, meal models.MealLog) mealResponse {
	return mealResponse{
		MealLog:   meal,
		PhotoURLs: h.photoService.PhotoURLs(c.Request.Context(), meal.PhotoPaths),
	}
}

func (h *MealHandler) withPhotoURLsList(c *gin.Context, meals []models.MealLog) []mealResponse {
	out := make([]mealResponse, 0, len(meals))
	for _, meal := range meals {
		out = append(out, h.withPhotoURLs(c, meal))
	}
	return out
}

func (h *MealHandler) CreateMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	meal, err := h.mealService.CreateMeal(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, h.withPhotoURLs(c, *meal))
}

func (h *MealHandler) GetMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	meal, err := h.mealService.GetMeal(c.Request.Context(), userID, mealID)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal log not found"})
			return
		}
		log.Printf("[Meal] get failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get meal log"})
		return
	}

	c.JSON(http.StatusOK, h.withPhotoURLs(c, *meal))
}

func (h *MealHandler) UpdateMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	var req types.UpdateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	meal, err := h.mealService.UpdateMeal(c.Request.Context(), userID, mealID, &req)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal log not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.withPhotoURLs(c, *meal))
}

func (h *MealHandler) DeleteMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	if err := h.mealService.DeleteMeal(c.Request.Context(), userID, mealID); err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal log not found"})
			return
		}
		log.Printf("[Meal] delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete meal log"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMeals returns the meals for one calendar date; ?date=2025/06/01
// or 2025-06-01, defaulting to today.
func (h *MealHandler) ListMeals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	date := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := parseDate(dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = parsed
	}

	meals, err := h.mealService.ListMeals(c.Request.Context(), userID, date)
	if err != nil {
		log.Printf("[Meal] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list meal logs"})
		return
	}

	c.JSON(http.StatusOK, h.withPhotoURLsList(c, meals))
}

func (h *MealHandler) TodayMeals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	meals, err := h.mealService.GetTodayMeals(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[Meal] today failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list meal logs"})
		return
	}

	c.JSON(http.StatusOK, h.withPhotoURLsList(c, meals))
}

// Calendar returns per-day meal counts for ?year=&month=, defaulting to
// the current month.
func (h *MealHandler) Calendar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	now := time.Now().In(dateutil.Beijing)
	year := now.Year()
	month := now.Month()

	if yearStr := c.Query("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = y
	}
	if monthStr := c.Query("month"); monthStr != "" {
		m, err := strconv.Atoi(monthStr)
		if err != nil || m < 1 || m > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}
		month = time.Month(m)
	}

	days, err := h.mealService.CalendarSummary(c.Request.Context(), userID, year, month)
	if err != nil {
		log.Printf("[Meal] calendar failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build calendar"})
		return
	}

	c.JSON(http.StatusOK, days)
}

func (h *MealHandler) WeeklyStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.mealService.WeeklyStats(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[Meal] stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006/01/02", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, dateutil.Beijing); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}
