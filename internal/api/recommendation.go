package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mealdiary/backend/internal/models"
	"github.com/mealdiary/backend/internal/service"
	"github.com/mealdiary/backend/internal/types"
)

const (
	msgTimeout      = "请求超时，请重试"
	msgUnavailable  = "AI服务暂时不可用，请稍后重试"
	msgNoProfile    = "请先设置个人档案信息"
	msgCollectFail  = "获取饮食数据失败，请稍后重试"
	msgNoRecentText = "暂无推荐记录"
)

// RecommendationHandler streams AI meal recommendations to the client as
// they arrive from the upstream model.
type RecommendationHandler struct {
	profileService service.IProfileService
	mealService    service.IMealService
	recService     service.IRecommendationService
}

func NewRecommendationHandler(
	profileService service.IProfileService,
	mealService service.IMealService,
	recService service.IRecommendationService,
) *RecommendationHandler {
	return &RecommendationHandler{
		profileService: profileService,
		mealService:    mealService,
		recService:     recService,
	}
}

func (h *RecommendationHandler) RegisterRoutes(router *gin.RouterGroup, limit ...gin.HandlerFunc) {
	generate := router.Group("")
	generate.Use(limit...)
	{
		generate.POST("/ai-recommendation", h.Recommend)
		generate.POST("/ai-summary", h.Summarize)
	}
	router.GET("/ai-recommendation/latest", h.Latest)
}

func failJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// collect loads everything the prompt needs. It returns a user-safe
// message on failure so the handler can reply without leaking internals.
func (h *RecommendationHandler) collect(ctx context.Context, userID uuid.UUID) (*models.UserProfile, []models.MealLog, []models.MealLog, string) {
	profile, err := h.profileService.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("[Recommendation] profile lookup failed: %v", err)
		return nil, nil, nil, msgCollectFail
	}
	if profile == nil {
		return nil, nil, nil, msgNoProfile
	}

	recent, err := h.mealService.GetRecentMeals(ctx, userID, 7)
	if err != nil {
		log.Printf("[Recommendation] recent meals lookup failed: %v", err)
		return nil, nil, nil, msgCollectFail
	}

	today, err := h.mealService.GetTodayMeals(ctx, userID)
	if err != nil {
		log.Printf("[Recommendation] today meals lookup failed: %v", err)
		return nil, nil, nil, msgCollectFail
	}

	return profile, recent, today, ""
}

// stream relays the prompt's completion to the client. Response headers
// are only written once the first delta arrives, so failures before any
// output still produce a structured JSON error.
func (h *RecommendationHandler) stream(c *gin.Context, userID uuid.UUID, slot models.MealType, prompt string, cache bool) {
	started := false
	sink := func(delta string) error {
		if !started {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("Cache-Control", "no-cache")
			c.Header("X-Accel-Buffering", "no")
			c.Writer.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := c.Writer.WriteString(delta); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	full, err := h.recService.StreamRecommendation(c.Request.Context(), prompt, sink)
	if err != nil {
		if started {
			// Bytes already reached the client; nothing sane to append.
			log.Printf("[Recommendation] stream aborted mid-flight: %v", err)
			return
		}
		if errors.Is(err, service.ErrUpstreamTimeout) {
			failJSON(c, http.StatusInternalServerError, msgTimeout)
			return
		}
		log.Printf("[Recommendation] stream failed: %v", err)
		failJSON(c, http.StatusInternalServerError, msgUnavailable)
		return
	}

	if cache {
		if err := h.recService.CacheRecommendation(c.Request.Context(), userID, slot, full); err != nil {
			log.Printf("[Recommendation] cache write failed: %v", err)
		}
	}
}

// Recommend generates and streams a meal recommendation for the
// requested slot, defaulting to dinner.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.RecommendationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			failJSON(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	slot := req.MealType
	if slot == "" {
		slot = models.MealTypeDinner
	}
	if !slot.Valid() {
		failJSON(c, http.StatusBadRequest, "unknown meal type: "+string(slot))
		return
	}

	profile, recent, today, failMsg := h.collect(c.Request.Context(), userID)
	if failMsg != "" {
		failJSON(c, http.StatusInternalServerError, failMsg)
		return
	}

	prompt, err := service.BuildMealRecommendationPrompt(profile, recent, today, slot)
	if err != nil {
		failJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	h.stream(c, userID, slot, prompt, true)
}

// Summarize streams an AI summary of today's recorded meals.
func (h *RecommendationHandler) Summarize(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, _, today, failMsg := h.collect(c.Request.Context(), userID)
	if failMsg != "" {
		failJSON(c, http.StatusInternalServerError, failMsg)
		return
	}

	prompt := service.BuildTodaySummaryPrompt(profile, today)
	h.stream(c, userID, "", prompt, false)
}

// Latest returns the cached recommendation for a slot without calling
// the model again.
func (h *RecommendationHandler) Latest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	slot := models.MealType(c.Query("meal_type"))
	if slot == "" {
		slot = models.MealTypeDinner
	}
	if !slot.Valid() {
		failJSON(c, http.StatusBadRequest, "unknown meal type: "+string(slot))
		return
	}

	text, err := h.recService.LatestRecommendation(c.Request.Context(), userID, slot)
	if err != nil {
		if errors.Is(err, service.ErrNoRecommendation) {
			failJSON(c, http.StatusNotFound, msgNoRecentText)
			return
		}
		log.Printf("[Recommendation] cache read failed: %v", err)
		failJSON(c, http.StatusInternalServerError, msgUnavailable)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"meal_type":      slot,
		"recommendation": text,
	})
}
