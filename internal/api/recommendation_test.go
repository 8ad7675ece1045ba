package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mealdiary/backend/config"
	"github.com/mealdiary/backend/internal/models"
	"github.com/mealdiary/backend/internal/service"
	"github.com/mealdiary/backend/internal/types"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserProfile{}, &models.MealLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// testAuth injects a fixed user id the way the auth middleware would.
func testAuth(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func sseFrame(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`+"\n\n", content)
}

type recommendationFixture struct {
	router   *gin.Engine
	db       *gorm.DB
	userID   uuid.UUID
	upstream *httptest.Server
	profiles *service.ProfileService
	meals    *service.MealService
}

func setupRecommendationTest(t *testing.T, upstream http.HandlerFunc) *recommendationFixture {
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	ts := httptest.NewServer(upstream)
	t.Cleanup(ts.Close)

	recSvc, err := service.NewRecommendationService(config.AIConfig{
		BaseURL:        ts.URL,
		Model:          "test-model",
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)

	profileSvc := service.NewProfileService(db)
	mealSvc := service.NewMealService(db)
	handler := NewRecommendationHandler(profileSvc, mealSvc, recSvc)

	userID := uuid.New()
	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(testAuth(userID))
	handler.RegisterRoutes(group)

	return &recommendationFixture{
		router:   router,
		db:       db,
		userID:   userID,
		upstream: ts,
		profiles: profileSvc,
		meals:    mealSvc,
	}
}

func (f *recommendationFixture) createProfile(t *testing.T) {
	t.Helper()
	name := "测试用户"
	_, err := f.profiles.UpsertProfile(context.Background(), f.userID, &types.UpdateProfileRequest{
		DisplayName: &name,
		Allergies:   []string{"花生"},
	})
	require.NoError(t, err)
}

func TestRecommendStreamsDeltas(t *testing.T) {
	var gotReq service.ChatRequest
	fixture := setupRecommendationTest(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, sseFrame("A")+sseFrame("B")+sseFrame("C")+"data: [DONE]\n")
	})
	fixture.createProfile(t)

	body := strings.NewReader(`{"meal_type":"lunch"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-recommendation", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
	assert.Equal(t, "ABC", w.Body.String())

	// The prompt sent upstream reflects the user's data and target slot
	require.Len(t, gotReq.Messages, 1)
	prompt := gotReq.Messages[0].Content
	assert.Contains(t, prompt, "测试用户")
	assert.Contains(t, prompt, "花生（绝对不能包含此类食物）")
	assert.Contains(t, prompt, "为我推荐**今天午餐**的具体食谱。")
}

func TestRecommendDefaultsToDinner(t *testing.T) {
	var gotReq service.ChatRequest
	fixture := setupRecommendationTest(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, sseFrame("好的")+"data: [DONE]\n")
	})
	fixture.createProfile(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-recommendation", nil)
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "为我推荐**今天晚餐**的具体食谱。")
}

func TestRecommendRejectsUnknownSlot(t *testing.T) {
	fixture := setupRecommendationTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})
	fixture.createProfile(t)

	body := strings.NewReader(`{"meal_type":"brunch"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-recommendation", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "brunch")
}

func TestRecommendWithoutProfile(t *testing.T) {
	fixture := setupRecommendationTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-recommendation", nil)
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "请先设置个人档案信息", resp["error"])
}

func TestRecommendUpstreamErrorNeverReachesClient(t *testing.T) {
	fixture := setupRecommendationTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"quota exceeded for key sk-secret"}`)
	})
	fixture.createProfile(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-recommendation", nil)
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.NotContains(t, w.Body.String(), "sk-secret")
	assert.NotContains(t, w.Body.String(), "quota exceeded")
}

func TestRecommendTimeoutMessage(t *testing.T) {
	fixture := setupRecommendationTest(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can detect the client disconnect;
		// with an unread body the request context is never cancelled and
		// the httptest server's Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	fixture.createProfile(t)

	// Rebuild with a short timeout
	recSvc, err := service.NewRecommendationService(config.AIConfig{
		BaseURL:        fixture.upstream.URL,
		Model:          "test-model",
		APIKey:         "test-key",
		RequestTimeout: 100 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	handler := NewRecommendationHandler(fixture.profiles, fixture.meals, recSvc)
	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(testAuth(fixture.userID))
	handler.RegisterRoutes(group)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-recommendation", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "请求超时，请重试", resp["error"])
}

func TestLatestWithoutCache(t *testing.T) {
	fixture := setupRecommendationTest(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai-recommendation/latest?meal_type=lunch", nil)
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummarizeStreamsTodaySummary(t *testing.T) {
	var gotReq service.ChatRequest
	fixture := setupRecommendationTest(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, sseFrame("总结")+"data: [DONE]\n")
	})
	fixture.createProfile(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-summary", nil)
	w := httptest.NewRecorder()
	fixture.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "总结", w.Body.String())
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "## 今日饮食总结请求")
}
