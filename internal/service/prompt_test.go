package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealdiary/backend/internal/dateutil"
	"github.com/mealdiary/backend/internal/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }

func beijingTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, dateutil.Beijing)
}

func TestBuildProfileSectionEmptyProfile(t *testing.T) {
	section := BuildProfileSection(&models.UserProfile{})

	assert.Contains(t, section, "姓名: 未设置")
	assert.Contains(t, section, "身高: 未设置")
	assert.Contains(t, section, "体重: 未设置")
	assert.Contains(t, section, "活动水平: 未设置")
	assert.Contains(t, section, "每日卡路里目标: 未设置")

	// Empty restriction and allergy lists render an explicit "none" marker
	assert.Contains(t, section, "### 饮食限制（重要：推荐时必须严格遵守）\n- 无")
	assert.Contains(t, section, "### 过敏原（重要：推荐时必须完全避免）\n- 无")
	assert.Contains(t, section, "### 饮食目标\n- 未设置")
}

func TestBuildProfileSectionFullProfile(t *testing.T) {
	profile := &models.UserProfile{
		DisplayName:         strPtr("小王"),
		Height:              f64Ptr(175.5),
		Weight:              f64Ptr(70),
		ActivityLevel:       strPtr(models.ActivityModerate),
		DietGoals:           models.JSONBStringArray{"减脂", "增肌"},
		DietaryRestrictions: models.JSONBStringArray{"海鲜"},
		Allergies:           models.JSONBStringArray{"花生"},
		DailyCalorieTarget:  intPtr(1800),
	}

	section := BuildProfileSection(profile)

	assert.Contains(t, section, "姓名: 小王")
	assert.Contains(t, section, "身高: 175.5 cm")
	assert.Contains(t, section, "体重: 70 kg")
	assert.Contains(t, section, "活动水平: 中度活动（每周运动 3-5 天）")
	assert.Contains(t, section, "每日卡路里目标: 1800 kcal")
	assert.Contains(t, section, "- 减脂")
	assert.Contains(t, section, "- 海鲜（绝对不能包含相关食材）")
	assert.Contains(t, section, "- 花生（绝对不能包含此类食物）")
}

func TestBuildProfileSectionUnknownActivityLevel(t *testing.T) {
	section := BuildProfileSection(&models.UserProfile{
		ActivityLevel: strPtr("extreme"),
	})
	assert.Contains(t, section, "活动水平: 未设置")
}

func TestGroupMealsByDateKeepsOrder(t *testing.T) {
	meals := []models.MealLog{
		{MealType: models.MealTypeBreakfast, EatenAt: beijingTime(2025, 6, 2, 8, 0)},
		{MealType: models.MealTypeLunch, EatenAt: beijingTime(2025, 6, 2, 12, 0)},
		{MealType: models.MealTypeBreakfast, EatenAt: beijingTime(2025, 6, 3, 8, 30)},
		{MealType: models.MealTypeDinner, EatenAt: beijingTime(2025, 6, 2, 19, 0)},
	}

	groups := GroupMealsByDate(meals)
	require.Len(t, groups, 2)
	assert.Equal(t, "2025/06/02", groups[0].Label)
	assert.Equal(t, "2025/06/03", groups[1].Label)
	assert.Len(t, groups[0].Meals, 3)
	assert.Len(t, groups[1].Meals, 1)

	// Within a date, source order is preserved
	assert.Equal(t, models.MealTypeBreakfast, groups[0].Meals[0].MealType)
	assert.Equal(t, models.MealTypeLunch, groups[0].Meals[1].MealType)
	assert.Equal(t, models.MealTypeDinner, groups[0].Meals[2].MealType)
}

func TestGroupMealsByDateUsesBeijingDayBoundary(t *testing.T) {
	// 2025-06-02 23:30 Beijing and 2025-06-03 00:30 Beijing are different
	// days even though they are 1h apart.
	meals := []models.MealLog{
		{EatenAt: beijingTime(2025, 6, 2, 23, 30).UTC()},
		{EatenAt: beijingTime(2025, 6, 3, 0, 30).UTC()},
	}

	groups := GroupMealsByDate(meals)
	require.Len(t, groups, 2)
	assert.Equal(t, 2, DistinctDayCount(meals))
}

func TestGroupingIsIdempotent(t *testing.T) {
	meals := []models.MealLog{
		{MealType: models.MealTypeDinner, EatenAt: beijingTime(2025, 6, 2, 19, 0)},
		{MealType: models.MealTypeBreakfast, EatenAt: beijingTime(2025, 6, 3, 8, 0)},
		{MealType: models.MealTypeLunch, EatenAt: beijingTime(2025, 6, 2, 12, 0)},
		{MealType: models.MealTypeSnack, EatenAt: beijingTime(2025, 6, 3, 15, 0)},
	}

	once := GroupMealsByDate(meals)

	// Flatten and regroup; the result must be identical
	var flattened []models.MealLog
	for _, group := range once {
		flattened = append(flattened, group.Meals...)
	}
	twice := GroupMealsByDate(flattened)
	assert.Equal(t, once, twice)

	// Same for slot grouping
	bySlot := GroupMealsBySlot(meals)
	var flatSlots []models.MealLog
	for _, slot := range models.MealTypeOrder {
		flatSlots = append(flatSlots, bySlot[slot]...)
	}
	assert.Equal(t, bySlot, GroupMealsBySlot(flatSlots))
}

func TestDistinctDayCount(t *testing.T) {
	assert.Equal(t, 0, DistinctDayCount(nil))

	meals := []models.MealLog{
		{EatenAt: beijingTime(2025, 6, 2, 8, 0)},
		{EatenAt: beijingTime(2025, 6, 2, 12, 0)},
		{EatenAt: beijingTime(2025, 6, 4, 8, 0)},
	}
	assert.Equal(t, 2, DistinctDayCount(meals))
}

func TestBuildMealRecommendationPromptEmptyHistory(t *testing.T) {
	prompt, err := BuildMealRecommendationPrompt(&models.UserProfile{}, nil, nil, models.MealTypeDinner)
	require.NoError(t, err)

	assert.Contains(t, prompt, "暂无记录，请先记录一些饮食数据以便AI提供更准确的建议。")
	assert.Contains(t, prompt, "今天还没有记录任何饮食。")
	assert.Contains(t, prompt, "为我推荐**今天晚餐**的具体食谱。")
	assert.Contains(t, prompt, "### 第三部分：晚餐推荐")
}

func TestBuildMealRecommendationPromptStatesExactDayCount(t *testing.T) {
	meals := []models.MealLog{
		{MealType: models.MealTypeBreakfast, Content: "燕麦粥", EatenAt: beijingTime(2025, 6, 1, 8, 0)},
		{MealType: models.MealTypeLunch, Content: "鸡胸肉沙拉", EatenAt: beijingTime(2025, 6, 1, 12, 0)},
		{MealType: models.MealTypeDinner, Content: "清蒸鱼", EatenAt: beijingTime(2025, 6, 2, 19, 0)},
	}

	prompt, err := BuildMealRecommendationPrompt(&models.UserProfile{}, meals, nil, models.MealTypeLunch)
	require.NoError(t, err)

	assert.Contains(t, prompt, "目前有 2 天的饮食记录，共 3 餐。")
	assert.Contains(t, prompt, "### 2025/06/01")
	assert.Contains(t, prompt, "### 2025/06/02")
	assert.Contains(t, prompt, "**早餐** 08:00")
	assert.Contains(t, prompt, "- 描述: 燕麦粥")
}

func TestBuildMealRecommendationPromptTodaySection(t *testing.T) {
	today := []models.MealLog{
		{MealType: models.MealTypeLunch, Content: "麻辣烫", EatenAt: beijingTime(2025, 6, 5, 12, 30),
			Price: 25.5, Location: "公司楼下", Tags: models.JSONBStringArray{"外卖"}},
		{MealType: models.MealTypeBreakfast, Content: "豆浆油条", EatenAt: beijingTime(2025, 6, 5, 8, 0)},
	}

	prompt, err := BuildMealRecommendationPrompt(&models.UserProfile{}, nil, today, models.MealTypeDinner)
	require.NoError(t, err)

	assert.Contains(t, prompt, "*注：今天已记录 2 餐。*")
	assert.Contains(t, prompt, "价格: ¥25.50")
	assert.Contains(t, prompt, "地点: 公司楼下")
	assert.Contains(t, prompt, "标签: 外卖")

	// Slots render in canonical order regardless of source order
	breakfastIdx := strings.Index(prompt, "### 早餐")
	lunchIdx := strings.Index(prompt, "### 午餐")
	require.GreaterOrEqual(t, breakfastIdx, 0)
	require.GreaterOrEqual(t, lunchIdx, 0)
	assert.Less(t, breakfastIdx, lunchIdx)
}

func TestBuildMealRecommendationPromptRejectsUnknownSlot(t *testing.T) {
	_, err := BuildMealRecommendationPrompt(&models.UserProfile{}, nil, nil, "brunch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"brunch"`)
}

func TestBuildMealRecommendationPromptAllergyScenario(t *testing.T) {
	// A user allergic to peanuts with no history: the prompt must carry
	// the literal body metrics, the activity label, and the allergy
	// warning, and must not fabricate any history.
	profile := &models.UserProfile{
		Height:        f64Ptr(170),
		Weight:        f64Ptr(65),
		ActivityLevel: strPtr(models.ActivityModerate),
		Allergies:     models.JSONBStringArray{"花生"},
	}

	prompt, err := BuildMealRecommendationPrompt(profile, nil, nil, models.MealTypeLunch)
	require.NoError(t, err)

	assert.Contains(t, prompt, "身高: 170 cm")
	assert.Contains(t, prompt, "体重: 65 kg")
	assert.Contains(t, prompt, "中度活动（每周运动 3-5 天）")
	assert.Contains(t, prompt, "- 花生（绝对不能包含此类食物）")
	assert.Contains(t, prompt, "暂无记录，请先记录一些饮食数据以便AI提供更准确的建议。")
	assert.NotContains(t, prompt, "目前有")
}

func TestBuildMealRecommendationPromptAllSlots(t *testing.T) {
	for _, slot := range models.MealTypeOrder {
		prompt, err := BuildMealRecommendationPrompt(&models.UserProfile{}, nil, nil, slot)
		require.NoError(t, err, "slot %s", slot)
		assert.Contains(t, prompt, fmt.Sprintf("### 第三部分：%s推荐", slot.Label()))
	}
}

func TestBuildTodaySummaryPrompt(t *testing.T) {
	today := []models.MealLog{
		{MealType: models.MealTypeBreakfast, Content: "鸡蛋", EatenAt: beijingTime(2025, 6, 5, 8, 0)},
	}

	prompt := BuildTodaySummaryPrompt(&models.UserProfile{}, today)

	assert.Contains(t, prompt, "## 今日饮食总结请求")
	assert.Contains(t, prompt, "*注：今天已记录 1 餐。*")
	assert.Contains(t, prompt, "- 08:00: 鸡蛋")
}

func TestBuildTodaySummaryPromptEmptyDay(t *testing.T) {
	prompt := BuildTodaySummaryPrompt(&models.UserProfile{}, nil)
	assert.Contains(t, prompt, "今天还没有记录任何饮食。")
}
