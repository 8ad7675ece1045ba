package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mealdiary/backend/internal/dateutil"
	"github.com/mealdiary/backend/internal/models"
)

// The prompt builder renders a user's profile and meal history into the
// natural-language prompt sent to the chat-completion upstream. It is pure
// text assembly: no network, no storage, deterministic for a given input.

const notSet = "未设置"

var activityLevelLabels = map[string]string{
	models.ActivitySedentary:  "久坐不动（几乎不运动）",
	models.ActivityLight:      "轻度活动（每周运动 1-3 天）",
	models.ActivityModerate:   "中度活动（每周运动 3-5 天）",
	models.ActivityActive:     "高度活动（每周运动 6-7 天）",
	models.ActivityVeryActive: "非常活跃（每天运动或体力劳动）",
}

func activityLevelLabel(level *string) string {
	if level == nil {
		return notSet
	}
	if label, ok := activityLevelLabels[*level]; ok {
		return label
	}
	return notSet
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// BuildProfileSection renders the user profile. Every optional field that
// is missing renders the explicit 未设置 marker so the model (and anyone
// reading the prompt) can tell an incomplete profile from a zero value.
func BuildProfileSection(profile *models.UserProfile) string {
	displayName := notSet
	if profile.DisplayName != nil && *profile.DisplayName != "" {
		displayName = *profile.DisplayName
	}
	height := notSet
	if profile.Height != nil {
		height = formatNumber(*profile.Height) + " cm"
	}
	weight := notSet
	if profile.Weight != nil {
		weight = formatNumber(*profile.Weight) + " kg"
	}
	calorieTarget := notSet
	if profile.DailyCalorieTarget != nil {
		calorieTarget = fmt.Sprintf("%d kcal", *profile.DailyCalorieTarget)
	}

	lines := []string{
		"## 用户档案信息",
		"",
		"姓名: " + displayName,
		"身高: " + height,
		"体重: " + weight,
		"活动水平: " + activityLevelLabel(profile.ActivityLevel),
		"每日卡路里目标: " + calorieTarget,
		"",
		"### 饮食目标",
	}

	if len(profile.DietGoals) > 0 {
		for _, goal := range profile.DietGoals {
			lines = append(lines, "- "+goal)
		}
	} else {
		lines = append(lines, "- "+notSet)
	}

	lines = append(lines, "", "### 饮食限制（重要：推荐时必须严格遵守）")
	if len(profile.DietaryRestrictions) > 0 {
		for _, restriction := range profile.DietaryRestrictions {
			lines = append(lines, "- "+restriction+"（绝对不能包含相关食材）")
		}
	} else {
		lines = append(lines, "- 无")
	}

	lines = append(lines, "", "### 过敏原（重要：推荐时必须完全避免）")
	if len(profile.Allergies) > 0 {
		for _, allergy := range profile.Allergies {
			lines = append(lines, "- "+allergy+"（绝对不能包含此类食物）")
		}
	} else {
		lines = append(lines, "- 无")
	}

	return strings.Join(lines, "\n")
}

// DateGroup is one Beijing calendar date with its meals in source order.
type DateGroup struct {
	Label string
	Meals []models.MealLog
}

// GroupMealsByDate groups meals by their Beijing calendar date. Dates keep
// first-seen order and meals keep source order within each date, so the
// rendered history follows the order the records were fetched in.
func GroupMealsByDate(meals []models.MealLog) []DateGroup {
	var groups []DateGroup
	index := make(map[string]int)

	for _, meal := range meals {
		label := dateutil.DateLabel(meal.EatenAt)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DateGroup{Label: label})
		}
		groups[i].Meals = append(groups[i].Meals, meal)
	}

	return groups
}

// GroupMealsBySlot groups meals by slot. Iterate the result with
// models.MealTypeOrder for the canonical display order.
func GroupMealsBySlot(meals []models.MealLog) map[models.MealType][]models.MealLog {
	grouped := make(map[models.MealType][]models.MealLog)
	for _, meal := range meals {
		grouped[meal.MealType] = append(grouped[meal.MealType], meal)
	}
	return grouped
}

// DistinctDayCount returns how many Beijing calendar dates the meals span.
func DistinctDayCount(meals []models.MealLog) int {
	seen := make(map[string]struct{})
	for _, meal := range meals {
		seen[dateutil.DateLabel(meal.EatenAt)] = struct{}{}
	}
	return len(seen)
}

// buildRecentMealsSection renders the historical record. The exact number
// of distinct days is always stated; with no records it renders an explicit
// sentence instead of an empty section so the model never sees a silently
// empty history.
func buildRecentMealsSection(meals []models.MealLog) string {
	if len(meals) == 0 {
		return "## 饮食记录\n\n暂无记录，请先记录一些饮食数据以便AI提供更准确的建议。"
	}

	daysCount := DistinctDayCount(meals)

	lines := []string{
		"## 饮食记录",
		"",
		fmt.Sprintf("*注：目前有 %d 天的饮食记录，共 %d 餐。建议记录更多天数的饮食数据以获得更准确的个性化建议。*", daysCount, len(meals)),
		"",
	}

	for _, group := range GroupMealsByDate(meals) {
		lines = append(lines, "### "+group.Label, "")
		for _, meal := range group.Meals {
			content := meal.Content
			if content == "" {
				content = "无"
			}
			lines = append(lines,
				fmt.Sprintf("**%s** %s", meal.MealType.Label(), dateutil.TimeLabel(meal.EatenAt)),
				"- 描述: "+content,
				"")
		}
	}

	return strings.Join(lines, "\n")
}

// buildTodayMealsSection renders today's meals grouped by slot in
// canonical slot order.
func buildTodayMealsSection(meals []models.MealLog) string {
	if len(meals) == 0 {
		return "## 今日饮食\n\n今天还没有记录任何饮食。"
	}

	lines := []string{
		"## 今日饮食",
		"",
		fmt.Sprintf("*注：今天已记录 %d 餐。*", len(meals)),
		"",
	}

	grouped := GroupMealsBySlot(meals)
	for _, slot := range models.MealTypeOrder {
		slotMeals := grouped[slot]
		if len(slotMeals) == 0 {
			continue
		}
		lines = append(lines, "### "+slot.Label(), "")
		for _, meal := range slotMeals {
			content := meal.Content
			if content == "" {
				content = "无描述"
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", dateutil.TimeLabel(meal.EatenAt), content))
			if meal.Price > 0 {
				lines = append(lines, fmt.Sprintf("  价格: ¥%.2f", meal.Price))
			}
			if meal.Location != "" {
				lines = append(lines, "  地点: "+meal.Location)
			}
			if len(meal.Tags) > 0 {
				lines = append(lines, "  标签: "+strings.Join(meal.Tags, ", "))
			}
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

// BuildMealRecommendationPrompt composes the full recommendation prompt:
// profile, the last 7 days of records, today's meals, then the instruction
// block naming the target slot. A slot outside the six known values is a
// caller bug and fails fast.
func BuildMealRecommendationPrompt(profile *models.UserProfile, recentMeals, todayMeals []models.MealLog, targetSlot models.MealType) (string, error) {
	if !targetSlot.Valid() {
		return "", fmt.Errorf("unknown meal type %q", targetSlot)
	}

	userSection := BuildProfileSection(profile)
	recentSection := buildRecentMealsSection(recentMeals)
	todaySection := buildTodayMealsSection(todayMeals)
	slotLabel := targetSlot.Label()

	requestSection := strings.Join([]string{
		"## 食谱推荐请求",
		"",
		"你是一位专业的营养师，擅长制定科学、健康的减脂饮食计划。",
		"",
		"请根据我的饮食历史、热量摄入趋势、营养均衡情况以及减脂目标，",
		fmt.Sprintf("为我推荐**今天%s**的具体食谱。", slotLabel),
		"",
		"**重要：请重点参考\"今日饮食\"部分，根据今天已经摄入的食物来调整推荐！**",
		"",
		"## 推荐要求",
		"",
		"### 热量控制",
		"- 根据我的减脂目标，估算合理的热量范围",
		"- **重点考虑我今日已摄入的热量**，确保全天热量不超标",
		"- 如果今天已经摄入较多，推荐低热量或清淡的菜品",
		"- 明确标注这餐的推荐热量范围",
		"",
		"### 营养比例",
		"- 明确主食、蛋白质、蔬菜的比例建议",
		"- 确保营养均衡，符合减脂需求",
		"- **根据今日已摄入的营养状况调整**，避免营养重复或缺失",
		"",
		"### 食材选择",
		"- 使用常见的、容易购买的食材",
		"- 考虑我的饮食限制和过敏原",
		"- 避免高糖、高油、深加工食品",
		"- 推荐适合外卖或简单搭配的菜品",
		"",
		"## 输出格式",
		"",
		"请按以下格式输出：",
		"",
		"### 第一部分：今日饮食总结",
		"- 总结今天已经摄入的食物",
		"- 分析今日营养摄入情况（蛋白质、碳水、脂肪等）",
		"- 指出今日饮食的优缺点",
		"",
		"### 第二部分：近期饮食分析（7天）",
		"简要分析我过去7天的饮食情况，如果不足7天就是我还没有记录够，包括：",
		"- 热量摄入趋势",
		"- 营养均衡状况",
		"- 存在的问题和改进方向",
		"",
		fmt.Sprintf("### 第三部分：%s推荐", slotLabel),
		"",
		"**推荐菜品**：xxx",
		"",
		"**主要食材**：",
		"- 主食：xxx",
		"- 蛋白质：xxx",
		"- 蔬菜：xxx",
		"",
		"**营养组成**：",
		"- 热量：约 xxx kcal",
		"- 蛋白质：约 xx 克",
		"- 碳水化合物：约 xx 克",
		"- 脂肪：约 xx 克",
		"",
		"**营养亮点**：xxx",
		"",
		"### 第四部分：额外建议",
		"- 2-3条实用的饮食建议",
		"- 注意事项或风险提示",
		"",
		"## 注意事项",
		"- 如果信息不足，请明确指出需要补充的信息",
		"- 建议要具体、实用，避免空泛",
		"- 充分考虑我的个人情况和偏好，不要出现我不吃的",
		"- 使用Markdown格式输出",
	}, "\n")

	return userSection + "\n\n" + recentSection + "\n\n" + todaySection + "\n\n" + requestSection, nil
}

// BuildTodaySummaryPrompt composes the daily-summary prompt used by the
// "今日总结" feature: profile, today's meals, then a summary request.
func BuildTodaySummaryPrompt(profile *models.UserProfile, todayMeals []models.MealLog) string {
	userSection := BuildProfileSection(profile)
	todaySection := buildTodayMealsSection(todayMeals)

	requestSection := strings.Join([]string{
		"## 今日饮食总结请求",
		"",
		"你是一位专业的营养师，擅长分析饮食记录并提供健康建议。",
		"",
		"请根据我今天的饮食记录，为我提供一份详细的今日饮食总结。",
		"",
		"## 输出要求",
		"",
		"### 第一部分：今日饮食概览",
		"- 今日共记录了几餐",
		"- 按餐次列出所有食物（包括时间、描述、价格、地点）",
		"",
		"### 第二部分：热量分析",
		"- 估算今日总热量摄入",
		"- 与每日目标热量对比（如果有设置）",
		"",
		"### 第三部分：营养分析",
		"- 分析蛋白质、碳水、脂肪的摄入情况",
		"- 指出营养亮点和不足",
		"",
		"### 第四部分：改进建议",
		"- 2-3条具体的饮食改进建议",
		"- 明天可以尝试的食物搭配",
		"",
		"## 注意事项",
		"- 如果今天没有记录，请明确指出并建议开始记录",
		"- 建议要具体、实用，避免空泛",
		"- 使用Markdown格式输出",
	}, "\n")

	return userSection + "\n\n" + todaySection + "\n\n" + requestSection
}
