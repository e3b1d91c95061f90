package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewfit/fitcircle/config"
	"github.com/crewfit/fitcircle/models"
	"github.com/crewfit/fitcircle/services"
	"github.com/crewfit/fitcircle/utils"
)

// MetricsController serves derived scoring views: personal metrics,
// leaderboards, group analytics, badges, body metrics and meal
// suggestions. Nothing here writes scores; every number is recomputed
// from the event tables on read.
type MetricsController struct {
	db        *gorm.DB
	badges    *services.BadgeEvaluator
	suggester services.MealSuggester
	mealCache *services.MealCache
}

// NewMetricsController creates a MetricsController.
func NewMetricsController(db *gorm.DB, suggester services.MealSuggester) *MetricsController {
	return &MetricsController{
		db:        db,
		badges:    services.NewBadgeEvaluator(db),
		suggester: suggester,
		mealCache: services.NewMealCache(),
	}
}

// GetMyMetrics returns the caller's current scoring view.
func (mc *MetricsController) GetMyMetrics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	m, err := resolveMembership(mc.db, userID)
	if err != nil {
		respondMembershipError(ctx, err)
		return
	}

	checkins, attendance, adjustments, err := loadUserEvents(mc.db, userID, m.Challenge.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load scoring events")
		return
	}

	metrics := services.ComputeMetrics(checkins, attendance, adjustments, time.Now(), scoreCaps())
	utils.Success(ctx, metrics)
}

// GetGroupLeaderboard returns the ranked leaderboard for a group over
// period "week" (default) or "overall". Members can view their own
// group; staff can view any.
func (mc *MetricsController) GetGroupLeaderboard(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	groupID, err := parseGroupParam(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid group id")
		return
	}

	period := strings.TrimSpace(ctx.DefaultQuery("period", services.PeriodWeek))
	if period != services.PeriodWeek && period != services.PeriodOverall {
		utils.Error(ctx, http.StatusBadRequest, 40042, "period must be week or overall")
		return
	}

	if !mc.canViewGroup(ctx, userID, groupID) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not a member of this group")
		return
	}

	cacheKey := fmt.Sprintf("cache:leaderboard:group:%d:%s", groupID, period)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var group models.Group
	if err := mc.db.First(&group, groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load group")
		return
	}
	if group.ChallengeID == nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, errNoChallenge.Error())
		return
	}

	var members []models.User
	if err := mc.db.Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load members")
		return
	}

	caps := scoreCaps()
	now := time.Now()
	entries := make([]services.LeaderboardEntry, 0, len(members))
	for _, member := range members {
		checkins, attendance, adjustments, err := loadUserEvents(mc.db, member.ID, *group.ChallengeID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load scoring events")
			return
		}
		metrics := services.ComputeMetrics(checkins, attendance, adjustments, now, caps)
		entry := services.LeaderboardEntry{
			UserID:      member.ID,
			Username:    member.Username,
			DisplayName: member.DisplayName,
			AvatarURL:   member.AvatarURL,
		}
		if period == services.PeriodWeek {
			entry.Points = metrics.ThisWeekTotal
			entry.MaxPoints = caps.WeeklyCap
		} else {
			entry.Points = metrics.TotalPoints
			entry.MaxPoints = caps.OverallCap
		}
		entries = append(entries, entry)
	}

	payload := gin.H{
		"group_id": groupID,
		"period":   period,
		"entries":  services.RankLeaderboard(entries),
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}

// GetGroupAnalytics returns participation rates, averages, top
// performers and the follow-up list for a group. Gated by the
// analytics.view operation upstream.
func (mc *MetricsController) GetGroupAnalytics(ctx *gin.Context) {
	groupID, err := parseGroupParam(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid group id")
		return
	}

	cacheKey := fmt.Sprintf("cache:analytics:group:%d", groupID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var group models.Group
	if err := mc.db.First(&group, groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load group")
		return
	}
	if group.ChallengeID == nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, errNoChallenge.Error())
		return
	}

	var members []models.User
	if err := mc.db.Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load members")
		return
	}

	caps := scoreCaps()
	now := time.Now()
	stats := make([]services.MemberStat, 0, len(members))
	for _, member := range members {
		checkins, attendance, adjustments, err := loadUserEvents(mc.db, member.ID, *group.ChallengeID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load scoring events")
			return
		}
		metrics := services.ComputeMetrics(checkins, attendance, adjustments, now, caps)

		stat := services.MemberStat{
			UserID:      member.ID,
			Username:    member.Username,
			DisplayName: member.DisplayName,
			WeekPoints:  metrics.ThisWeekTotal,
			TotalPoints: metrics.TotalPoints,
		}
		weekStart, weekEnd := services.StartOfAppWeek(now), services.EndOfAppWeek(now)
		for _, c := range checkins {
			if services.InWindow(c.Date, weekStart, weekEnd) {
				stat.WeekCheckins++
			}
			if stat.LastCheckinAt == nil || c.Date.After(*stat.LastCheckinAt) {
				t := c.Date
				stat.LastCheckinAt = &t
			}
		}
		stats = append(stats, stat)
	}

	var attendedThisWeek int64
	if err := mc.db.Model(&models.WeeklyAttendance{}).
		Where("group_id = ? AND week_start = ? AND attended = ?", groupID, services.WeekKey(now), true).
		Count(&attendedThisWeek).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to count attendance")
		return
	}

	analytics := services.ComputeGroupAnalytics(stats, int(attendedThisWeek), now, caps, config.Get().FollowUpIdleDays)
	payload := gin.H{
		"group_id":  groupID,
		"analytics": analytics,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}

// CheckBadges re-evaluates badge rules for the caller and returns any
// newly awarded badges.
func (mc *MetricsController) CheckBadges(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	awarded, err := mc.badges.CheckAndAward(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to evaluate badges")
		return
	}

	utils.Success(ctx, gin.H{"new_badges": awarded})
}

// ListMyBadges returns the caller's earned badges in award order.
func (mc *MetricsController) ListMyBadges(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var badges []models.UserBadge
	if err := mc.db.Where("user_id = ?", userID).Order("awarded_at ASC").Find(&badges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to list badges")
		return
	}

	utils.Success(ctx, gin.H{"badges": badges})
}

// CreateBodyMetric records a body composition entry for the caller and
// re-runs badge evaluation since weight history feeds the weight-loss
// badge.
func (mc *MetricsController) CreateBodyMetric(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		RecordedAt string   `json:"recorded_at"` // optional RFC3339, defaults to now
		WeightLbs  float64  `json:"weight_lbs" binding:"required,gt=0"`
		BodyFatPct *float64 `json:"body_fat_pct"`
		MuscleLbs  *float64 `json:"muscle_lbs"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid request payload")
		return
	}

	recordedAt := time.Now()
	if strings.TrimSpace(req.RecordedAt) != "" {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(req.RecordedAt))
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40044, "invalid recorded_at, expected RFC3339")
			return
		}
		recordedAt = t
	}

	metric := models.BodyMetric{
		UserID:     userID,
		RecordedAt: recordedAt,
		WeightLbs:  req.WeightLbs,
		BodyFatPct: req.BodyFatPct,
		MuscleLbs:  req.MuscleLbs,
		Source:     "manual",
	}
	if err := mc.db.Create(&metric).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to record body metric")
		return
	}

	newBadges, err := mc.badges.CheckAndAward(userID)
	if err != nil {
		utils.Sugar.Warnf("badge evaluation failed user=%d: %v", userID, err)
	}

	utils.Success(ctx, gin.H{
		"metric":     metric,
		"new_badges": newBadges,
	})
}

// ListMyBodyMetrics returns the caller's body metric history, oldest
// first.
func (mc *MetricsController) ListMyBodyMetrics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var metrics []models.BodyMetric
	if err := mc.db.Where("user_id = ?", userID).Order("recorded_at ASC").Find(&metrics).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50048, "failed to list body metrics")
		return
	}

	utils.Success(ctx, gin.H{"metrics": metrics})
}

// GetMealSuggestion returns a meal suggestion derived from the caller's
// recent check-ins, computed at most once per user per app day.
func (mc *MetricsController) GetMealSuggestion(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	if cached, ok := mc.mealCache.Get(userID, now); ok {
		utils.Success(ctx, gin.H{"suggestion": cached, "cached": true})
		return
	}

	var recent []models.CheckIn
	if err := mc.db.Where("user_id = ?", userID).Order("checkin_day DESC").Limit(7).Find(&recent).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50049, "failed to load recent check-ins")
		return
	}

	suggestion, err := mc.suggester.SuggestMeals(ctx.Request.Context(), recent)
	if err != nil {
		if errors.Is(err, services.ErrLLMUnavailable) {
			utils.Error(ctx, http.StatusServiceUnavailable, 50350, "meal suggestions are not configured")
			return
		}
		utils.Error(ctx, http.StatusBadGateway, 50250, "meal suggestion failed")
		return
	}

	mc.mealCache.Set(userID, now, suggestion)
	utils.Success(ctx, gin.H{"suggestion": suggestion, "cached": false})
}

func parseGroupParam(ctx *gin.Context) (uint, error) {
	id, err := strconv.Atoi(strings.TrimSpace(ctx.Param("id")))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid group id")
	}
	return uint(id), nil
}

// canViewGroup reports whether the caller may read group-scoped views:
// their own group always, any group for staff roles.
func (mc *MetricsController) canViewGroup(ctx *gin.Context, userID, groupID uint) bool {
	role := getRole(ctx)
	if role == models.RoleAdmin || role == models.RoleLeader {
		return true
	}
	var user models.User
	if err := mc.db.First(&user, userID).Error; err != nil {
		return false
	}
	return user.GroupID != nil && *user.GroupID == groupID
}
