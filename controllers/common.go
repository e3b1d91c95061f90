package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewfit/fitcircle/config"
	"github.com/crewfit/fitcircle/middleware"
	"github.com/crewfit/fitcircle/models"
	"github.com/crewfit/fitcircle/services"
	"github.com/crewfit/fitcircle/utils"
)

// Precondition errors: data-setup problems surfaced verbatim to the
// caller, never retried.
var (
	errNoGroup     = errors.New("user must be assigned to a group")
	errNoChallenge = errors.New("group must be assigned to a challenge")
)

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func getRole(ctx *gin.Context) string {
	return ctx.GetString(middleware.ContextRoleKey)
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page, pageSize := 1, 20
	if v := strings.TrimSpace(pageStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(sizeStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}

// membership bundles the resolved scoring scope for a user. Every
// scoring operation resolves this first and fails fast on the
// precondition errors.
type membership struct {
	User      models.User
	Group     models.Group
	Challenge models.Challenge
}

func resolveMembership(db *gorm.DB, userID uint) (*membership, error) {
	var m membership
	if err := db.First(&m.User, userID).Error; err != nil {
		return nil, err
	}
	if m.User.GroupID == nil {
		return nil, errNoGroup
	}
	if err := db.First(&m.Group, *m.User.GroupID).Error; err != nil {
		return nil, err
	}
	if m.Group.ChallengeID == nil {
		return nil, errNoChallenge
	}
	if err := db.First(&m.Challenge, *m.Group.ChallengeID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func scoreCaps() services.ScoreCaps {
	cfg := config.Get()
	return services.ScoreCaps{
		WeeklyCap:       cfg.WeeklyCap,
		OverallCap:      cfg.OverallCap,
		AttendanceBonus: cfg.AttendanceBonus,
	}
}

// loadUserEvents reads the full event history the scoring engine
// consumes: all check-ins for the user plus attendance and adjustments
// scoped to the challenge.
func loadUserEvents(db *gorm.DB, userID, challengeID uint) ([]models.CheckIn, []models.WeeklyAttendance, []models.PointAdjustment, error) {
	var checkins []models.CheckIn
	if err := db.Where("user_id = ?", userID).Find(&checkins).Error; err != nil {
		return nil, nil, nil, err
	}
	var attendance []models.WeeklyAttendance
	if err := db.Where("user_id = ? AND challenge_id = ?", userID, challengeID).Find(&attendance).Error; err != nil {
		return nil, nil, nil, err
	}
	var adjustments []models.PointAdjustment
	if err := db.Where("user_id = ?", userID).Find(&adjustments).Error; err != nil {
		return nil, nil, nil, err
	}
	return checkins, attendance, adjustments, nil
}

// invalidateScoringCaches drops cached leaderboard/analytics views for
// a group after any write that changes scores.
func invalidateScoringCaches(groupID uint) {
	key := strconv.Itoa(int(groupID))
	go func() {
		invalidate := []string{
			"cache:leaderboard:group:" + key + ":",
			"cache:analytics:group:" + key,
		}
		for _, prefix := range invalidate {
			utils.InvalidateByPrefix(prefix)
		}
	}()
}
