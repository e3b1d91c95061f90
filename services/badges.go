package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/crewfit/fitcircle/models"
	"github.com/crewfit/fitcircle/utils"
)

// Badge types, in fixed evaluation order. Awarded lists preserve this
// order so callers can surface the first entry in a notification.
const (
	BadgeFirstStep     = "first_step"
	BadgeWeekWarrior   = "week_warrior"
	BadgePerfectWeek   = "perfect_week"
	Badge30DayChampion = "30_day_champion"
	Badge10PoundsDown  = "10_pounds_down"
)

// BadgeOrder is the fixed rule evaluation order.
var BadgeOrder = []string{
	BadgeFirstStep,
	BadgeWeekWarrior,
	BadgePerfectWeek,
	Badge30DayChampion,
	Badge10PoundsDown,
}

// EligibleBadges evaluates every badge rule against a user's history
// and returns the types the user currently qualifies for, in rule
// order. checkins must be sorted by date descending and metrics by
// recorded time ascending.
//
// perfect_week looks at the 7 most recent check-in records, not 7
// consecutive calendar days; a submission gap does not reset
// eligibility. That matches the shipped behavior and is kept on
// purpose.
func EligibleBadges(checkins []models.CheckIn, metrics []models.BodyMetric) []string {
	var eligible []string
	for _, badgeType := range BadgeOrder {
		ok := false
		switch badgeType {
		case BadgeFirstStep:
			ok = len(checkins) >= 1
		case BadgeWeekWarrior:
			ok = len(checkins) >= 7
		case BadgePerfectWeek:
			ok = perfectRecentWeek(checkins)
		case Badge30DayChampion:
			ok = len(checkins) >= 30
		case Badge10PoundsDown:
			ok = tenPoundsDown(metrics)
		}
		if ok {
			eligible = append(eligible, badgeType)
		}
	}
	return eligible
}

func perfectRecentWeek(checkins []models.CheckIn) bool {
	if len(checkins) < 7 {
		return false
	}
	for _, c := range checkins[:7] {
		if DailyPoints(c) != 4 {
			return false
		}
	}
	return true
}

func tenPoundsDown(metrics []models.BodyMetric) bool {
	if len(metrics) < 2 {
		return false
	}
	earliest := metrics[0]
	latest := metrics[len(metrics)-1]
	return earliest.WeightLbs-latest.WeightLbs >= 10
}

// BadgeEvaluator loads a user's history and persists newly earned
// badges.
type BadgeEvaluator struct {
	db *gorm.DB
}

// NewBadgeEvaluator creates a BadgeEvaluator.
func NewBadgeEvaluator(db *gorm.DB) *BadgeEvaluator {
	return &BadgeEvaluator{db: db}
}

// CheckAndAward evaluates all badge rules for the user and inserts any
// badge not yet held, returning the newly awarded rows in rule order.
// The unique index on (user_id, badge_type) backs the at-most-once
// guarantee; a duplicate-key insert from a racing evaluation is
// treated as already-awarded, not as an error.
func (e *BadgeEvaluator) CheckAndAward(userID uint) ([]models.UserBadge, error) {
	var checkins []models.CheckIn
	if err := e.db.Where("user_id = ?", userID).Order("date DESC").Find(&checkins).Error; err != nil {
		return nil, err
	}

	var metrics []models.BodyMetric
	if err := e.db.Where("user_id = ?", userID).Order("recorded_at ASC").Find(&metrics).Error; err != nil {
		return nil, err
	}

	var existing []models.UserBadge
	if err := e.db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(existing))
	for _, b := range existing {
		held[b.BadgeType] = true
	}

	var awarded []models.UserBadge
	for _, badgeType := range EligibleBadges(checkins, metrics) {
		if held[badgeType] {
			continue
		}
		badge := models.UserBadge{
			UserID:    userID,
			BadgeType: badgeType,
			AwardedAt: time.Now(),
		}
		if err := e.db.Create(&badge).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				continue
			}
			return awarded, err
		}
		awarded = append(awarded, badge)
	}
	return awarded, nil
}
