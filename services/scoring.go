package services

import (
	"time"

	"github.com/crewfit/fitcircle/models"
)

// ScoreCaps carries the scoring denominators. The stock challenge is
// 12 weeks at 38 points per week (7 days x 4 categories + 10 meeting
// bonus = 38, 12 x 38 = 456). The caps are configuration, not derived
// from a challenge's actual dates; a challenge of a different length
// needs its own cap values or the percentage math goes wrong.
type ScoreCaps struct {
	WeeklyCap       int
	OverallCap      int
	AttendanceBonus int
}

// DefaultScoreCaps returns the stock 12-week challenge caps.
func DefaultScoreCaps() ScoreCaps {
	return ScoreCaps{WeeklyCap: 38, OverallCap: 456, AttendanceBonus: 10}
}

// Metrics is the derived scoring view for one user at one reference
// instant. Percentages are intentionally unclamped: negative
// adjustments push them below zero and bonus adjustments above 100.
// Display rounding is the caller's job; nothing here is stored.
type Metrics struct {
	TotalPoints     int     `json:"total_points"`
	TodayPoints     int     `json:"today_points"`
	WeekDaily       int     `json:"week_daily_points"`
	WeekAttendance  int     `json:"week_attendance_points"`
	WeekAdjustments int     `json:"week_adjustment_points"`
	ThisWeekTotal   int     `json:"this_week_total"`
	WeeklyPercent   float64 `json:"weekly_percent"`
	OverallPercent  float64 `json:"overall_percent"`
	WeeklyCap       int     `json:"weekly_cap"`
	OverallCap      int     `json:"overall_cap"`
}

// DailyPoints returns the points earned by a single check-in: one per
// true habit flag, 0..4.
func DailyPoints(c models.CheckIn) int {
	pts := 0
	if c.Nutrition {
		pts++
	}
	if c.Hydration {
		pts++
	}
	if c.Movement {
		pts++
	}
	if c.Scripture {
		pts++
	}
	return pts
}

// ComputeMetrics derives day/week/overall totals from a user's full
// event history. It is a pure function of its inputs; callers load the
// rows and resolve group/challenge membership beforehand.
//
// The "today" bucket counts check-in points only. The week buckets
// filter check-ins and adjustments by their own timestamp against
// [StartOfAppWeek(now), EndOfAppWeek(now)) and attendance rows by
// week anchor equality, then sum independently.
func ComputeMetrics(checkins []models.CheckIn, attendance []models.WeeklyAttendance, adjustments []models.PointAdjustment, now time.Time, caps ScoreCaps) Metrics {
	dayStart, dayEnd := StartOfAppDay(now), EndOfAppDay(now)
	weekStart, weekEnd := StartOfAppWeek(now), EndOfAppWeek(now)
	weekAnchor := WeekKey(now)

	m := Metrics{WeeklyCap: caps.WeeklyCap, OverallCap: caps.OverallCap}

	for _, c := range checkins {
		pts := DailyPoints(c)
		m.TotalPoints += pts
		if InWindow(c.Date, dayStart, dayEnd) {
			m.TodayPoints += pts
		}
		if InWindow(c.Date, weekStart, weekEnd) {
			m.WeekDaily += pts
		}
	}

	for _, a := range attendance {
		if !a.Attended {
			continue
		}
		m.TotalPoints += caps.AttendanceBonus
		if AppDayKey(a.WeekStart).Equal(weekAnchor) {
			m.WeekAttendance += caps.AttendanceBonus
		}
	}

	for _, adj := range adjustments {
		m.TotalPoints += adj.PointsDelta
		if InWindow(adj.Date, weekStart, weekEnd) {
			m.WeekAdjustments += adj.PointsDelta
		}
	}

	m.ThisWeekTotal = m.WeekDaily + m.WeekAttendance + m.WeekAdjustments
	if caps.WeeklyCap > 0 {
		m.WeeklyPercent = float64(m.ThisWeekTotal) / float64(caps.WeeklyCap) * 100
	}
	if caps.OverallCap > 0 {
		m.OverallPercent = float64(m.TotalPoints) / float64(caps.OverallCap) * 100
	}
	return m
}
