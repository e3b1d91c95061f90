package services

import (
	"math"
	"testing"
	"time"

	"github.com/crewfit/fitcircle/models"
)

func TestDailyPoints(t *testing.T) {
	cases := []struct {
		c    models.CheckIn
		want int
	}{
		{models.CheckIn{}, 0},
		{models.CheckIn{Nutrition: true}, 1},
		{models.CheckIn{Nutrition: true, Hydration: true}, 2},
		{models.CheckIn{Nutrition: true, Hydration: true, Movement: true}, 3},
		{models.CheckIn{Nutrition: true, Hydration: true, Movement: true, Scripture: true}, 4},
		{models.CheckIn{Movement: true, Scripture: true}, 2},
	}
	for _, c := range cases {
		got := DailyPoints(c.c)
		if got != c.want {
			t.Fatalf("DailyPoints=%d, want %d", got, c.want)
		}
		if got < 0 || got > 4 {
			t.Fatalf("DailyPoints=%d out of [0,4]", got)
		}
	}
}

// refNow is Wednesday inside the 2025-03-10 app week.
var refNow = time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)

func checkinAt(ts time.Time, flags int) models.CheckIn {
	return models.CheckIn{
		Date:       ts,
		CheckinDay: AppDayKey(ts),
		Nutrition:  flags >= 1,
		Hydration:  flags >= 2,
		Movement:   flags >= 3,
		Scripture:  flags >= 4,
	}
}

func TestComputeMetricsWeekBuckets(t *testing.T) {
	checkins := []models.CheckIn{
		checkinAt(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC), 4),  // Monday this week
		checkinAt(time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), 2),  // today
		checkinAt(time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), 3),  // last week
		checkinAt(time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC), 1), // long past
	}
	attendance := []models.WeeklyAttendance{
		{WeekStart: WeekKey(refNow), Attended: true},
		{WeekStart: WeekKey(refNow.AddDate(0, 0, -7)), Attended: true},
		{WeekStart: WeekKey(refNow.AddDate(0, 0, -14)), Attended: false},
	}
	adjustments := []models.PointAdjustment{
		{Date: time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC), PointsDelta: 5},
		{Date: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), PointsDelta: -2},
	}

	m := ComputeMetrics(checkins, attendance, adjustments, refNow, DefaultScoreCaps())

	if want := 4 + 2 + 3 + 1 + 10 + 10 + 5 - 2; m.TotalPoints != want {
		t.Fatalf("TotalPoints=%d, want %d", m.TotalPoints, want)
	}
	if m.TodayPoints != 2 {
		t.Fatalf("TodayPoints=%d, want 2", m.TodayPoints)
	}
	if m.WeekDaily != 6 {
		t.Fatalf("WeekDaily=%d, want 6", m.WeekDaily)
	}
	if m.WeekAttendance != 10 {
		t.Fatalf("WeekAttendance=%d, want 10", m.WeekAttendance)
	}
	if m.WeekAdjustments != 5 {
		t.Fatalf("WeekAdjustments=%d, want 5", m.WeekAdjustments)
	}
	if want := 6 + 10 + 5; m.ThisWeekTotal != want {
		t.Fatalf("ThisWeekTotal=%d, want %d", m.ThisWeekTotal, want)
	}
}

func TestComputeMetricsPerfectMondayPercent(t *testing.T) {
	checkins := []models.CheckIn{
		checkinAt(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC), 4),
	}
	m := ComputeMetrics(checkins, nil, nil, refNow, DefaultScoreCaps())
	want := 4.0 / 38.0 * 100
	if math.Abs(m.WeeklyPercent-want) > 1e-9 {
		t.Fatalf("WeeklyPercent=%v, want %v", m.WeeklyPercent, want)
	}
}

func TestComputeMetricsAdjustmentOnly(t *testing.T) {
	base := ComputeMetrics(nil, nil, nil, refNow, DefaultScoreCaps())
	adjusted := ComputeMetrics(nil, nil, []models.PointAdjustment{
		{Date: refNow, PointsDelta: -5, Reason: "late proof"},
	}, refNow, DefaultScoreCaps())

	if adjusted.TotalPoints != base.TotalPoints-5 {
		t.Fatalf("TotalPoints=%d, want %d", adjusted.TotalPoints, base.TotalPoints-5)
	}
	if adjusted.WeeklyPercent >= 0 {
		t.Fatalf("WeeklyPercent=%v, expected negative (unclamped)", adjusted.WeeklyPercent)
	}
}

func TestComputeMetricsPercentagesUnclamped(t *testing.T) {
	adjustments := []models.PointAdjustment{
		{Date: refNow, PointsDelta: 500, Reason: "bonus"},
	}
	m := ComputeMetrics(nil, nil, adjustments, refNow, DefaultScoreCaps())
	if m.WeeklyPercent <= 100 {
		t.Fatalf("WeeklyPercent=%v, expected >100 (unclamped)", m.WeeklyPercent)
	}
	if m.OverallPercent <= 100 {
		t.Fatalf("OverallPercent=%v, expected >100 (unclamped)", m.OverallPercent)
	}
}

func TestComputeMetricsTodayExcludesAttendanceAndAdjustments(t *testing.T) {
	attendance := []models.WeeklyAttendance{{WeekStart: WeekKey(refNow), Attended: true}}
	adjustments := []models.PointAdjustment{{Date: refNow, PointsDelta: 7, Reason: "bonus"}}
	m := ComputeMetrics(nil, attendance, adjustments, refNow, DefaultScoreCaps())
	if m.TodayPoints != 0 {
		t.Fatalf("TodayPoints=%d, want 0 (daily check-in points only)", m.TodayPoints)
	}
}

func TestComputeMetricsConfigurableCaps(t *testing.T) {
	caps := ScoreCaps{WeeklyCap: 19, OverallCap: 228, AttendanceBonus: 5}
	attendance := []models.WeeklyAttendance{{WeekStart: WeekKey(refNow), Attended: true}}
	m := ComputeMetrics(nil, attendance, nil, refNow, caps)
	if m.WeekAttendance != 5 {
		t.Fatalf("WeekAttendance=%d, want configured bonus 5", m.WeekAttendance)
	}
	want := 5.0 / 19.0 * 100
	if math.Abs(m.WeeklyPercent-want) > 1e-9 {
		t.Fatalf("WeeklyPercent=%v, want %v", m.WeeklyPercent, want)
	}
}
