package services

import (
	"testing"
	"time"
)

func TestComputeGroupAnalyticsRates(t *testing.T) {
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	recent := now.Add(-12 * time.Hour)
	stats := []MemberStat{
		{UserID: 1, WeekPoints: 30, TotalPoints: 120, WeekCheckins: 5, LastCheckinAt: &recent},
		{UserID: 2, WeekPoints: 20, TotalPoints: 80, WeekCheckins: 4, LastCheckinAt: &recent},
		{UserID: 3, WeekPoints: 0, TotalPoints: 40, WeekCheckins: 0, LastCheckinAt: &recent},
		{UserID: 4, WeekPoints: 10, TotalPoints: 0, WeekCheckins: 2, LastCheckinAt: &recent},
	}

	a := ComputeGroupAnalytics(stats, 3, now, DefaultScoreCaps(), 3)

	if a.MemberCount != 4 {
		t.Fatalf("MemberCount=%d, want 4", a.MemberCount)
	}
	if a.ParticipationRate != 0.75 {
		t.Fatalf("ParticipationRate=%v, want 0.75", a.ParticipationRate)
	}
	if a.AttendanceRate != 0.75 {
		t.Fatalf("AttendanceRate=%v, want 0.75", a.AttendanceRate)
	}
	if a.AvgWeeklyPoints != 15 {
		t.Fatalf("AvgWeeklyPoints=%v, want 15", a.AvgWeeklyPoints)
	}
	if a.AvgOverallPoints != 60 {
		t.Fatalf("AvgOverallPoints=%v, want 60", a.AvgOverallPoints)
	}
	if len(a.TopPerformers) != 3 {
		t.Fatalf("TopPerformers len=%d, want 3", len(a.TopPerformers))
	}
	if a.TopPerformers[0].UserID != 1 || a.TopPerformers[1].UserID != 2 || a.TopPerformers[2].UserID != 4 {
		t.Fatalf("TopPerformers order wrong: %+v", a.TopPerformers)
	}
}

func TestFollowUpReasonsAreMutuallyExclusive(t *testing.T) {
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	stale := now.AddDate(0, 0, -5)
	stats := []MemberStat{
		// Idle and low score: idle wins because it is checked first.
		{UserID: 1, WeekPoints: 2, WeekCheckins: 1, LastCheckinAt: &stale},
		// Active but under half the weekly cap.
		{UserID: 2, WeekPoints: 10, WeekCheckins: 3, LastCheckinAt: &recent},
		// Never checked in at all: treated as idle.
		{UserID: 3, WeekPoints: 0, WeekCheckins: 0, LastCheckinAt: nil},
		// Healthy on both counts.
		{UserID: 4, WeekPoints: 25, WeekCheckins: 6, LastCheckinAt: &recent},
	}

	a := ComputeGroupAnalytics(stats, 0, now, DefaultScoreCaps(), 3)

	want := map[uint]string{
		1: FollowUpIdle,
		2: FollowUpLowScore,
		3: FollowUpIdle,
	}
	if len(a.NeedsFollowUp) != len(want) {
		t.Fatalf("NeedsFollowUp=%+v, want %d entries", a.NeedsFollowUp, len(want))
	}
	for _, f := range a.NeedsFollowUp {
		if want[f.UserID] != f.Reason {
			t.Fatalf("user %d: reason=%q, want %q", f.UserID, f.Reason, want[f.UserID])
		}
	}
}

func TestFollowUpIdleIncludesExactThreshold(t *testing.T) {
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	exactly := now.AddDate(0, 0, -3)
	justUnder := exactly.Add(time.Minute)
	stats := []MemberStat{
		// Last check-in exactly three days ago: idle.
		{UserID: 7, WeekPoints: 30, WeekCheckins: 3, LastCheckinAt: &exactly},
		// A minute inside the window, healthy score: no follow-up.
		{UserID: 8, WeekPoints: 30, WeekCheckins: 3, LastCheckinAt: &justUnder},
	}

	a := ComputeGroupAnalytics(stats, 0, now, DefaultScoreCaps(), 3)

	if len(a.NeedsFollowUp) != 1 {
		t.Fatalf("NeedsFollowUp=%+v, want exactly the boundary member", a.NeedsFollowUp)
	}
	if f := a.NeedsFollowUp[0]; f.UserID != 7 || f.Reason != FollowUpIdle {
		t.Fatalf("boundary member flagged wrong: %+v", f)
	}
}

func TestComputeGroupAnalyticsEmptyGroup(t *testing.T) {
	a := ComputeGroupAnalytics(nil, 0, time.Now(), DefaultScoreCaps(), 3)
	if a.MemberCount != 0 || a.ParticipationRate != 0 || len(a.NeedsFollowUp) != 0 {
		t.Fatalf("empty group analytics not zeroed: %+v", a)
	}
}
