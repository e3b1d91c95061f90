package services

import (
	"sort"
	"time"
)

// Follow-up reasons. A member appears at most once in the follow-up
// list: the idle check runs first, and only when it does not trigger
// is the low-score check evaluated.
const (
	FollowUpIdle     = "no_recent_checkin"
	FollowUpLowScore = "low_weekly_score"
)

// MemberStat is the per-member input to the group analytics view,
// assembled by the caller from each member's computed metrics.
type MemberStat struct {
	UserID        uint       `json:"user_id"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name"`
	WeekPoints    int        `json:"week_points"`
	TotalPoints   int        `json:"total_points"`
	WeekCheckins  int        `json:"week_checkins"`
	LastCheckinAt *time.Time `json:"last_checkin_at,omitempty"`
}

// FollowUp flags a member a leader should reach out to.
type FollowUp struct {
	UserID        uint       `json:"user_id"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name"`
	Reason        string     `json:"reason"`
	LastCheckinAt *time.Time `json:"last_checkin_at,omitempty"`
	WeekPoints    int        `json:"week_points"`
}

// GroupAnalytics is the derived read-only view for a group.
type GroupAnalytics struct {
	MemberCount       int          `json:"member_count"`
	ParticipationRate float64      `json:"participation_rate"`
	AttendanceRate    float64      `json:"attendance_rate"`
	AvgWeeklyPoints   float64      `json:"avg_weekly_points"`
	AvgOverallPoints  float64      `json:"avg_overall_points"`
	TopPerformers     []MemberStat `json:"top_performers"`
	NeedsFollowUp     []FollowUp   `json:"needs_follow_up"`
}

// ComputeGroupAnalytics derives participation/attendance rates,
// averages, the weekly top three, and the follow-up list from
// per-member stats. attendedThisWeek is the count of attended
// attendance rows anchored to the current app week; idleDays is the
// days-since-last-check-in threshold (stock value 3).
func ComputeGroupAnalytics(stats []MemberStat, attendedThisWeek int, now time.Time, caps ScoreCaps, idleDays int) GroupAnalytics {
	out := GroupAnalytics{MemberCount: len(stats)}
	if len(stats) == 0 {
		return out
	}

	active := 0
	weekSum, totalSum := 0, 0
	for _, s := range stats {
		if s.WeekCheckins > 0 {
			active++
		}
		weekSum += s.WeekPoints
		totalSum += s.TotalPoints
	}

	n := float64(len(stats))
	out.ParticipationRate = float64(active) / n
	out.AttendanceRate = float64(attendedThisWeek) / n
	out.AvgWeeklyPoints = float64(weekSum) / n
	out.AvgOverallPoints = float64(totalSum) / n
	out.TopPerformers = topPerformers(stats, 3)
	out.NeedsFollowUp = followUps(stats, now, caps, idleDays)
	return out
}

func topPerformers(stats []MemberStat, limit int) []MemberStat {
	ranked := make([]MemberStat, len(stats))
	copy(ranked, stats)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].WeekPoints != ranked[j].WeekPoints {
			return ranked[i].WeekPoints > ranked[j].WeekPoints
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func followUps(stats []MemberStat, now time.Time, caps ScoreCaps, idleDays int) []FollowUp {
	if idleDays <= 0 {
		idleDays = 3
	}
	idleCutoff := now.AddDate(0, 0, -idleDays)
	halfCap := caps.WeeklyCap / 2

	var out []FollowUp
	for _, s := range stats {
		entry := FollowUp{
			UserID:        s.UserID,
			Username:      s.Username,
			DisplayName:   s.DisplayName,
			LastCheckinAt: s.LastCheckinAt,
			WeekPoints:    s.WeekPoints,
		}
		switch {
		// Idle at exactly idleDays counts: the cutoff is inclusive.
		case s.LastCheckinAt == nil || !s.LastCheckinAt.After(idleCutoff):
			entry.Reason = FollowUpIdle
		case s.WeekPoints < halfCap:
			entry.Reason = FollowUpLowScore
		default:
			continue
		}
		out = append(out, entry)
	}
	return out
}
