package services

import (
	"testing"
	"time"

	"github.com/crewfit/fitcircle/models"
)

func perfectCheckins(n int, start time.Time, gapDays int) []models.CheckIn {
	// Newest first, matching the evaluator's load order.
	out := make([]models.CheckIn, 0, n)
	for i := 0; i < n; i++ {
		ts := start.AddDate(0, 0, -i*gapDays)
		out = append(out, models.CheckIn{
			Date:       ts,
			CheckinDay: AppDayKey(ts),
			Nutrition:  true,
			Hydration:  true,
			Movement:   true,
			Scripture:  true,
		})
	}
	return out
}

func TestEligibleBadgesThresholds(t *testing.T) {
	start := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		checkins []models.CheckIn
		want     []string
	}{
		{"none", nil, nil},
		{"single", perfectCheckins(1, start, 1), []string{BadgeFirstStep}},
		{"six", perfectCheckins(6, start, 1), []string{BadgeFirstStep}},
		{"seven perfect", perfectCheckins(7, start, 1),
			[]string{BadgeFirstStep, BadgeWeekWarrior, BadgePerfectWeek}},
		{"thirty perfect", perfectCheckins(30, start, 1),
			[]string{BadgeFirstStep, BadgeWeekWarrior, BadgePerfectWeek, Badge30DayChampion}},
	}
	for _, c := range cases {
		got := EligibleBadges(c.checkins, nil)
		if len(got) != len(c.want) {
			t.Fatalf("%s: EligibleBadges=%v, want %v", c.name, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%s: EligibleBadges=%v, want %v (order matters)", c.name, got, c.want)
			}
		}
	}
}

func TestPerfectWeekUsesRecentRecordsNotCalendarDays(t *testing.T) {
	start := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)

	// Submission gaps do not reset eligibility: seven perfect records
	// spread over three weeks still qualify.
	gapped := perfectCheckins(7, start, 3)
	if got := EligibleBadges(gapped, nil); !contains(got, BadgePerfectWeek) {
		t.Fatalf("expected perfect_week for 7 perfect records with gaps, got %v", got)
	}

	// One imperfect record inside the most recent seven disqualifies,
	// even with perfect records further back.
	mixed := perfectCheckins(10, start, 1)
	mixed[3].Scripture = false
	if got := EligibleBadges(mixed, nil); contains(got, BadgePerfectWeek) {
		t.Fatalf("expected no perfect_week with an imperfect recent record, got %v", got)
	}

	// An imperfect record older than the most recent seven does not.
	older := perfectCheckins(10, start, 1)
	older[8].Movement = false
	if got := EligibleBadges(older, nil); !contains(got, BadgePerfectWeek) {
		t.Fatalf("expected perfect_week when the imperfect record is outside the last 7, got %v", got)
	}
}

func TestTenPoundsDown(t *testing.T) {
	at := func(day int, weight float64) models.BodyMetric {
		return models.BodyMetric{
			RecordedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, day),
			WeightLbs:  weight,
		}
	}
	cases := []struct {
		name    string
		metrics []models.BodyMetric
		want    bool
	}{
		{"no entries", nil, false},
		{"single entry", []models.BodyMetric{at(0, 200)}, false},
		{"exactly ten down", []models.BodyMetric{at(0, 200), at(30, 190)}, true},
		{"nine down", []models.BodyMetric{at(0, 200), at(30, 191)}, false},
		{"weight regained in between", []models.BodyMetric{at(0, 200), at(15, 205), at(30, 189)}, true},
		{"gained overall", []models.BodyMetric{at(0, 180), at(30, 195)}, false},
	}
	for _, c := range cases {
		got := EligibleBadges(nil, c.metrics)
		if has := contains(got, Badge10PoundsDown); has != c.want {
			t.Fatalf("%s: 10_pounds_down=%t, want %t", c.name, has, c.want)
		}
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
