package services

import (
	"testing"
	"time"
)

func TestStartAndEndOfAppDay(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		name      string
		in        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			"afternoon",
			time.Date(2025, 3, 12, 15, 30, 0, 0, loc),
			time.Date(2025, 3, 12, 0, 1, 0, 0, loc),
			time.Date(2025, 3, 13, 0, 0, 0, 0, loc),
		},
		{
			"exactly at anchor",
			time.Date(2025, 3, 12, 0, 1, 0, 0, loc),
			time.Date(2025, 3, 12, 0, 1, 0, 0, loc),
			time.Date(2025, 3, 13, 0, 0, 0, 0, loc),
		},
		{
			"just before midnight",
			time.Date(2025, 3, 12, 23, 59, 59, 0, loc),
			time.Date(2025, 3, 12, 0, 1, 0, 0, loc),
			time.Date(2025, 3, 13, 0, 0, 0, 0, loc),
		},
	}
	for _, c := range cases {
		if got := StartOfAppDay(c.in); !got.Equal(c.wantStart) {
			t.Errorf("%s: StartOfAppDay=%v, want %v", c.name, got, c.wantStart)
		}
		if got := EndOfAppDay(c.in); !got.Equal(c.wantEnd) {
			t.Errorf("%s: EndOfAppDay=%v, want %v", c.name, got, c.wantEnd)
		}
	}
}

func TestStartOfAppWeek(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2025, 3, 10, 0, 1, 0, 0, loc)
	cases := []struct {
		name string
		in   time.Time
	}{
		{"monday itself", time.Date(2025, 3, 10, 9, 0, 0, 0, loc)},
		{"wednesday", time.Date(2025, 3, 12, 15, 30, 0, 0, loc)},
		{"saturday", time.Date(2025, 3, 15, 23, 0, 0, 0, loc)},
		{"sunday is day seven", time.Date(2025, 3, 16, 12, 0, 0, 0, loc)},
	}
	for _, c := range cases {
		if got := StartOfAppWeek(c.in); !got.Equal(monday) {
			t.Errorf("%s: StartOfAppWeek=%v, want %v", c.name, got, monday)
		}
	}
}

func TestEndOfAppWeek(t *testing.T) {
	in := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	want := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	if got := EndOfAppWeek(in); !got.Equal(want) {
		t.Fatalf("EndOfAppWeek=%v, want %v", got, want)
	}
}

func TestStartOfAppWeekIdempotent(t *testing.T) {
	for day := 0; day < 14; day++ {
		in := time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC).AddDate(0, 0, day)
		once := StartOfAppWeek(in)
		twice := StartOfAppWeek(once)
		if !once.Equal(twice) {
			t.Fatalf("re-anchoring moved the week start: %v -> %v (input %v)", once, twice, in)
		}
	}
}

func TestWeekWindowContainsInstant(t *testing.T) {
	// Any instant at or after the day anchor lies inside its own week
	// window.
	for hour := 1; hour < 24; hour++ {
		for day := 0; day < 7; day++ {
			in := time.Date(2025, 3, 10, hour, 7, 0, 0, time.UTC).AddDate(0, 0, day)
			if !InWindow(in, StartOfAppWeek(in), EndOfAppWeek(in)) {
				t.Fatalf("instant %v outside its own week window [%v, %v)", in, StartOfAppWeek(in), EndOfAppWeek(in))
			}
		}
	}
}

func TestAppDayKey(t *testing.T) {
	a := time.Date(2025, 3, 12, 0, 1, 0, 0, time.FixedZone("CST", -6*3600))
	b := time.Date(2025, 3, 12, 23, 59, 0, 0, time.FixedZone("CST", -6*3600))
	if !SameAppDay(a, b) {
		t.Fatalf("expected %v and %v to share an app day", a, b)
	}
	if SameAppDay(a, b.AddDate(0, 0, 1)) {
		t.Fatalf("expected different app days across calendar dates")
	}
	if got := AppDayKey(a); got.Location() != time.UTC {
		t.Fatalf("AppDayKey location = %v, want UTC", got.Location())
	}
}
