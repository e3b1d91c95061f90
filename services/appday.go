package services

import "time"

// App days run [00:01 today, 00:00 tomorrow) and app weeks run
// [Monday 00:01, next Monday 00:00) in the timestamp's own location.
// The 00:01 anchor keeps exact-midnight timestamps from straddling two
// periods. Every period-membership test in the scoring path goes
// through these functions.

// StartOfAppDay returns 00:01:00 of the calendar date containing t.
func StartOfAppDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 1, 0, 0, t.Location())
}

// EndOfAppDay returns 00:00:00 of the calendar date after t.
func EndOfAppDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

// StartOfAppWeek returns 00:01:00 of the Monday on or before t.
// Sunday counts as day 7 of the running week, not day 0 of a new one.
func StartOfAppWeek(t time.Time) time.Time {
	day := StartOfAppDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return day.AddDate(0, 0, -offset)
}

// EndOfAppWeek returns 00:00:00 of the Monday after the week
// containing t.
func EndOfAppWeek(t time.Time) time.Time {
	start := StartOfAppWeek(t)
	y, m, d := start.AddDate(0, 0, 7).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, start.Location())
}

// AppDayKey returns the date-only value stored in DATE columns
// (CheckIn.CheckinDay, WeeklyAttendance.WeekStart). Keys are
// normalized to UTC midnight so equality is a pure calendar-date
// comparison. The database connection pins loc=UTC so these values
// reach DATE columns unshifted; see config.buildDSN.
func AppDayKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekKey returns the date key of the Monday anchoring t's app week.
func WeekKey(t time.Time) time.Time {
	return AppDayKey(StartOfAppWeek(t))
}

// InWindow reports whether ts falls in [start, end).
func InWindow(ts, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}

// SameAppDay reports whether a and b belong to the same app day.
func SameAppDay(a, b time.Time) bool {
	return AppDayKey(a).Equal(AppDayKey(b))
}
