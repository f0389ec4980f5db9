package domain

import (
	"fmt"
	"time"
)

// WeekKey returns the "YYYY-Www" bucket key for t, computed in UTC.
// The week number is ceil((zero-based day of year + weekday of Jan 1 + 1) / 7),
// so week 1 always contains Jan 1 and weeks start on Sunday.
func WeekKey(t time.Time) string {
	t = t.UTC()
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := t.YearDay() - 1
	week := (days + int(jan1.Weekday()) + 1 + 6) / 7
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

// WeekRange returns every week key from start's week through end's week, inclusive,
// without gaps. Keys are produced by walking day by day, so a week split by a
// year boundary yields both of its keys.
func WeekRange(start, end time.Time) []string {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}

	var weeks []string
	last := ""
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if key := WeekKey(d); key != last {
			weeks = append(weeks, key)
			last = key
		}
	}
	return weeks
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
