package analytics

import (
	"time"

	"github.com/pictoria/pictoria/internal/model"
)

// DefaultActivityDays is the trailing window used when no start date is
// supplied: 7 daily buckets ending today.
const DefaultActivityDays = 7

// dateOnly truncates a time to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyActivity builds one zero-initialized bucket per UTC calendar day
// in the effective range and increments the bucket matching each
// record's creation date. The effective range ends at the filter's end
// date (or now) and starts at the filter's start date (or six days
// before the end, yielding exactly seven buckets). Zero-count days are
// kept; records outside the range are silently ignored.
func DailyActivity(records []*model.ImageRecord, f model.AnalyticsFilter, now time.Time) []model.DayCount {
	endRef := dateOnly(now)
	if bound, ok := parseFilterDate(f.EndDate); ok {
		endRef = dateOnly(bound.at)
	}

	startRef := endRef.AddDate(0, 0, -(DefaultActivityDays - 1))
	if bound, ok := parseFilterDate(f.StartDate); ok {
		startRef = dateOnly(bound.at)
	}

	if startRef.After(endRef) {
		return []model.DayCount{}
	}

	// Buckets in ascending date order.
	var dates []string
	index := make(map[string]int)
	for day := startRef; !day.After(endRef); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		index[key] = len(dates)
		dates = append(dates, key)
	}

	counts := make([]int, len(dates))
	for _, rec := range records {
		key := dateOnly(rec.CreatedAt).Format("2006-01-02")
		if i, ok := index[key]; ok {
			counts[i]++
		}
	}

	out := make([]model.DayCount, len(dates))
	for i, date := range dates {
		out[i] = model.DayCount{Date: date, Count: counts[i]}
	}
	return out
}

// HourlyActivity builds the fixed 24-bucket hour-of-day histogram. The
// hour is taken from the record timestamp in its own offset, matching
// how the records were captured. Always returns 24 entries.
func HourlyActivity(records []*model.ImageRecord) []model.HourCount {
	var counts [24]int
	for _, rec := range records {
		counts[rec.CreatedAt.Hour()]++
	}

	out := make([]model.HourCount, 24)
	for hour := 0; hour < 24; hour++ {
		out[hour] = model.HourCount{Hour: hour, Count: counts[hour]}
	}
	return out
}
