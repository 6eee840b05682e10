package analytics

import (
	"testing"

	"github.com/pictoria/pictoria/internal/model"
)

func TestDailyActivity_DefaultWindow(t *testing.T) {
	t.Parallel()

	now := at("2026-01-15T12:00:00Z")
	records := []*model.ImageRecord{
		{CreatedAt: at("2026-01-15T08:00:00Z")},
		{CreatedAt: at("2026-01-15T09:00:00Z")},
		{CreatedAt: at("2026-01-12T23:00:00Z")},
		{CreatedAt: at("2026-01-01T10:00:00Z")}, // outside the window
	}

	got := DailyActivity(records, model.AnalyticsFilter{}, now)
	if len(got) != DefaultActivityDays {
		t.Fatalf("expected %d buckets, got %d", DefaultActivityDays, len(got))
	}
	if got[0].Date != "2026-01-09" || got[len(got)-1].Date != "2026-01-15" {
		t.Errorf("unexpected window bounds: %s .. %s", got[0].Date, got[len(got)-1].Date)
	}

	counts := make(map[string]int)
	for _, day := range got {
		counts[day.Date] = day.Count
	}
	if counts["2026-01-15"] != 2 {
		t.Errorf("expected 2 on the last day, got %d", counts["2026-01-15"])
	}
	if counts["2026-01-12"] != 1 {
		t.Errorf("expected 1 on 2026-01-12, got %d", counts["2026-01-12"])
	}

	// Zero-count days stay in the series.
	if counts["2026-01-10"] != 0 {
		t.Errorf("expected zero bucket for 2026-01-10, got %d", counts["2026-01-10"])
	}
}

func TestDailyActivity_ExplicitRange(t *testing.T) {
	t.Parallel()

	now := at("2026-06-01T00:00:00Z")
	f := model.AnalyticsFilter{StartDate: "2026-01-01", EndDate: "2026-01-03"}
	records := []*model.ImageRecord{
		{CreatedAt: at("2026-01-02T05:00:00Z")},
	}

	got := DailyActivity(records, f, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(got))
	}
	want := []model.DayCount{
		{Date: "2026-01-01", Count: 0},
		{Date: "2026-01-02", Count: 1},
		{Date: "2026-01-03", Count: 0},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestDailyActivity_InvertedRange(t *testing.T) {
	t.Parallel()

	f := model.AnalyticsFilter{StartDate: "2026-01-10", EndDate: "2026-01-03"}
	got := DailyActivity(nil, f, at("2026-01-15T00:00:00Z"))
	if len(got) != 0 {
		t.Errorf("expected empty series for inverted range, got %d buckets", len(got))
	}
}

func TestHourlyActivity(t *testing.T) {
	t.Parallel()

	records := []*model.ImageRecord{
		{CreatedAt: at("2026-01-01T09:15:00Z")},
		{CreatedAt: at("2026-01-02T09:45:00Z")},
		{CreatedAt: at("2026-01-03T23:59:59Z")},
	}

	got := HourlyActivity(records)
	if len(got) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(got))
	}
	for hour, bucket := range got {
		if bucket.Hour != hour {
			t.Fatalf("bucket %d carries hour %d", hour, bucket.Hour)
		}
	}
	if got[9].Count != 2 {
		t.Errorf("expected 2 at hour 9, got %d", got[9].Count)
	}
	if got[23].Count != 1 {
		t.Errorf("expected 1 at hour 23, got %d", got[23].Count)
	}
	if got[0].Count != 0 {
		t.Errorf("expected 0 at hour 0, got %d", got[0].Count)
	}
}

func TestHourlyActivity_Empty(t *testing.T) {
	t.Parallel()

	got := HourlyActivity(nil)
	if len(got) != 24 {
		t.Fatalf("expected 24 buckets for empty input, got %d", len(got))
	}
	for _, bucket := range got {
		if bucket.Count != 0 {
			t.Errorf("expected all-zero buckets, got %+v", bucket)
		}
	}
}
