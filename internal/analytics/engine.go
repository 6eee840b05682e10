package analytics

import (
	"time"

	"github.com/pictoria/pictoria/internal/model"
)

// Engine assembles analytics summaries from raw image records. The
// clock is injectable so tests can fix "now" and get deterministic
// trailing-window and default-range output.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine using the system clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock creates an Engine with a fixed clock source.
func NewEngineWithClock(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Summarize filters the records by the given criteria and composes the
// full analytics summary. Pure and deterministic for a fixed clock:
// identical inputs produce identical output.
func (e *Engine) Summarize(records []*model.ImageRecord, f model.AnalyticsFilter) *model.AnalyticsSummary {
	working := FilterRecords(records, f)
	now := e.now()

	totalFavorites := 0
	for _, rec := range working {
		if rec.IsFavorite {
			totalFavorites++
		}
	}

	// Trailing windows are anchored to the current time regardless of
	// filter bounds. The month window rolls the month field back rather
	// than subtracting 30 days.
	weekCutoff := now.AddDate(0, 0, -7)
	monthCutoff := now.AddDate(0, -1, 0)

	imagesThisWeek := 0
	imagesThisMonth := 0
	for _, rec := range working {
		if !rec.CreatedAt.Before(weekCutoff) {
			imagesThisWeek++
		}
		if !rec.CreatedAt.Before(monthCutoff) {
			imagesThisMonth++
		}
	}

	modelBreakdown := ModelBreakdown(working)
	topModel := SelectTopModel(modelBreakdown)
	if len(modelBreakdown) > TopModelLimit {
		modelBreakdown = modelBreakdown[:TopModelLimit]
	}

	return &model.AnalyticsSummary{
		TotalImages:          len(working),
		TotalFavorites:       totalFavorites,
		ImagesThisWeek:       imagesThisWeek,
		ImagesThisMonth:      imagesThisMonth,
		TopModel:             topModel,
		ModelBreakdown:       modelBreakdown,
		AspectRatioBreakdown: RatioBreakdown(working),
		TagBreakdown:         TagBreakdown(working),
		RecentActivity:       DailyActivity(working, f, now),
		HourlyActivity:       HourlyActivity(working),
	}
}
