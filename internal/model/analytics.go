package model

// UnknownKey is the fallback bucket for records missing a model or
// aspect ratio value.
const UnknownKey = "Unknown"

// AnalyticsFilter narrows the record set before aggregation.
// All criteria are optional and ANDed together. Dates are ISO strings
// (date-only or RFC 3339); bounds are inclusive.
type AnalyticsFilter struct {
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	Model         string `json:"model,omitempty"`
	OnlyFavorites bool   `json:"only_favorites,omitempty"`
}

// IsZero reports whether no criteria are set.
func (f AnalyticsFilter) IsZero() bool {
	return f.StartDate == "" && f.EndDate == "" && f.Model == "" && !f.OnlyFavorites
}

// ModelCount is one entry in the model breakdown.
type ModelCount struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

// RatioCount is one entry in the aspect ratio breakdown.
type RatioCount struct {
	Ratio string `json:"ratio"`
	Count int    `json:"count"`
}

// TagCount is one entry in the tag breakdown.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TopModel identifies the most-used model in the working set.
type TopModel struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayCount is one calendar-day bucket in the activity series.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD (UTC)
	Count int    `json:"count"`
}

// HourCount is one hour-of-day bucket, hour 0-23.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// AnalyticsSummary is the full aggregation result. It is constructed
// fresh per request and never persisted.
type AnalyticsSummary struct {
	TotalImages    int `json:"total_images"`
	TotalFavorites int `json:"total_favorites"`

	// Trailing windows are anchored to wall-clock "now", not to any
	// caller-supplied date filter.
	ImagesThisWeek  int `json:"images_this_week"`
	ImagesThisMonth int `json:"images_this_month"`

	TopModel             *TopModel    `json:"top_model"`
	ModelBreakdown       []ModelCount `json:"model_breakdown"`
	AspectRatioBreakdown []RatioCount `json:"aspect_ratio_breakdown"`
	TagBreakdown         []TagCount   `json:"tag_breakdown"`

	RecentActivity []DayCount  `json:"recent_activity"`
	HourlyActivity []HourCount `json:"hourly_activity"`
}
