// Package analytics computes gallery analytics summaries.
// All aggregation is pure computation over already-fetched records;
// nothing in this package performs I/O.
package analytics

import (
	"time"

	"github.com/pictoria/pictoria/internal/model"
)

// Filter date layouts, tried in order.
var filterDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parsedBound is a resolved filter date bound.
type parsedBound struct {
	at       time.Time
	dateOnly bool
}

// parseFilterDate parses an ISO date string (date-only or full timestamp).
// Returns ok=false for empty or malformed input; malformed dates impose
// no constraint rather than failing the request.
func parseFilterDate(s string) (parsedBound, bool) {
	if s == "" {
		return parsedBound{}, false
	}
	for i, layout := range filterDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return parsedBound{at: t.UTC(), dateOnly: i == 0}, true
		}
	}
	return parsedBound{}, false
}

// FilterRecords narrows the record set by the given criteria. Criteria
// are ANDed; absent criteria impose no constraint. Date bounds are
// inclusive; a date-only end bound covers the entire calendar day.
// Comparisons are UTC-normalized.
func FilterRecords(records []*model.ImageRecord, f model.AnalyticsFilter) []*model.ImageRecord {
	if f.IsZero() {
		return records
	}

	start, hasStart := parseFilterDate(f.StartDate)
	end, hasEnd := parseFilterDate(f.EndDate)

	// Inclusive end: a date-only bound means "anything on that day".
	endAt := end.at
	if hasEnd && end.dateOnly {
		endAt = end.at.AddDate(0, 0, 1)
	}

	out := make([]*model.ImageRecord, 0, len(records))
	for _, rec := range records {
		created := rec.CreatedAt.UTC()

		if hasStart && created.Before(start.at) {
			continue
		}
		if hasEnd {
			if end.dateOnly {
				if !created.Before(endAt) {
					continue
				}
			} else if created.After(endAt) {
				continue
			}
		}
		if f.Model != "" && rec.Model != f.Model {
			continue
		}
		if f.OnlyFavorites && !rec.IsFavorite {
			continue
		}
		out = append(out, rec)
	}
	return out
}
