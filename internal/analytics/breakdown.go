package analytics

import (
	"sort"
	"strings"

	"github.com/pictoria/pictoria/internal/model"
)

// TopModelLimit is the number of entries kept in the model breakdown
// after top-model selection.
const TopModelLimit = 5

// keyCount accumulates occurrences per grouping key while preserving
// first-encountered order for deterministic tie-breaking.
type keyCount struct {
	key   string
	count int
}

// countByKey groups records by the keys the extractor yields and counts
// occurrences. A record contributes one count per key it yields, so a
// multi-valued extractor (tags) increments several buckets. The result
// is sorted by count descending; ties keep first-encountered order.
func countByKey(records []*model.ImageRecord, extract func(*model.ImageRecord) []string) []keyCount {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, rec := range records {
		for _, key := range extract(rec) {
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}

	result := make([]keyCount, 0, len(order))
	for _, key := range order {
		result = append(result, keyCount{key: key, count: counts[key]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].count > result[j].count
	})

	return result
}

// modelKey extracts the grouping key for the model breakdown, falling
// back to "Unknown" for records with no model.
func modelKey(rec *model.ImageRecord) []string {
	if rec.Model == "" {
		return []string{model.UnknownKey}
	}
	return []string{rec.Model}
}

// ratioKey extracts the grouping key for the aspect ratio breakdown.
func ratioKey(rec *model.ImageRecord) []string {
	if rec.AspectRatio == "" {
		return []string{model.UnknownKey}
	}
	return []string{rec.AspectRatio}
}

// tagKeys extracts the distinct non-blank tags a record carries.
// Whitespace-only tags are discarded; duplicates within one record
// count once.
func tagKeys(rec *model.ImageRecord) []string {
	if len(rec.Tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(rec.Tags))
	keys := make([]string, 0, len(rec.Tags))
	for _, raw := range rec.Tags {
		tag := strings.TrimSpace(raw)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		keys = append(keys, tag)
	}
	return keys
}

// ModelBreakdown counts records per model, sorted descending.
// The result is untruncated; callers apply TopModelLimit.
func ModelBreakdown(records []*model.ImageRecord) []model.ModelCount {
	grouped := countByKey(records, modelKey)
	out := make([]model.ModelCount, len(grouped))
	for i, g := range grouped {
		out[i] = model.ModelCount{Model: g.key, Count: g.count}
	}
	return out
}

// RatioBreakdown counts records per aspect ratio, sorted descending.
func RatioBreakdown(records []*model.ImageRecord) []model.RatioCount {
	grouped := countByKey(records, ratioKey)
	out := make([]model.RatioCount, len(grouped))
	for i, g := range grouped {
		out[i] = model.RatioCount{Ratio: g.key, Count: g.count}
	}
	return out
}

// TagBreakdown counts tag occurrences across records, sorted descending.
// Each record contributes one count per distinct tag it carries.
func TagBreakdown(records []*model.ImageRecord) []model.TagCount {
	grouped := countByKey(records, tagKeys)
	out := make([]model.TagCount, len(grouped))
	for i, g := range grouped {
		out[i] = model.TagCount{Tag: g.key, Count: g.count}
	}
	return out
}

// SelectTopModel derives the top entry from the untruncated model
// breakdown. Returns nil for an empty working set.
func SelectTopModel(breakdown []model.ModelCount) *model.TopModel {
	if len(breakdown) == 0 {
		return nil
	}
	return &model.TopModel{Name: breakdown[0].Model, Count: breakdown[0].Count}
}
