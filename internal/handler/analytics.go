package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pictoria/pictoria/internal/analytics"
	"github.com/pictoria/pictoria/internal/auth"
	"github.com/pictoria/pictoria/internal/cache"
	"github.com/pictoria/pictoria/internal/handler/dto"
	"github.com/pictoria/pictoria/internal/metrics"
	"github.com/pictoria/pictoria/internal/model"
	"github.com/pictoria/pictoria/internal/repository"
)

// AnalyticsHandler handles gallery analytics endpoints.
type AnalyticsHandler struct {
	logger   *slog.Logger
	repo     *repository.Repository
	cache    *cache.Cache
	engine   *analytics.Engine
	recorder metrics.Recorder
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(logger *slog.Logger, repo *repository.Repository, c *cache.Cache, engine *analytics.Engine, recorder metrics.Recorder) *AnalyticsHandler {
	return &AnalyticsHandler{
		logger:   logger.With("component", "handler.analytics"),
		repo:     repo,
		cache:    c,
		engine:   engine,
		recorder: recorder,
	}
}

// GetSummary handles GET /v1/analytics.
// Summaries are cached per user and filter; mutations invalidate the
// cache through the event pipeline, and a short TTL bounds staleness.
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	filter := parseAnalyticsFilter(r)
	filterHash := auth.QuickHash(canonicalFilter(filter))

	if summary, err := h.cache.GetSummary(ctx, userID, filterHash); err == nil {
		h.recorder.IncSummaryCacheHit()
		writeJSON(w, http.StatusOK, summary)
		return
	}
	h.recorder.IncSummaryCacheMiss()

	records, err := h.repo.ListImages(ctx, userID)
	if err != nil {
		h.logger.Error("failed to load images for analytics", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute analytics")
		return
	}

	start := time.Now()
	summary := h.engine.Summarize(records, filter)
	h.recorder.ObserveSummaryDuration(time.Since(start))

	if err := h.cache.SetSummary(ctx, userID, filterHash, summary); err != nil {
		h.logger.Warn("failed to cache analytics summary", "user_id", userID, "error", err)
	}

	writeJSON(w, http.StatusOK, summary)
}

// parseAnalyticsFilter extracts filter criteria from query parameters.
// Values the engine cannot parse impose no constraint, so they are
// passed through as-is.
func parseAnalyticsFilter(r *http.Request) model.AnalyticsFilter {
	q := r.URL.Query()
	return model.AnalyticsFilter{
		StartDate:     q.Get("start_date"),
		EndDate:       q.Get("end_date"),
		Model:         q.Get("model"),
		OnlyFavorites: strings.EqualFold(q.Get("only_favorites"), "true"),
	}
}

// canonicalFilter renders a filter as a stable string for cache keying.
func canonicalFilter(f model.AnalyticsFilter) string {
	fav := "0"
	if f.OnlyFavorites {
		fav = "1"
	}
	return strings.Join([]string{f.StartDate, f.EndDate, f.Model, fav}, "|")
}

// writeError writes a JSON error response.
func (h *AnalyticsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
