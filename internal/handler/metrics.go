package handler

import (
	"fmt"
	"net/http"

	"github.com/pictoria/pictoria/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "pictoria_analytics_summary_cache_hits_total %d\n", snap.SummaryCacheHits)
	writeMetric(w, "pictoria_analytics_summary_cache_misses_total %d\n", snap.SummaryCacheMisses)
	writeMetric(w, "pictoria_analytics_summary_duration_seconds_count %d\n", snap.SummaryDurationCount)
	writeMetric(w, "pictoria_analytics_summary_duration_seconds_sum %.6f\n", float64(snap.SummaryDurationTotalNs)/1e9)

	writeMetric(w, "pictoria_images_saved_total %d\n", snap.ImagesSaved)
	writeMetric(w, "pictoria_images_updated_total %d\n", snap.ImagesUpdated)
	writeMetric(w, "pictoria_images_deleted_total %d\n", snap.ImagesDeleted)

	writeMetric(w, "pictoria_generations_total{status=\"success\"} %d\n", snap.GenerationsSucceeded)
	writeMetric(w, "pictoria_generations_total{status=\"failed\"} %d\n", snap.GenerationsFailed)

	writeMetric(w, "pictoria_image_events_published_total{status=\"success\"} %d\n", snap.EventsPublished)
	writeMetric(w, "pictoria_image_events_published_total{status=\"dropped\"} %d\n", snap.EventsDropped)

	writeMetric(w, "pictoria_image_events_processed_total{status=\"success\"} %d\n", snap.EventsProcessed)
	writeMetric(w, "pictoria_image_events_processed_total{status=\"failed\"} %d\n", snap.EventsFailed)
	writeMetric(w, "pictoria_image_events_processed_total{status=\"dead_lettered\"} %d\n", snap.EventsDeadLettered)

	writeMetric(w, "pictoria_image_events_batches_total %d\n", snap.EventBatchCount)
	writeMetric(w, "pictoria_image_events_queue_depth %d\n", snap.EventQueueDepth)
	writeMetric(w, "pictoria_image_events_batch_duration_seconds_sum %.6f\n", float64(snap.EventBatchDurationNs)/1e9)
	writeMetric(w, "pictoria_image_events_ingest_lag_seconds_count %d\n", snap.EventIngestLagCount)
	writeMetric(w, "pictoria_image_events_ingest_lag_seconds_sum %.6f\n", float64(snap.EventIngestLagTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
