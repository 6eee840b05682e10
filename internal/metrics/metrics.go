// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Analytics metrics
	IncSummaryCacheHit()
	IncSummaryCacheMiss()
	ObserveSummaryDuration(duration time.Duration)

	// Gallery metrics
	IncImageSaved()
	IncImageUpdated()
	IncImageDeleted()

	// Generation metrics
	IncGenerationRequested(status string) // status: "success" or "failed"

	// Event pipeline metrics
	IncEventPublished(status string) // status: "success" or "dropped"
	IncEventProcessed(status string) // status: "success", "failed", "dead_lettered"
	ObserveEventBatchSize(size int)
	ObserveEventBatchDuration(duration time.Duration)
	SetEventQueueDepth(depth int64)
	ObserveEventIngestLag(lag time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
