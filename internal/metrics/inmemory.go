package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SummaryCacheHits       uint64
	SummaryCacheMisses     uint64
	SummaryDurationCount   uint64
	SummaryDurationTotalNs int64
	ImagesSaved            uint64
	ImagesUpdated          uint64
	ImagesDeleted          uint64
	GenerationsSucceeded   uint64
	GenerationsFailed      uint64

	EventsPublished       uint64
	EventsDropped         uint64
	EventsProcessed       uint64
	EventsFailed          uint64
	EventsDeadLettered    uint64
	EventBatchCount       uint64
	EventBatchDurationNs  int64
	EventQueueDepth       int64
	EventIngestLagCount   uint64
	EventIngestLagTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests and the metrics
// snapshot endpoint.
type InMemoryRecorder struct {
	summaryCacheHits       uint64
	summaryCacheMisses     uint64
	summaryDurationCount   uint64
	summaryDurationTotalNs int64
	imagesSaved            uint64
	imagesUpdated          uint64
	imagesDeleted          uint64
	generationsSucceeded   uint64
	generationsFailed      uint64

	eventsPublished       uint64
	eventsDropped         uint64
	eventsProcessed       uint64
	eventsFailed          uint64
	eventsDeadLettered    uint64
	eventBatchCount       uint64
	eventBatchDurationNs  int64
	eventQueueDepth       int64
	eventIngestLagCount   uint64
	eventIngestLagTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SummaryCacheHits:       atomic.LoadUint64(&m.summaryCacheHits),
		SummaryCacheMisses:     atomic.LoadUint64(&m.summaryCacheMisses),
		SummaryDurationCount:   atomic.LoadUint64(&m.summaryDurationCount),
		SummaryDurationTotalNs: atomic.LoadInt64(&m.summaryDurationTotalNs),
		ImagesSaved:            atomic.LoadUint64(&m.imagesSaved),
		ImagesUpdated:          atomic.LoadUint64(&m.imagesUpdated),
		ImagesDeleted:          atomic.LoadUint64(&m.imagesDeleted),
		GenerationsSucceeded:   atomic.LoadUint64(&m.generationsSucceeded),
		GenerationsFailed:      atomic.LoadUint64(&m.generationsFailed),

		EventsPublished:       atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:         atomic.LoadUint64(&m.eventsDropped),
		EventsProcessed:       atomic.LoadUint64(&m.eventsProcessed),
		EventsFailed:          atomic.LoadUint64(&m.eventsFailed),
		EventsDeadLettered:    atomic.LoadUint64(&m.eventsDeadLettered),
		EventBatchCount:       atomic.LoadUint64(&m.eventBatchCount),
		EventBatchDurationNs:  atomic.LoadInt64(&m.eventBatchDurationNs),
		EventQueueDepth:       atomic.LoadInt64(&m.eventQueueDepth),
		EventIngestLagCount:   atomic.LoadUint64(&m.eventIngestLagCount),
		EventIngestLagTotalNs: atomic.LoadInt64(&m.eventIngestLagTotalNs),
	}
}

// IncSummaryCacheHit increments the summary cache hit counter.
func (m *InMemoryRecorder) IncSummaryCacheHit() {
	atomic.AddUint64(&m.summaryCacheHits, 1)
}

// IncSummaryCacheMiss increments the summary cache miss counter.
func (m *InMemoryRecorder) IncSummaryCacheMiss() {
	atomic.AddUint64(&m.summaryCacheMisses, 1)
}

// ObserveSummaryDuration records summary computation duration.
func (m *InMemoryRecorder) ObserveSummaryDuration(duration time.Duration) {
	atomic.AddUint64(&m.summaryDurationCount, 1)
	atomic.AddInt64(&m.summaryDurationTotalNs, duration.Nanoseconds())
}

// IncImageSaved increments the image saved counter.
func (m *InMemoryRecorder) IncImageSaved() {
	atomic.AddUint64(&m.imagesSaved, 1)
}

// IncImageUpdated increments the image updated counter.
func (m *InMemoryRecorder) IncImageUpdated() {
	atomic.AddUint64(&m.imagesUpdated, 1)
}

// IncImageDeleted increments the image deleted counter.
func (m *InMemoryRecorder) IncImageDeleted() {
	atomic.AddUint64(&m.imagesDeleted, 1)
}

// IncGenerationRequested increments the generation counter by outcome.
func (m *InMemoryRecorder) IncGenerationRequested(status string) {
	if status == "success" {
		atomic.AddUint64(&m.generationsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.generationsFailed, 1)
}

// IncEventPublished increments the event published counter by outcome.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.eventsPublished, 1)
		return
	}
	atomic.AddUint64(&m.eventsDropped, 1)
}

// IncEventProcessed increments the event processed counter by outcome.
func (m *InMemoryRecorder) IncEventProcessed(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.eventsProcessed, 1)
	case "dead_lettered":
		atomic.AddUint64(&m.eventsDeadLettered, 1)
	default:
		atomic.AddUint64(&m.eventsFailed, 1)
	}
}

// ObserveEventBatchSize records one consumed batch.
func (m *InMemoryRecorder) ObserveEventBatchSize(size int) {
	atomic.AddUint64(&m.eventBatchCount, 1)
}

// ObserveEventBatchDuration records batch processing time.
func (m *InMemoryRecorder) ObserveEventBatchDuration(duration time.Duration) {
	atomic.AddInt64(&m.eventBatchDurationNs, duration.Nanoseconds())
}

// SetEventQueueDepth records the current stream backlog.
func (m *InMemoryRecorder) SetEventQueueDepth(depth int64) {
	atomic.StoreInt64(&m.eventQueueDepth, depth)
}

// ObserveEventIngestLag records publish-to-consume latency.
func (m *InMemoryRecorder) ObserveEventIngestLag(lag time.Duration) {
	atomic.AddUint64(&m.eventIngestLagCount, 1)
	atomic.AddInt64(&m.eventIngestLagTotalNs, lag.Nanoseconds())
}
