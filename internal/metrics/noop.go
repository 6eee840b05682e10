package metrics

import "time"

// NoopRecorder discards all metric events.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (*NoopRecorder) IncSummaryCacheHit()                              {}
func (*NoopRecorder) IncSummaryCacheMiss()                             {}
func (*NoopRecorder) ObserveSummaryDuration(time.Duration)             {}
func (*NoopRecorder) IncImageSaved()                                   {}
func (*NoopRecorder) IncImageUpdated()                                 {}
func (*NoopRecorder) IncImageDeleted()                                 {}
func (*NoopRecorder) IncGenerationRequested(string)                    {}
func (*NoopRecorder) IncEventPublished(string)                         {}
func (*NoopRecorder) IncEventProcessed(string)                         {}
func (*NoopRecorder) ObserveEventBatchSize(int)                        {}
func (*NoopRecorder) ObserveEventBatchDuration(time.Duration)          {}
func (*NoopRecorder) SetEventQueueDepth(int64)                         {}
func (*NoopRecorder) ObserveEventIngestLag(time.Duration)              {}
