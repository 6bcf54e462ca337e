package metrics

import "time"

// OutcomeLabel enumerates how a single ParseContent call ended.
type OutcomeLabel string

const (
	OutcomeParsed   OutcomeLabel = "parsed"
	OutcomeFallback OutcomeLabel = "fallback"
	OutcomeFailed   OutcomeLabel = "failed"
)

// Recorder defines observability hooks for the parse pipeline. Implementations
// must be safe for concurrent use.
type Recorder interface {
	ObserveParseDuration(ext string, d time.Duration)
	IncOutcome(ext string, outcome OutcomeLabel)
	IncTransformFailure(transformer string)
	IncSinkWrite(sink string, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveParseDuration(string, time.Duration) {}
func (NoopRecorder) IncOutcome(string, OutcomeLabel)            {}
func (NoopRecorder) IncTransformFailure(string)                 {}
func (NoopRecorder) IncSinkWrite(string, bool)                  {}
