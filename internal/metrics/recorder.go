package metrics

import "time"

// ResolveResult labels the outcome of a document resolution.
type ResolveResult string

const (
	ResolveHit      ResolveResult = "cache_hit"
	ResolveRendered ResolveResult = "rendered"
	ResolveNotFound ResolveResult = "not_found"
)

// Recorder receives content resolver observations. Implementations must be
// safe for concurrent use.
type Recorder interface {
	IncResolve(result ResolveResult)
	ObserveListDuration(section string, d time.Duration)
	IncListExcluded(section string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncResolve(ResolveResult) {}
func (NoopRecorder) ObserveListDuration(string, time.Duration) {}
func (NoopRecorder) IncListExcluded(string) {}
