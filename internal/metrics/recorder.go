package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFatal   ResultLabel = "fatal"
)

// Recorder defines observability hooks for build and stage metrics.
// The NoopRecorder allows optional injection.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|failed
	IncFilesRendered(n int)
	IncAssetCacheHit()
	IncAssetCacheMiss()
	SetRenderConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) IncFilesRendered(int)                       {}
func (NoopRecorder) IncAssetCacheHit()                          {}
func (NoopRecorder) IncAssetCacheMiss()                         {}
func (NoopRecorder) SetRenderConcurrency(int)                   {}
