// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	resolveStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "music_tagger",
		Name:      "resolves_started_total",
		Help:      "Total number of track resolves started by trigger",
	}, []string{"trigger"})
	resolveCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "music_tagger",
		Name:      "resolves_completed_total",
		Help:      "Total number of track resolves successfully completed by trigger",
	}, []string{"trigger"})
	resolveFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "music_tagger",
		Name:      "resolves_failed_total",
		Help:      "Total number of track resolves failed by trigger",
	}, []string{"trigger"})
	providerLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "music_tagger",
		Name:      "provider_lookups_total",
		Help:      "Total provider lookups by provider and outcome",
	}, []string{"provider", "outcome"})
	resolveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "music_tagger",
		Name:      "resolve_duration_seconds",
		Help:      "Histogram of per-track resolve durations in seconds by trigger",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10), // ~50ms up to several seconds/minutes
	}, []string{"trigger"})
	commitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "music_tagger",
		Name:      "commits_total",
		Help:      "Total tag writes by outcome",
	}, []string{"outcome"})

	tracksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "music_tagger",
		Name:      "tracks_total",
		Help:      "Current number of tracks in the active scan",
	})
	selectedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "music_tagger",
		Name:      "tracks_selected",
		Help:      "Current number of selected tracks",
	})
	memoryAllocGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "music_tagger",
		Name:      "process_memory_alloc_bytes",
		Help:      "Current process memory allocation (runtime.Alloc)",
	})
	goroutinesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "music_tagger",
		Name:      "process_goroutines",
		Help:      "Number of currently running goroutines",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(resolveStarted, resolveCompleted, resolveFailed, providerLookups,
			resolveDuration, commitsTotal, tracksGauge, selectedGauge, memoryAllocGauge, goroutinesGauge)
	})
}

// Resolve lifecycle helpers; trigger is "batch", "single", or "watch".
func IncResolveStarted(trigger string)   { resolveStarted.WithLabelValues(trigger).Inc() }
func IncResolveCompleted(trigger string) { resolveCompleted.WithLabelValues(trigger).Inc() }
func IncResolveFailed(trigger string)    { resolveFailed.WithLabelValues(trigger).Inc() }
func ObserveResolveDuration(trigger string, d time.Duration) {
	resolveDuration.WithLabelValues(trigger).Observe(d.Seconds())
}

// IncProviderLookup records one provider call; outcome is "hit",
// "miss", or "error".
func IncProviderLookup(provider, outcome string) {
	providerLookups.WithLabelValues(provider, outcome).Inc()
}

// IncCommit records one tag write; outcome is "ok" or "error".
func IncCommit(outcome string) { commitsTotal.WithLabelValues(outcome).Inc() }

// Gauges
func SetTracks(n int)         { tracksGauge.Set(float64(n)) }
func SetSelected(n int)       { selectedGauge.Set(float64(n)) }
func SetMemoryAlloc(b uint64) { memoryAllocGauge.Set(float64(b)) }
func SetGoroutines(n int)     { goroutinesGauge.Set(float64(n)) }
