package runtime

import (
	"math"
	"sort"
	"sync"
	"time"
)

const latencySampleSize = 256

// HookStats summarizes the dispatches of one hook key.
type HookStats struct {
	Dispatches        uint64    `json:"dispatches"`
	Invocations       uint64    `json:"invocations"`
	Skips             uint64    `json:"skips"`
	Declines          uint64    `json:"declines"`
	Failures          uint64    `json:"failures"`
	TotalDispatchTime int64     `json:"total_dispatch_time_ns"`
	LastDispatchedAt  time.Time `json:"last_dispatched_at"`
	LastError         string    `json:"last_error,omitempty"`

	Latency LatencyMetrics `json:"latency"`
}

// HookInfo is the introspection view of a hook key.
type HookInfo struct {
	Key     HookKey   `json:"key"`
	Entries int       `json:"entries"`
	Stats   HookStats `json:"stats"`
}

type LatencyMetrics struct {
	AverageNs  int64 `json:"average_ns"`
	P50Ns      int64 `json:"p50_ns"`
	P95Ns      int64 `json:"p95_ns"`
	P99Ns      int64 `json:"p99_ns"`
	LastNs     int64 `json:"last_ns"`
	SampleSize int   `json:"sample_size"`
}

// statsTracker collects HookStats from dispatch hooks.
type statsTracker struct {
	mu      sync.Mutex
	stats   map[HookKey]*HookStats
	windows map[HookKey]*latencyWindow
}

func newStatsTracker() *statsTracker {
	return &statsTracker{
		stats:   make(map[HookKey]*HookStats),
		windows: make(map[HookKey]*latencyWindow),
	}
}

func (t *statsTracker) hooks() DispatchHooks {
	return DispatchHooks{
		OnDispatchDone: func(info DispatchInfo) {
			t.record(info, nil)
		},
		OnDispatchError: func(info DispatchInfo, err error) {
			t.record(info, err)
		},
	}
}

func (t *statsTracker) record(info DispatchInfo, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, ok := t.stats[info.Key]
	if !ok {
		stats = &HookStats{}
		t.stats[info.Key] = stats
	}
	window, ok := t.windows[info.Key]
	if !ok {
		window = newLatencyWindow(latencySampleSize)
		t.windows[info.Key] = window
	}

	stats.Dispatches++
	stats.Invocations += uint64(info.Invoked)
	stats.Skips += uint64(info.Skipped)
	if info.Declined {
		stats.Declines++
	}
	if err != nil {
		stats.Failures++
		stats.LastError = err.Error()
	}
	stats.TotalDispatchTime += int64(info.Duration)
	stats.LastDispatchedAt = info.StartedAt.UTC()

	window.Add(info.Duration)
	snapshot := window.Snapshot()
	snapshot.AverageNs = stats.TotalDispatchTime / int64(stats.Dispatches)
	stats.Latency = snapshot
}

// Stats returns a copy of the stats for key.
func (t *statsTracker) Stats(key HookKey) HookStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	if stats, ok := t.stats[key]; ok {
		return *stats
	}
	return HookStats{}
}

type latencyWindow struct {
	samples []int64
	next    int
	filled  int
	last    int64
}

func newLatencyWindow(size int) *latencyWindow {
	if size <= 0 {
		size = latencySampleSize
	}
	return &latencyWindow{samples: make([]int64, size)}
}

func (lw *latencyWindow) Add(d time.Duration) {
	if lw == nil || len(lw.samples) == 0 {
		return
	}
	lw.samples[lw.next] = int64(d)
	lw.last = int64(d)
	lw.next = (lw.next + 1) % len(lw.samples)
	if lw.filled < len(lw.samples) {
		lw.filled++
	}
}

func (lw *latencyWindow) Snapshot() LatencyMetrics {
	var metrics LatencyMetrics
	if lw == nil {
		return metrics
	}
	if lw.filled == 0 {
		metrics.LastNs = lw.last
		return metrics
	}
	samples := make([]int64, lw.filled)
	for i := 0; i < lw.filled; i++ {
		idx := lw.next - lw.filled + i
		if idx < 0 {
			idx += len(lw.samples)
		}
		samples[i] = lw.samples[idx]
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	metrics.SampleSize = lw.filled
	metrics.P50Ns = percentile(samples, 0.50)
	metrics.P95Ns = percentile(samples, 0.95)
	metrics.P99Ns = percentile(samples, 0.99)
	var sum int64
	for _, v := range samples {
		sum += v
	}
	metrics.AverageNs = sum / int64(len(samples))
	metrics.LastNs = lw.last
	return metrics
}

func percentile(samples []int64, quantile float64) int64 {
	if len(samples) == 0 {
		return 0
	}
	if quantile <= 0 {
		return samples[0]
	}
	if quantile >= 1 {
		return samples[len(samples)-1]
	}
	pos := quantile * float64(len(samples)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return samples[lower]
	}
	frac := pos - float64(lower)
	return samples[lower] + int64(float64(samples[upper]-samples[lower])*frac)
}
