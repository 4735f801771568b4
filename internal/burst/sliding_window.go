package burst

import (
	"sort"
	"time"

	"github.com/masmgr/hglineage/internal/aggregation"
)

// DefaultWindowDays is used when no positive window is configured.
const DefaultWindowDays = 7

// Calculator scores how bursty the updates of a sub-repository are:
// the share of its transitions falling in the densest window.
type Calculator struct {
	window time.Duration
}

// NewCalculator creates a calculator with a window of windowDays days.
func NewCalculator(windowDays int) *Calculator {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Calculator{window: time.Duration(windowDays) * 24 * time.Hour}
}

// Compute sets BurstScore on every metric.
func (c *Calculator) Compute(metrics []*aggregation.SubRepoMetrics) {
	for _, m := range metrics {
		m.BurstScore = c.Score(m.TransitionTimes)
	}
}

// Score returns max(transitions in any window) / total. No transitions score
// 0 and a single one scores 1. The input is not modified.
func (c *Calculator) Score(times []time.Time) float64 {
	switch len(times) {
	case 0:
		return 0.0
	case 1:
		return 1.0
	}

	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	densest := 1
	left := 0
	for right := range sorted {
		for sorted[right].Sub(sorted[left]) > c.window {
			left++
		}
		if n := right - left + 1; n > densest {
			densest = n
		}
	}
	return float64(densest) / float64(len(sorted))
}
