package burst

import (
	"math"
	"testing"
	"time"

	"github.com/masmgr/hglineage/internal/aggregation"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func days(offsets ...int) []time.Time {
	times := make([]time.Time, len(offsets))
	for i, d := range offsets {
		times[i] = base.Add(time.Duration(d) * 24 * time.Hour)
	}
	return times
}

func TestNewCalculator(t *testing.T) {
	tests := []struct {
		name       string
		windowDays int
		want       time.Duration
	}{
		{name: "Positive window", windowDays: 14, want: 14 * 24 * time.Hour},
		{name: "Zero defaults", windowDays: 0, want: DefaultWindowDays * 24 * time.Hour},
		{name: "Negative defaults", windowDays: -5, want: DefaultWindowDays * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCalculator(tt.windowDays).window; got != tt.want {
				t.Errorf("window = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		times    []time.Time
		expected float64
	}{
		{name: "Nil", times: nil, expected: 0.0},
		{name: "Single transition", times: days(0), expected: 1.0},
		{name: "All in one window", times: days(0, 1, 2, 3, 4), expected: 1.0},
		{name: "Window edge is inclusive", times: days(0, 7), expected: 1.0},
		{name: "Spread across", times: days(0, 30, 60, 90, 120, 150, 180, 210, 240, 270), expected: 0.1},
		{name: "Two clusters", times: days(0, 1, 2, 60, 61), expected: 0.6},
		{name: "Newest first", times: days(61, 60, 2, 1, 0), expected: 0.6},
		{name: "Unsorted", times: days(60, 0, 61, 2, 1), expected: 0.6},
	}

	calc := NewCalculator(7)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Score(tt.times); math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("Score = %f, expected %f", got, tt.expected)
			}
		})
	}
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	times := days(5, 0, 3)
	want := days(5, 0, 3)

	NewCalculator(7).Score(times)

	for i := range times {
		if !times[i].Equal(want[i]) {
			t.Fatalf("input mutated at %d: %v", i, times)
		}
	}
}

func TestCompute(t *testing.T) {
	core := aggregation.NewSubRepoMetrics("core")
	core.TransitionTimes = days(0, 1, 40, 80)
	idle := aggregation.NewSubRepoMetrics("idle")

	NewCalculator(7).Compute([]*aggregation.SubRepoMetrics{core, idle})

	if math.Abs(core.BurstScore-0.5) > 0.001 {
		t.Errorf("core.BurstScore = %f, expected 0.5", core.BurstScore)
	}
	if idle.BurstScore != 0 {
		t.Errorf("idle.BurstScore = %f, expected 0", idle.BurstScore)
	}
}
