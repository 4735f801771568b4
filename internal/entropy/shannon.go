package entropy

import (
	"math"
)

// Calculator measures how evenly a change set spreads over groups such as
// subsystems or sub-repositories. Based on Hassan (2009) "Predicting Faults
// Using the Complexity of Code Changes".
type Calculator struct{}

// NewCalculator creates a new entropy calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Spread returns the normalized Shannon entropy of counts, between 0 and 1:
//   - 0 = focused (a single non-empty group)
//   - 1 = evenly dispersed over every group
//
// Zero counts are ignored.
func (c *Calculator) Spread(counts []int) float64 {
	total := 0
	groups := 0
	for _, n := range counts {
		if n > 0 {
			total += n
			groups++
		}
	}
	if groups < 2 {
		return 0.0
	}

	// -Σ(p_i × log2(p_i))
	h := 0.0
	for _, n := range counts {
		if n > 0 {
			p := float64(n) / float64(total)
			h -= p * math.Log2(p)
		}
	}

	normalized := h / math.Log2(float64(groups))
	if normalized < 0 {
		return 0.0
	}
	if normalized > 1 {
		return 1.0
	}
	return normalized
}
