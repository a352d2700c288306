package projection

import (
	"math"
	"sort"
)

// FractionalRanks ranks values ascending starting at 1; tied values share
// the mean of the positions they span.
func FractionalRanks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && values[idx[end]] == values[idx[start]] {
			end++
		}
		// positions start+1..end, 1-based
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[idx[k]] = avg
		}
		start = end
	}
	return ranks
}

// PercentileRanks maps values onto (0, 100]; the maximum always gets 100.
func PercentileRanks(values []float64) []float64 {
	ranks := FractionalRanks(values)
	n := float64(len(values))
	for i, r := range ranks {
		ranks[i] = r / n * 100
	}
	return ranks
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
