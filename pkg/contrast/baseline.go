package contrast

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"opticalflake/internal/models"
)

// DefaultTopK is the number of largest values whose median defines the baseline
const DefaultTopK = 3

// BaselineOffset returns the median of the min(k, len(values)) largest values.
// A non-positive k falls back to DefaultTopK. Empty input has offset 0.
func BaselineOffset(values []float64, k int) float64 {
	if len(values) == 0 {
		return 0
	}
	if k <= 0 {
		k = DefaultTopK
	}
	if k > len(values) {
		k = len(values)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return median(sorted[len(sorted)-k:])
}

// SubtractBaseline returns a copy of values shifted by -BaselineOffset(values, k).
// Applying it twice is not a no-op; call it once per profile.
func SubtractBaseline(values []float64, k int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if len(out) == 0 {
		return out
	}
	floats.AddConst(-BaselineOffset(values, k), out)
	return out
}

// CorrectBaseline applies SubtractBaseline to each channel independently
func CorrectBaseline(p models.Profile, k int) models.Profile {
	return models.Profile{
		Red:   SubtractBaseline(p.Red, k),
		Green: SubtractBaseline(p.Green, k),
		Blue:  SubtractBaseline(p.Blue, k),
	}
}

// median expects sorted input; even counts average the two middle values
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
