package contrast

import (
	"opticalflake/internal/models"
)

// Normalize converts raw channel values into contrast (v - bg) / bg per channel.
// A zero background channel has no defined contrast; every sample of that
// channel is reported as 0. The result is a fraction, not a percentage.
func Normalize(raw models.Profile, bg models.Color) models.Profile {
	return models.Profile{
		Red:   normalizeChannel(raw.Red, float64(bg.R)),
		Green: normalizeChannel(raw.Green, float64(bg.G)),
		Blue:  normalizeChannel(raw.Blue, float64(bg.B)),
	}
}

func normalizeChannel(values []float64, bg float64) []float64 {
	out := make([]float64, len(values))
	if bg == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - bg) / bg
	}
	return out
}
