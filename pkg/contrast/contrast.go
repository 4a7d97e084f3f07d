package contrast

import (
	"opticalflake/internal/models"
	"opticalflake/pkg/sampling"
)

// CalculateRaw band-averages every segment of the chain and normalises the
// concatenated profile against bg, without baseline correction.
func CalculateRaw(img *models.RGBImage, chain models.Chain, bg models.Color, width int) models.Profile {
	return Normalize(sampling.AverageChain(img, chain, width), bg)
}

// Calculate is CalculateRaw followed by a top-3 median baseline correction
func Calculate(img *models.RGBImage, chain models.Chain, bg models.Color, width int) models.Profile {
	p, _ := CalculateTopK(img, chain, bg, width, DefaultTopK)
	return p
}

// CalculateTopK runs the full pipeline with a baseline over the k largest
// values and also returns the per-segment band statistics
func CalculateTopK(img *models.RGBImage, chain models.Chain, bg models.Color, width, k int) (models.Profile, []sampling.BandStats) {
	raw, stats := sampling.AverageChainStats(img, chain, width)
	return CorrectBaseline(Normalize(raw, bg), k), stats
}
