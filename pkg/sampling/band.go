package sampling

import (
	"gonum.org/v1/gonum/floats"

	"opticalflake/internal/models"
	"opticalflake/pkg/raster"
)

// HalfWidth returns the number of offset lines taken on each side of the
// centre line for an averaging width
func HalfWidth(width int) int {
	if width <= 1 {
		return 0
	}
	return width / 2
}

// BandOffsets lists the segments of an averaging band in accumulation order:
// the centre line followed by the +k and -k offsets for k = 1..HalfWidth(width).
func BandOffsets(s models.Segment, width int) []models.Segment {
	h := HalfWidth(width)
	band := make([]models.Segment, 0, 2*h+1)
	band = append(band, s)
	for k := 1; k <= h; k++ {
		band = append(band,
			raster.OffsetParallel(s, float64(k)),
			raster.OffsetParallel(s, -float64(k)),
		)
	}
	return band
}

// BandStats reports how many lines of a band contributed to an average
type BandStats struct {
	// Requested is the number of lines in the band, centre included
	Requested int

	// Used is the number of lines whose sample count matched the centre line
	Used int
}

// AverageSegment samples the centre line and its parallel offsets and returns
// their per-channel mean. An offset line contributes only when its clipped
// sample count equals the centre line's; mismatched lines are dropped whole
// so indices never shift. The centre line always contributes.
func AverageSegment(img *models.RGBImage, s models.Segment, width int) (models.Profile, BandStats) {
	band := BandOffsets(s, width)
	stats := BandStats{Requested: len(band)}

	sum := SampleSegment(img, band[0])
	n := sum.Len()
	if n == 0 {
		return sum, stats
	}
	stats.Used = 1

	for _, off := range band[1:] {
		p := SampleSegment(img, off)
		if p.Len() != n {
			continue
		}
		floats.Add(sum.Red, p.Red)
		floats.Add(sum.Green, p.Green)
		floats.Add(sum.Blue, p.Blue)
		stats.Used++
	}

	if stats.Used > 1 {
		inv := 1 / float64(stats.Used)
		floats.Scale(inv, sum.Red)
		floats.Scale(inv, sum.Green)
		floats.Scale(inv, sum.Blue)
	}
	return sum, stats
}

// AverageChain averages every segment of a chain and concatenates the
// results in chain order. Segments that sample nothing contribute nothing.
func AverageChain(img *models.RGBImage, chain models.Chain, width int) models.Profile {
	p, _ := AverageChainStats(img, chain, width)
	return p
}

// AverageChainStats is AverageChain that also returns the band statistics of
// each segment, indexed like chain
func AverageChainStats(img *models.RGBImage, chain models.Chain, width int) (models.Profile, []BandStats) {
	out := models.Profile{Red: []float64{}, Green: []float64{}, Blue: []float64{}}
	stats := make([]BandStats, len(chain))
	for i, s := range chain {
		p, st := AverageSegment(img, s, width)
		out.Append(p)
		stats[i] = st
	}
	return out, stats
}
