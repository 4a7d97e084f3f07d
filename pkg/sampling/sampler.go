// Package sampling reads per-channel pixel values along rasterised line cuts
// and averages parallel bands of lines into one profile.
package sampling

import (
	"opticalflake/internal/models"
	"opticalflake/pkg/raster"
)

// SamplePoints reads the image at each coordinate inside [0, W) x [0, H).
// Out-of-bounds coordinates are skipped, not zero-filled, so the result can
// be shorter than coords; the three channels always have equal length.
func SamplePoints(img *models.RGBImage, coords []models.Point) models.Profile {
	p := models.Profile{
		Red:   make([]float64, 0, len(coords)),
		Green: make([]float64, 0, len(coords)),
		Blue:  make([]float64, 0, len(coords)),
	}
	for _, c := range coords {
		if !img.In(c.X, c.Y) {
			continue
		}
		px := img.At(c.X, c.Y)
		p.Red = append(p.Red, float64(px.R))
		p.Green = append(p.Green, float64(px.G))
		p.Blue = append(p.Blue, float64(px.B))
	}
	return p
}

// SampleSegment rasterises a segment and samples it
func SampleSegment(img *models.RGBImage, s models.Segment) models.Profile {
	return SamplePoints(img, raster.LineCoordinates(s))
}
