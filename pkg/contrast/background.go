// Package contrast turns line-cut samples into optical contrast relative to a
// background reference color.
//
// The pipeline for one line cut is:
//  1. AverageColor / BackgroundColor compute the reference from a polygon region
//  2. sampling.AverageChain produces the raw band-averaged RGB profile
//  3. Normalize converts it into signed contrast fractions
//  4. CorrectBaseline shifts each channel so its brightest plateau sits at zero
package contrast

import (
	"gonum.org/v1/gonum/stat"

	"opticalflake/internal/models"
	"opticalflake/pkg/raster"
)

// ErrInsufficientPoints is returned for background polygons with fewer than 3 vertices
var ErrInsufficientPoints = raster.ErrInsufficientPoints

// AverageColor returns the mean color of the image pixels selected by mask,
// truncating each channel mean to an integer. An empty selection yields White
// so that normalisation stays defined.
func AverageColor(img *models.RGBImage, mask *raster.Mask) models.Color {
	n := mask.Count()
	if n == 0 {
		return models.White
	}

	red := make([]float64, 0, n)
	green := make([]float64, 0, n)
	blue := make([]float64, 0, n)
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if !mask.At(x, y) {
				continue
			}
			c := img.At(x, y)
			red = append(red, float64(c.R))
			green = append(green, float64(c.G))
			blue = append(blue, float64(c.B))
		}
	}
	if len(red) == 0 {
		return models.White
	}

	return models.Color{
		R: int(stat.Mean(red, nil)),
		G: int(stat.Mean(green, nil)),
		B: int(stat.Mean(blue, nil)),
	}
}

// BackgroundColor fills poly over the image and averages the covered pixels.
// A polygon that covers no pixel returns White; fewer than 3 vertices is an error.
func BackgroundColor(img *models.RGBImage, poly models.Polygon) (models.Color, error) {
	mask, err := raster.PolygonMask(img.Width(), img.Height(), poly)
	if err != nil {
		return models.Color{}, err
	}
	return AverageColor(img, mask), nil
}
