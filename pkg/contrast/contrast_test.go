package contrast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opticalflake/internal/models"
	"opticalflake/pkg/raster"
	"opticalflake/pkg/sampling"
)

func uniformImage(w, h int, c models.Color) *models.RGBImage {
	img := models.NewRGBImage(w, h)
	img.Fill(c)
	return img
}

func TestBackgroundColor(t *testing.T) {
	t.Run("Uniform square", func(t *testing.T) {
		img := uniformImage(10, 10, models.Color{R: 200, G: 150, B: 50})
		square := models.Polygon{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 0, Y: 3}}

		bg, err := BackgroundColor(img, square)
		require.NoError(t, err)
		assert.Equal(t, models.Color{R: 200, G: 150, B: 50}, bg)
	})

	t.Run("Truncates means", func(t *testing.T) {
		img := uniformImage(4, 1, models.Color{R: 10, G: 10, B: 10})
		img.Set(3, 0, models.Color{R: 13, G: 12, B: 11})

		mask := raster.NewMask(4, 1)
		for x := 0; x < 4; x++ {
			mask.Set(x, 0)
		}
		// 43/4, 42/4, 41/4
		assert.Equal(t, models.Color{R: 10, G: 10, B: 10}, AverageColor(img, mask))

		mask = raster.NewMask(4, 1)
		mask.Set(2, 0)
		mask.Set(3, 0)
		// 23/2, 22/2, 21/2
		assert.Equal(t, models.Color{R: 11, G: 11, B: 10}, AverageColor(img, mask))
	})

	t.Run("Sloped triangle ignores grazed pixels", func(t *testing.T) {
		tri := models.Polygon{{X: 39, Y: 37}, {X: 1, Y: 1}, {X: 14, Y: 9}}
		outline := map[models.Point]bool{}
		for i := range tri {
			for _, p := range raster.LineCoordinates(models.Segment{Start: tri[i], End: tri[(i+1)%3]}) {
				outline[p] = true
			}
		}
		cross := func(a, b, p models.Point) int {
			return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		}

		// region pixels get the reference colour, everything else is black
		ref := models.Color{R: 180, G: 120, B: 60}
		img := uniformImage(40, 40, models.Color{})
		for y := 0; y < 40; y++ {
			for x := 0; x < 40; x++ {
				p := models.Pt(x, y)
				c1, c2, c3 := cross(tri[0], tri[1], p), cross(tri[1], tri[2], p), cross(tri[2], tri[0], p)
				inside := (c1 > 0 && c2 > 0 && c3 > 0) || (c1 < 0 && c2 < 0 && c3 < 0)
				if inside || outline[p] {
					img.Set(x, y, ref)
				}
			}
		}

		bg, err := BackgroundColor(img, tri)
		require.NoError(t, err)
		assert.Equal(t, ref, bg)
	})

	t.Run("Off image falls back to white", func(t *testing.T) {
		img := uniformImage(5, 5, models.Color{R: 1, G: 2, B: 3})
		bg, err := BackgroundColor(img, models.Polygon{{X: 50, Y: 50}, {X: 60, Y: 50}, {X: 60, Y: 60}})
		require.NoError(t, err)
		assert.Equal(t, models.White, bg)
	})

	t.Run("Too few points", func(t *testing.T) {
		img := uniformImage(5, 5, models.Color{R: 1, G: 2, B: 3})
		_, err := BackgroundColor(img, models.Polygon{{X: 0, Y: 0}, {X: 4, Y: 4}})
		assert.ErrorIs(t, err, ErrInsufficientPoints)
	})
}

func TestNormalize(t *testing.T) {
	raw := models.Profile{
		Red:   []float64{100, 50, 150},
		Green: []float64{0, 255, 10},
		Blue:  []float64{40, 20, 80},
	}

	got := Normalize(raw, models.Color{R: 100, G: 0, B: 40})
	assert.Equal(t, []float64{0, -0.5, 0.5}, got.Red)
	assert.Equal(t, []float64{0, 0, 0}, got.Green, "zero background channel")
	assert.Equal(t, []float64{0, -0.5, 1}, got.Blue)
	assert.Equal(t, []float64{100, 50, 150}, raw.Red, "input must be untouched")
}

func TestBaselineOffset(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		k        int
		expected float64
	}{
		{"Empty", nil, 3, 0},
		{"Single", []float64{-0.2}, 3, -0.2},
		{"Two values average", []float64{-0.4, 0.2}, 3, -0.1},
		{"Top three", []float64{-0.5, 0.01, -0.3, 0.03, 0.02}, 3, 0.02},
		{"Top three with outlier", []float64{0.9, -0.1, 0, 0.05, -0.2}, 3, 0.05},
		{"Custom k", []float64{1, 2, 3, 4, 5, 6}, 4, 4.5},
		{"Non-positive k uses default", []float64{1, 2, 3, 4, 5}, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, BaselineOffset(tt.values, tt.k), 1e-12)
		})
	}
}

func TestSubtractBaseline(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0, 0}, SubtractBaseline([]float64{0.3, 0.3, 0.3, 0.3}, 3))
	assert.Empty(t, SubtractBaseline(nil, 3))
	assert.Empty(t, SubtractBaseline([]float64{}, 3))

	in := []float64{1, 5, 3, 4}
	assert.Equal(t, []float64{-3, 1, -1, 0}, SubtractBaseline(in, 3))
	assert.Equal(t, []float64{1, 5, 3, 4}, in, "input must be untouched")
}

func TestCorrectBaselinePerChannel(t *testing.T) {
	p := models.Profile{
		Red:   []float64{0.1, 0.1, -0.4, 0.1},
		Green: []float64{-0.2, -0.2, -0.2, -0.2},
		Blue:  []float64{0, 1, 2, 3},
	}
	got := CorrectBaseline(p, DefaultTopK)
	assert.InDeltaSlice(t, []float64{0, 0, -0.5, 0}, got.Red, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0}, got.Green, 1e-12)
	assert.InDeltaSlice(t, []float64{-2, -1, 0, 1}, got.Blue, 1e-12)
}

func TestScenarioUniformLine(t *testing.T) {
	bgColor := models.Color{R: 100, G: 100, B: 100}
	img := uniformImage(5, 10, bgColor)
	chain := models.Chain{models.Seg(0, 5, 4, 5)}

	raw := sampling.AverageChain(img, chain, 1)
	require.Equal(t, 5, raw.Len())
	for _, ch := range raw.Channels() {
		assert.Equal(t, []float64{100, 100, 100, 100, 100}, ch)
	}

	got := CalculateRaw(img, chain, bgColor, 1)
	for _, ch := range got.Channels() {
		assert.Equal(t, []float64{0, 0, 0, 0, 0}, ch)
	}
}

func TestScenarioDarkPixel(t *testing.T) {
	bgColor := models.Color{R: 100, G: 100, B: 100}
	img := uniformImage(5, 10, bgColor)
	img.Set(2, 5, models.Color{R: 50, G: 100, B: 100})
	chain := models.Chain{models.Seg(0, 5, 4, 5)}

	raw := CalculateRaw(img, chain, bgColor, 1)
	assert.Equal(t, []float64{0, 0, -0.5, 0, 0}, raw.Red)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, raw.Green)

	corrected := Calculate(img, chain, bgColor, 1)
	assert.Equal(t, []float64{0, 0, -0.5, 0, 0}, corrected.Red)
}

func TestCalculateRemovesBackgroundBias(t *testing.T) {
	// the background estimate is slightly too dark, so the plateau reads +0.1
	img := uniformImage(20, 20, models.Color{R: 110, G: 110, B: 110})
	for y := 8; y <= 12; y++ {
		for x := 8; x <= 11; x++ {
			img.Set(x, y, models.Color{R: 60, G: 110, B: 110})
		}
	}
	chain := models.Chain{models.Seg(2, 10, 9, 10), models.Seg(9, 10, 17, 10)}
	bg := models.Color{R: 100, G: 100, B: 100}

	raw := CalculateRaw(img, chain, bg, 3)
	require.Equal(t, 17, raw.Len())
	assert.InDelta(t, 0.1, raw.Red[0], 1e-12)

	got := Calculate(img, chain, bg, 3)
	require.Equal(t, raw.Len(), got.Len())
	assert.InDelta(t, 0, got.Red[0], 1e-12)
	assert.InDelta(t, -0.5, got.Red[8], 1e-12)
	for i := range got.Green {
		assert.InDelta(t, 0, got.Green[i], 1e-12)
	}
}

func TestCalculateTopK(t *testing.T) {
	bg := models.Color{R: 100, G: 100, B: 100}
	img := uniformImage(10, 3, bg)
	img.Set(4, 1, models.Color{R: 50, G: 100, B: 100})
	chain := models.Chain{models.Seg(0, 1, 9, 1), models.Seg(0, 0, 9, 0)}

	p, stats := CalculateTopK(img, chain, bg, 3, DefaultTopK)
	assert.Equal(t, Calculate(img, chain, bg, 3), p)
	require.Len(t, stats, 2)
	assert.Equal(t, sampling.BandStats{Requested: 3, Used: 3}, stats[0])
	assert.Equal(t, sampling.BandStats{Requested: 3, Used: 2}, stats[1])
	assert.Equal(t, 20, p.Len())
}
