package visualization

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/vector"

	"opticalflake/internal/models"
	"opticalflake/pkg/analysis"
	"opticalflake/pkg/raster"
	"opticalflake/pkg/sampling"
)

// MeasurementColors cycles through line cut colours, picked to stay
// distinguishable on typical flake images
var MeasurementColors = []models.Color{
	{R: 0xFF, G: 0x6B, B: 0x6B},
	{R: 0x4E, G: 0xCD, B: 0xC4},
	{R: 0x45, G: 0xB7, B: 0xD1},
	{R: 0x96, G: 0xCE, B: 0xB4},
	{R: 0xFF, G: 0xEA, B: 0xA7},
	{R: 0xDD, G: 0xA0, B: 0xDD},
	{R: 0x98, G: 0xD8, B: 0xC8},
	{R: 0xF7, G: 0xDC, B: 0x6F},
	{R: 0xBB, G: 0x8F, B: 0xCE},
	{R: 0x85, G: 0xC1, B: 0xE9},
}

// BackgroundColor is the outline colour of the background region
var BackgroundColor = models.White

// RegionOpacity is the tint strength of the background region in DrawSession
const RegionOpacity = 0.25

// ErrUnknownFormat is returned by Save for unsupported file extensions
var ErrUnknownFormat = errors.New("unknown overlay image format")

// Overlay draws analysis geometry on a copy of the source image
type Overlay struct {
	img *models.RGBImage
}

// NewOverlay copies base so drawing never touches the analysed pixels
func NewOverlay(base *models.RGBImage) *Overlay {
	img := models.NewRGBImage(base.Width(), base.Height())
	copy(img.Pix, base.Pix)
	return &Overlay{img: img}
}

// ColorFor returns the palette colour of the i-th measurement
func ColorFor(i int) models.Color {
	if i < 0 {
		i = -i
	}
	return MeasurementColors[i%len(MeasurementColors)]
}

// DrawSegment rasterises one segment in c. Pixels outside the image are skipped.
func (o *Overlay) DrawSegment(s models.Segment, c models.Color) {
	for _, p := range raster.LineCoordinates(s) {
		o.img.Set(p.X, p.Y, c)
	}
}

// DrawPolygon outlines a closed polygon
func (o *Overlay) DrawPolygon(poly models.Polygon, c models.Color) {
	n := len(poly)
	for i := 0; i < n; i++ {
		o.DrawSegment(models.Segment{Start: poly[i], End: poly[(i+1)%n]}, c)
	}
}

// ShadeRegion blends c over the polygon interior, weighted by anti-aliased
// area coverage and opacity in [0, 1]
func (o *Overlay) ShadeRegion(poly models.Polygon, c models.Color, opacity float64) {
	w, h := o.img.Width(), o.img.Height()
	if len(poly) < 3 || w == 0 || h == 0 || opacity <= 0 {
		return
	}
	opacity = math.Min(opacity, 1)

	z := vector.NewRasterizer(w, h)
	z.MoveTo(float32(poly[0].X)+0.5, float32(poly[0].Y)+0.5)
	for _, p := range poly[1:] {
		z.LineTo(float32(p.X)+0.5, float32(p.Y)+0.5)
	}
	z.ClosePath()

	coverage := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(coverage, coverage.Bounds(), image.Opaque, image.Point{})

	blend := func(dst, src int, t float64) int {
		return int(math.Round(float64(dst)*(1-t) + float64(src)*t))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := coverage.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			t := opacity * float64(a) / 255
			px := o.img.At(x, y)
			o.img.Set(x, y, models.Color{
				R: blend(px.R, c.R, t),
				G: blend(px.G, c.G, t),
				B: blend(px.B, c.B, t),
			})
		}
	}
}

// DrawChain draws the centre line of every segment. For widths above 1 the
// outermost band lines are drawn as well, marking the averaged area.
func (o *Overlay) DrawChain(chain models.Chain, width int, c models.Color) {
	h := sampling.HalfWidth(width)
	for _, s := range chain {
		o.DrawSegment(s, c)
		if h == 0 {
			continue
		}
		o.DrawSegment(raster.OffsetParallel(s, float64(h)), c)
		o.DrawSegment(raster.OffsetParallel(s, -float64(h)), c)
	}
}

// DrawSession shades and outlines the background region, then draws all
// measurements of a session
func (o *Overlay) DrawSession(s *analysis.Session) {
	if poly := s.BackgroundPolygon(); len(poly) > 0 {
		o.ShadeRegion(poly, BackgroundColor, RegionOpacity)
		o.DrawPolygon(poly, BackgroundColor)
	}
	for i, m := range s.Measurements() {
		o.DrawChain(m.Chain, m.Width, ColorFor(i))
	}
}

// Image returns the overlay as an opaque NRGBA image
func (o *Overlay) Image() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, o.img.Width(), o.img.Height()))
	for y := 0; y < o.img.Height(); y++ {
		for x := 0; x < o.img.Width(); x++ {
			c := o.img.At(x, y)
			out.SetNRGBA(x, y, color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255})
		}
	}
	return out
}

// Save writes the overlay, choosing the encoder from the file extension
// (.png, .jpg/.jpeg, .tif/.tiff, .bmp)
func (o *Overlay) Save(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", ext)
	}

	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "error creating overlay file")
	}
	defer file.Close()

	img := o.Image()
	switch ext {
	case ".png":
		err = png.Encode(file, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		err = bmp.Encode(file, img)
	}
	if err != nil {
		return errors.Wrapf(err, "error encoding %s", filename)
	}
	return nil
}
