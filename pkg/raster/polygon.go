package raster

import (
	"errors"

	"opticalflake/internal/models"
)

// ErrInsufficientPoints is returned for polygons with fewer than 3 vertices
var ErrInsufficientPoints = errors.New("polygon needs at least 3 points")

// Mask is a boolean membership grid over an image's pixel coordinates
type Mask struct {
	W, H int
	bits []bool
}

// NewMask allocates an empty w x h mask
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Mask{W: w, H: h, bits: make([]bool, w*h)}
}

// At reports membership of (x, y); out-of-bounds coordinates are never members
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return false
	}
	return m.bits[y*m.W+x]
}

// Set marks (x, y) as a member; out-of-bounds coordinates are ignored
func (m *Mask) Set(x, y int) {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return
	}
	m.bits[y*m.W+x] = true
}

// Count returns the number of member pixels
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// PointInPolygon reports whether p lies inside poly by casting a ray towards +x.
// Points exactly on an edge may go either way.
func PointInPolygon(p models.Point, poly models.Polygon) bool {
	if len(poly) < 3 {
		return false
	}

	px, py := float64(p.X), float64(p.Y)
	inside := false
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		ax, ay := float64(a.X), float64(a.Y)
		bx, by := float64(b.X), float64(b.Y)
		if (ay > py) != (by > py) && px < (bx-ax)*(py-ay)/(by-ay)+ax {
			inside = !inside
		}
	}
	return inside
}

// PolygonMask fills a polygon over a w x h grid. A pixel is a member when its
// centre lies inside the polygon or when the polygon outline passes through
// it, so boundary pixels are included.
func PolygonMask(w, h int, poly models.Polygon) (*Mask, error) {
	if len(poly) < 3 {
		return nil, ErrInsufficientPoints
	}

	mask := NewMask(w, h)
	if w == 0 || h == 0 {
		return mask, nil
	}

	minX, minY, maxX, maxY := bounds(poly)
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > w-1 {
		maxX = w - 1
	}
	if maxY > h-1 {
		maxY = h - 1
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if PointInPolygon(models.Point{X: x, Y: y}, poly) {
				mask.bits[y*w+x] = true
			}
		}
	}

	for i := range poly {
		edge := models.Segment{Start: poly[i], End: poly[(i+1)%len(poly)]}
		for _, p := range LineCoordinates(edge) {
			mask.Set(p.X, p.Y)
		}
	}

	return mask, nil
}

func bounds(poly models.Polygon) (minX, minY, maxX, maxY int) {
	minX, minY = poly[0].X, poly[0].Y
	maxX, maxY = minX, minY
	for _, p := range poly[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
