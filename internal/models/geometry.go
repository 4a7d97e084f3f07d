package models

import (
	"errors"
	"fmt"
)

// ErrShortPolyline is returned when a poly-line has fewer than two points
var ErrShortPolyline = errors.New("poly-line needs at least 2 points")

// Point is an integer pixel coordinate in image space
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Segment is a directed line between two pixel coordinates.
// Direction only affects the order of sampled values, never the values themselves.
type Segment struct {
	Start Point `yaml:"start"`
	End   Point `yaml:"end"`
}

// Seg builds a segment from raw coordinates
func Seg(x1, y1, x2, y2 int) Segment {
	return Segment{Start: Pt(x1, y1), End: Pt(x2, y2)}
}

// IsDegenerate reports whether both endpoints coincide
func (s Segment) IsDegenerate() bool {
	return s.Start == s.End
}

// Chain is the ordered list of segments making up one line cut.
// Each segment is sampled independently and results are concatenated in order.
type Chain []Segment

// ChainFromPoints turns a poly-line into the chain of its consecutive segments
func ChainFromPoints(points []Point) (Chain, error) {
	if len(points) < 2 {
		return nil, ErrShortPolyline
	}

	chain := make(Chain, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		chain = append(chain, Segment{Start: points[i], End: points[i+1]})
	}
	return chain, nil
}

// Points returns the poly-line vertices of the chain
func (c Chain) Points() []Point {
	if len(c) == 0 {
		return nil
	}
	points := make([]Point, 0, len(c)+1)
	points = append(points, c[0].Start)
	for _, s := range c {
		points = append(points, s.End)
	}
	return points
}

// Polygon is a closed region; the last vertex implicitly connects to the first
type Polygon []Point

// RectanglePolygon expands two opposite corners into a 4-vertex polygon,
// clockwise starting from a.
func RectanglePolygon(a, b Point) Polygon {
	return Polygon{
		{X: a.X, Y: a.Y},
		{X: b.X, Y: a.Y},
		{X: b.X, Y: b.Y},
		{X: a.X, Y: b.Y},
	}
}
