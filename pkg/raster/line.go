// Package raster converts continuous geometry (line segments, polygons) into
// discrete pixel coordinates.
package raster

import (
	"opticalflake/internal/models"
)

// LineCoordinates returns the 8-connected pixels of a segment using Bresenham's
// error-accumulation walk. The first and last points are the segment endpoints
// and a degenerate segment yields a single point.
//
// The walk always runs from the endpoint with the smaller major-axis coordinate
// and is reversed afterwards when needed, so a reversed segment produces exactly
// the reversed sequence.
func LineCoordinates(s models.Segment) []models.Point {
	x1, y1 := s.Start.X, s.Start.Y
	x2, y2 := s.End.X, s.End.Y

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	steep := dy > dx
	if steep {
		x1, y1 = y1, x1
		x2, y2 = y2, x2
		dx, dy = dy, dx
	}

	reversed := false
	if x1 > x2 || (x1 == x2 && y1 > y2) {
		x1, y1, x2, y2 = x2, y2, x1, y1
		reversed = true
	}

	// x always advances; only the minor axis may step backwards
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	points := make([]models.Point, 0, dx+1)
	for {
		if steep {
			points = append(points, models.Point{X: y1, Y: x1})
		} else {
			points = append(points, models.Point{X: x1, Y: y1})
		}

		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x1++
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}

	if reversed {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return points
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
