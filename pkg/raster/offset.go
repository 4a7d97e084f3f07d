package raster

import (
	"math"

	"opticalflake/internal/models"
)

// OffsetParallel shifts a segment by offset pixels along its unit normal
// (-dy, dx)/|d| and rounds the endpoints half-to-even. Positive and negative
// offsets land on opposite sides. A zero-length segment is returned unchanged.
func OffsetParallel(s models.Segment, offset float64) models.Segment {
	dx := float64(s.End.X - s.Start.X)
	dy := float64(s.End.Y - s.Start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return s
	}

	ox := offset * (-dy / length)
	oy := offset * (dx / length)

	return models.Segment{
		Start: shift(s.Start, ox, oy),
		End:   shift(s.End, ox, oy),
	}
}

func shift(p models.Point, ox, oy float64) models.Point {
	return models.Point{
		X: int(math.RoundToEven(float64(p.X) + ox)),
		Y: int(math.RoundToEven(float64(p.Y) + oy)),
	}
}
