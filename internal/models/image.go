package models

import (
	"image"
	"image/color"
)

// Color is an RGB triple with channel values in [0, 255]
type Color struct {
	R int `yaml:"r"`
	G int `yaml:"g"`
	B int `yaml:"b"`
}

// White is the fallback background used when a region covers no pixels
var White = Color{R: 255, G: 255, B: 255}

// Channels returns the triple as floats in R, G, B order
func (c Color) Channels() [3]float64 {
	return [3]float64{float64(c.R), float64(c.G), float64(c.B)}
}

// RGBImage is a read-only (once built) grid of 8-bit RGB pixels with its
// origin at (0, 0). It is safe for concurrent readers.
type RGBImage struct {
	// Pix holds the pixels in row-major order, 3 bytes per pixel
	Pix []uint8

	// Stride is the distance in bytes between vertically adjacent pixels
	Stride int

	// W and H are the image dimensions in pixels
	W, H int
}

// NewRGBImage allocates a black w x h image
func NewRGBImage(w, h int) *RGBImage {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &RGBImage{
		Pix:    make([]uint8, 3*w*h),
		Stride: 3 * w,
		W:      w,
		H:      h,
	}
}

// FromImage copies any Go image into an RGBImage. Alpha is discarded and
// grayscale sources map to r = g = b. The source origin is moved to (0, 0).
func FromImage(src image.Image) *RGBImage {
	b := src.Bounds()
	img := NewRGBImage(b.Dx(), b.Dy())
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			img.Set(x, y, Color{R: int(c.R), G: int(c.G), B: int(c.B)})
		}
	}
	return img
}

// Width returns the number of columns
func (m *RGBImage) Width() int { return m.W }

// Height returns the number of rows
func (m *RGBImage) Height() int { return m.H }

// In reports whether (x, y) lies within [0, W) x [0, H)
func (m *RGBImage) In(x, y int) bool {
	return x >= 0 && x < m.W && y >= 0 && y < m.H
}

// At returns the pixel at (x, y). The caller must check In first.
func (m *RGBImage) At(x, y int) Color {
	i := y*m.Stride + 3*x
	return Color{R: int(m.Pix[i]), G: int(m.Pix[i+1]), B: int(m.Pix[i+2])}
}

// Set writes a pixel, clamping channels to [0, 255]. Out-of-bounds writes are ignored.
func (m *RGBImage) Set(x, y int, c Color) {
	if !m.In(x, y) {
		return
	}
	i := y*m.Stride + 3*x
	m.Pix[i] = clampChannel(c.R)
	m.Pix[i+1] = clampChannel(c.G)
	m.Pix[i+2] = clampChannel(c.B)
}

// Fill paints every pixel with c
func (m *RGBImage) Fill(c Color) {
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			m.Set(x, y, c)
		}
	}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
