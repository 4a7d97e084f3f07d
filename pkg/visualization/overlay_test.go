package visualization

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"opticalflake/internal/models"
	"opticalflake/pkg/analysis"
	"opticalflake/pkg/imageio"
)

func grayImage(w, h int) *models.RGBImage {
	img := models.NewRGBImage(w, h)
	img.Fill(models.Color{R: 50, G: 50, B: 50})
	return img
}

// TestNewOverlayCopies verifies that drawing does not modify the source image
func TestNewOverlayCopies(t *testing.T) {
	base := grayImage(8, 8)
	o := NewOverlay(base)
	o.DrawSegment(models.Seg(0, 0, 7, 0), models.White)

	if got := base.At(3, 0); got.R != 50 {
		t.Errorf("Source pixel changed to %v", got)
	}
	if got := o.img.At(3, 0); got != models.White {
		t.Errorf("Expected overlay pixel white, got %v", got)
	}
}

// TestDrawPolygon verifies the outline is closed and the interior untouched
func TestDrawPolygon(t *testing.T) {
	o := NewOverlay(grayImage(10, 10))
	poly := models.RectanglePolygon(models.Pt(2, 2), models.Pt(6, 6))
	o.DrawPolygon(poly, models.White)

	for _, p := range []models.Point{{X: 2, Y: 2}, {X: 6, Y: 2}, {X: 6, Y: 6}, {X: 2, Y: 6}, {X: 2, Y: 4}, {X: 4, Y: 6}} {
		if got := o.img.At(p.X, p.Y); got != models.White {
			t.Errorf("Expected outline at %v, got %v", p, got)
		}
	}
	if got := o.img.At(4, 4); got == models.White {
		t.Errorf("Interior pixel should not be drawn")
	}
}

// TestShadeRegion verifies the interior is tinted and the outside untouched
func TestShadeRegion(t *testing.T) {
	o := NewOverlay(grayImage(10, 10))
	o.ShadeRegion(models.RectanglePolygon(models.Pt(2, 2), models.Pt(6, 6)), models.White, 0.5)

	// 50 halfway to 255
	if got := o.img.At(4, 4); got.R < 150 || got.R > 155 || got.R != got.B {
		t.Errorf("Expected interior near 153, got %v", got)
	}
	if got := o.img.At(0, 0); got.R != 50 {
		t.Errorf("Outside pixel changed to %v", got)
	}
	if got := o.img.At(8, 4); got.R != 50 {
		t.Errorf("Outside pixel changed to %v", got)
	}

	o.ShadeRegion(models.Polygon{{X: 0, Y: 0}, {X: 9, Y: 9}}, models.White, 1)
	if got := o.img.At(0, 0); got.R != 50 {
		t.Errorf("Degenerate region should not be shaded, got %v", got)
	}
}

// TestDrawChainBand verifies band edges are drawn for widths above 1
func TestDrawChainBand(t *testing.T) {
	red := models.Color{R: 255}
	chain := models.Chain{models.Seg(1, 5, 8, 5)}

	narrow := NewOverlay(grayImage(10, 10))
	narrow.DrawChain(chain, 1, red)
	if got := narrow.img.At(4, 3); got == red {
		t.Errorf("Width 1 should only draw the centre line")
	}

	wide := NewOverlay(grayImage(10, 10))
	wide.DrawChain(chain, 5, red)
	for _, y := range []int{3, 5, 7} {
		if got := wide.img.At(4, y); got != red {
			t.Errorf("Expected band line at y=%d, got %v", y, got)
		}
	}
	if got := wide.img.At(4, 4); got == red {
		t.Errorf("Inner band lines should not be drawn")
	}
}

// TestColorFor verifies the palette cycles
func TestColorFor(t *testing.T) {
	n := len(MeasurementColors)
	if ColorFor(0) != ColorFor(n) {
		t.Errorf("Palette should wrap after %d colours", n)
	}
	if ColorFor(0) == ColorFor(1) {
		t.Errorf("Adjacent measurements should differ in colour")
	}
}

// TestDrawSession verifies background and measurements are drawn from a session
func TestDrawSession(t *testing.T) {
	img := grayImage(20, 20)
	s := analysis.NewSession(img, nil)
	if _, err := s.SetBackgroundRect(context.Background(), models.Pt(0, 0), models.Pt(4, 4)); err != nil {
		t.Fatalf("Failed to set background: %v", err)
	}
	if _, err := s.AddMeasurement(models.Chain{models.Seg(2, 10, 17, 10)}, 1); err != nil {
		t.Fatalf("Failed to add measurement: %v", err)
	}

	o := NewOverlay(img)
	o.DrawSession(s)

	if got := o.img.At(4, 0); got != BackgroundColor {
		t.Errorf("Expected background outline, got %v", got)
	}
	if got := o.img.At(2, 2); got.R <= 50 || got == BackgroundColor {
		t.Errorf("Expected tinted background interior, got %v", got)
	}
	if got := o.img.At(10, 10); got != ColorFor(0) {
		t.Errorf("Expected measurement colour %v, got %v", ColorFor(0), got)
	}
}

// TestSave verifies overlays round-trip through the supported encoders
func TestSave(t *testing.T) {
	dir := t.TempDir()
	o := NewOverlay(grayImage(6, 4))
	o.DrawSegment(models.Seg(0, 1, 5, 1), models.White)

	for _, name := range []string{"out.png", "out.tiff", "out.bmp"} {
		path := filepath.Join(dir, name)
		if err := o.Save(path); err != nil {
			t.Fatalf("Failed to save %s: %v", name, err)
		}
		img, err := imageio.Load(path)
		if err != nil {
			t.Fatalf("Failed to reload %s: %v", name, err)
		}
		if img.Width() != 6 || img.Height() != 4 {
			t.Errorf("%s: expected 6x4, got %dx%d", name, img.Width(), img.Height())
		}
		if got := img.At(3, 1); got != models.White {
			t.Errorf("%s: expected white line pixel, got %v", name, got)
		}
		if got := img.At(3, 2); got.R != 50 {
			t.Errorf("%s: expected gray pixel, got %v", name, got)
		}
	}

	jpgPath := filepath.Join(dir, "out.jpg")
	if err := o.Save(jpgPath); err != nil {
		t.Fatalf("Failed to save jpeg: %v", err)
	}
	if _, err := os.Stat(jpgPath); err != nil {
		t.Errorf("JPEG file missing: %v", err)
	}
}

// TestSaveUnknownFormat verifies unsupported extensions are rejected before writing
func TestSaveUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif2")
	err := NewOverlay(grayImage(2, 2)).Save(path)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Expected ErrUnknownFormat, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("No file should be created for unknown formats")
	}
}

// TestImageOpaque verifies the exported image is fully opaque
func TestImageOpaque(t *testing.T) {
	img := NewOverlay(grayImage(3, 3)).Image()
	if !img.Opaque() {
		t.Errorf("Overlay image should be opaque")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "x.png"))
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Errorf("Failed to encode: %v", err)
	}
}
