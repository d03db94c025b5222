package tesseract

import (
	"context"
	"image"
	"image/color"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/idextract/idextract/internal/config"
)

func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

// renderText draws lines of text in black on white, one per 20px, scaled up
// 4x so the bitmap font is large enough to recognize.
func renderText(lines ...string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 320, 40+20*len(lines)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: img, Src: image.Black, Face: basicfont.Face7x13}
	for i, l := range lines {
		d.Dot = fixed.P(10, 30+20*i)
		d.DrawString(l)
	}
	big := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx()*4, img.Bounds().Dy()*4))
	draw.NearestNeighbor.Scale(big, big.Bounds(), img, img.Bounds(), draw.Src, nil)
	return big
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	text, err := NewEngine(config.OCRConfig{Variables: map[string]string{"tessedit_pageseg_mode": "6"}}).Recognize(context.Background(), renderText("Hello Card"), []string{"eng"})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(text), "hello") {
		t.Fatalf("expected recognized text to contain hello, got %q", text)
	}
}

func TestNewEngineCopiesSettings(t *testing.T) {
	vars := map[string]string{"tessedit_pageseg_mode": "6"}
	e := NewEngine(config.OCRConfig{MaxDimension: 1200, Variables: vars})
	vars["tessedit_pageseg_mode"] = "3"

	if e.MaxDimension != 1200 {
		t.Fatalf("MaxDimension = %d, want 1200", e.MaxDimension)
	}
	if got := e.Variables["tessedit_pageseg_mode"]; got != "6" {
		t.Fatalf("Variables[tessedit_pageseg_mode] = %q, want 6", got)
	}
}
