package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRotateMovesCorners(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 0, red) // top-right

	tests := []struct {
		angle int
		size  image.Point
		at    image.Point
	}{
		{0, image.Pt(3, 2), image.Pt(2, 0)},
		{90, image.Pt(2, 3), image.Pt(0, 0)},
		{180, image.Pt(3, 2), image.Pt(0, 1)},
		{270, image.Pt(2, 3), image.Pt(1, 2)},
	}
	for _, tt := range tests {
		out, err := Rotate(src, tt.angle)
		require.NoError(t, err)
		require.Equal(t, tt.size, out.Bounds().Size(), "angle %d", tt.angle)
		r, _, _, _ := out.At(tt.at.X, tt.at.Y).RGBA()
		require.Equal(t, uint32(0xffff), r, "angle %d expected red at %v", tt.angle, tt.at)
	}
}

func TestRotateRejectsOddAngles(t *testing.T) {
	_, err := Rotate(image.NewRGBA(image.Rect(0, 0, 1, 1)), 45)
	require.Error(t, err)
}

func TestRotateHandlesOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 12))
	src.Set(10, 10, color.RGBA{G: 255, A: 255})
	out, err := Rotate(src, 180)
	require.NoError(t, err)
	_, g, _, _ := out.At(2, 1).RGBA()
	require.Equal(t, uint32(0xffff), g)
}

func TestDownscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := Downscale(src, 100)
	require.Equal(t, image.Pt(100, 50), out.Bounds().Size())

	require.Same(t, src, Downscale(src, 0).(*image.RGBA))
	require.Same(t, src, Downscale(src, 1000).(*image.RGBA))
}
