package ocr

import (
	"fmt"
	"image"
	"image/draw"
)

// Angles are the rotations tried by the selector, in order.
var Angles = []int{0, 90, 180, 270}

// Rotate turns img counter-clockwise by a multiple of 90 degrees. The output
// canvas is sized to the rotated image (width and height swap for 90 and
// 270), so nothing is cropped.
func Rotate(img image.Image, angle int) (image.Image, error) {
	angle = ((angle % 360) + 360) % 360
	if angle%90 != 0 {
		return nil, fmt.Errorf("rotate: unsupported angle %d", angle)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if angle == 0 {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst, nil
	}

	var dst *image.RGBA
	if angle == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch angle {
			case 90:
				dst.Set(y, w-1-x, c)
			case 180:
				dst.Set(w-1-x, h-1-y, c)
			case 270:
				dst.Set(h-1-y, x, c)
			}
		}
	}
	return dst, nil
}
