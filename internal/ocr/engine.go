// Package ocr wraps the OCR engine and picks the most plausible text among
// the four right-angle orientations of a photographed document.
package ocr

import (
	"context"
	"image"
)

// Recognizer converts an image to text. Implementations must be safe for
// concurrent use by independent requests.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, languages []string) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, img image.Image, languages []string) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image, languages []string) (string, error) {
	return f(ctx, img, languages)
}
