// Package tesseract provides the gosseract backed OCR engine. It needs
// libtesseract at build time, so it lives apart from the pure Go ocr package.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/idextract/idextract/internal/config"
	"github.com/idextract/idextract/internal/ocr"
	"github.com/otiai10/gosseract/v2"
)

// Engine implements ocr.Recognizer with a fresh gosseract client per call,
// so concurrent requests never share tesseract state.
type Engine struct {
	clientFactory func() *gosseract.Client
	// MaxDimension downscales images whose longest side exceeds it before
	// recognition. Zero disables scaling.
	MaxDimension int
	// Variables are passed to tesseract as-is (e.g. "tessedit_pageseg_mode").
	Variables map[string]string
}

// NewEngine constructs a Tesseract-backed recognizer from the OCR settings.
func NewEngine(cfg config.OCRConfig) *Engine {
	vars := make(map[string]string, len(cfg.Variables))
	for k, v := range cfg.Variables {
		vars[k] = v
	}
	return &Engine{clientFactory: gosseract.NewClient, MaxDimension: cfg.MaxDimension, Variables: vars}
}

func (e *Engine) Recognize(ctx context.Context, img image.Image, languages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := ocr.EncodePNG(ocr.Downscale(img, e.MaxDimension))
	if err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	for k, v := range e.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return "", fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Version reports the linked tesseract version.
func (e *Engine) Version() string {
	c := e.clientFactory()
	defer c.Close()
	return c.Version()
}
