// Command idextract-cli runs the extractor on local image files.
package main

import (
	"os"

	"github.com/idextract/idextract/internal/config"
	"github.com/idextract/idextract/internal/ocr"
	"github.com/idextract/idextract/internal/ocr/tesseract"
)

func main() {
	root := newRootCmd(func(cfg config.OCRConfig) ocr.Recognizer { return tesseract.NewEngine(cfg) })
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
