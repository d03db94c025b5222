package main

import (
	"github.com/spf13/cobra"

	"github.com/idextract/idextract/internal/config"
	"github.com/idextract/idextract/internal/ocr"
	"github.com/idextract/idextract/pkg/logger"
)

// recognizerFactory builds the OCR engine; tests swap it for a fake.
type recognizerFactory func(cfg config.OCRConfig) ocr.Recognizer

func newRootCmd(newRecognizer recognizerFactory) *cobra.Command {
	var cfg *config.Config
	root := &cobra.Command{
		Use:           "idextract-cli",
		Short:         "Extract identity document fields from local images",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			c, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger.Init(c.LogLevel)
			cfg = c
			return nil
		},
	}
	root.AddCommand(newExtractCmd(func() *config.Config { return cfg }, newRecognizer))
	root.AddCommand(newTokenCmd(func() *config.Config { return cfg }))
	return root
}
