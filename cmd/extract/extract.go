package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idextract/idextract/internal/config"
	"github.com/idextract/idextract/internal/database"
	"github.com/idextract/idextract/internal/fetch"
	"github.com/idextract/idextract/internal/kyc"
	"github.com/idextract/idextract/internal/kyc/repository"
	"github.com/idextract/idextract/internal/kyc/service"
	"github.com/idextract/idextract/internal/ocr"
)

type extractOptions struct {
	front  string
	back   string
	userID string
	save   bool
}

func newExtractCmd(cfg func() *config.Config, newRecognizer recognizerFactory) *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Read the front and back image of a document and print the record",
		Long: `Runs the orientation search and field extraction on two local image
files. The record is printed as JSON; with --save it is also stored exactly
as the HTTP service would store it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, cfg(), newRecognizer, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.front, "front", "f", "", "front side image (required)")
	cmd.Flags().StringVarP(&opts.back, "back", "b", "", "back side image (required)")
	cmd.Flags().StringVarP(&opts.userID, "user", "u", "", "user id attached to the record")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the record to the configured snapshot and export")
	cmd.MarkFlagRequired("front")
	cmd.MarkFlagRequired("back")
	return cmd
}

func readImage(path string) (*fetch.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := fetch.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func runExtract(cmd *cobra.Command, cfg *config.Config, newRecognizer recognizerFactory, opts extractOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	front, err := readImage(opts.front)
	if err != nil {
		return err
	}
	back, err := readImage(opts.back)
	if err != nil {
		return err
	}

	policy, err := ocr.ParseZeroMatchPolicy(cfg.OCR.ZeroMatch)
	if err != nil {
		return err
	}
	selector := ocr.NewSelector(newRecognizer(cfg.OCR), policy)

	var saver service.Saver
	if opts.save {
		store, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		saver = store
	}

	p := service.NewPipeline(nil, selector, saver, service.PipelineConfig{Languages: cfg.OCR.Languages, Workers: cfg.OCR.Workers})
	rec, err := p.Extract(ctx, opts.userID, front.Image, back.Image)
	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")

	var verr *kyc.ValidationError
	if errors.As(err, &verr) {
		_ = out.Encode(map[string]interface{}{
			"error":          "Essential fields missing",
			"missing_fields": verr.MissingNames(),
			"text":           verr.Text(),
		})
		return verr
	}
	if err != nil {
		return err
	}

	status := ""
	if saver != nil {
		outcome, err := saver.Save(ctx, rec)
		if err != nil {
			return err
		}
		status = outcome.String()
	}
	return out.Encode(map[string]interface{}{"status": status, "data": rec})
}

// openStore opens the configured snapshot backend with the CSV export. The
// cache is left unavailable; the CLI never talks to Redis.
func openStore(ctx context.Context, cfg *config.Config) (*service.RecordStore, func(), error) {
	closeFn := func() {}
	var snap repository.Snapshot = repository.NewFileSnapshot(cfg.Storage.SnapshotPath)
	if cfg.Storage.SnapshotBackend == "mongo" {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() { _ = client.Disconnect(context.Background()) }
		ms, err := repository.NewMongoSnapshot(ctx, database.Collection(client, cfg.MongoDB))
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		snap = ms
	}
	store, err := service.OpenStore(ctx, snap, repository.NewCSVExport(cfg.Storage.ExportPath), repository.Unavailable())
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}
