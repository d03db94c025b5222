package service

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/idextract/idextract/internal/fetch"
	"github.com/idextract/idextract/internal/kyc"
	"github.com/idextract/idextract/internal/kyc/extract"
	"github.com/idextract/idextract/pkg/logger"
	"github.com/idextract/idextract/pkg/metrics"
)

// TextSelector returns the best OCR text of an image.
type TextSelector interface {
	SelectBestText(ctx context.Context, img image.Image, languages []string) (string, error)
}

// Saver persists assembled records.
type Saver interface {
	Save(ctx context.Context, rec kyc.Record) (Outcome, error)
}

// Archiver stores the raw uploaded images. Archive failures are logged only.
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) error
}

// Request is one front/back extraction request.
type Request struct {
	UserID   string
	FrontURL string
	BackURL  string
}

// Result is a saved (or already known) record.
type Result struct {
	Outcome Outcome
	Record  kyc.Record
}

type PipelineConfig struct {
	Languages []string
	// Workers bounds the number of images under OCR at once, process wide.
	Workers int
	// Archive is optional.
	Archive Archiver
}

// Pipeline fetches both sides of a document, reads them and stores the record.
type Pipeline struct {
	fetcher   fetch.Fetcher
	selector  TextSelector
	store     Saver
	archive   Archiver
	languages []string
	sem       *semaphore.Weighted
	log       *logger.Component
	now       func() time.Time
}

func NewPipeline(fetcher fetch.Fetcher, selector TextSelector, store Saver, cfg PipelineConfig) *Pipeline {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		fetcher:   fetcher,
		selector:  selector,
		store:     store,
		archive:   cfg.Archive,
		languages: cfg.Languages,
		sem:       semaphore.NewWeighted(int64(workers)),
		log:       logger.Named("pipeline"),
		now:       time.Now,
	}
}

// Process runs a full request. Errors are *fetch.Error for download
// problems, *kyc.ValidationError for incomplete extractions, anything else
// for OCR or persistence failures.
func (p *Pipeline) Process(ctx context.Context, req Request) (Result, error) {
	var front, back *fetch.Image
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		front, err = p.fetcher.Fetch(gctx, req.FrontURL)
		return err
	})
	g.Go(func() (err error) {
		back, err = p.fetcher.Fetch(gctx, req.BackURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// Once both downloads are in, the request runs to completion even if the
	// caller goes away.
	ctx = context.WithoutCancel(ctx)
	p.archiveImages(ctx, req.UserID, front, back)

	rec, err := p.Extract(ctx, req.UserID, front.Image, back.Image)
	if err != nil {
		return Result{}, err
	}
	outcome, err := p.store.Save(ctx, rec)
	if err != nil {
		return Result{}, err
	}
	p.log.Infof("identity %s %s for user %q", rec.IdentityNumber, outcome, req.UserID)
	return Result{Outcome: outcome, Record: rec}, nil
}

// Extract reads both images and assembles the record without saving it.
func (p *Pipeline) Extract(ctx context.Context, userID string, frontImg, backImg image.Image) (kyc.Record, error) {
	var frontText, backText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		frontText, err = p.read(gctx, kyc.Front, frontImg)
		return err
	})
	g.Go(func() (err error) {
		backText, err = p.read(gctx, kyc.Back, backImg)
		return err
	})
	if err := g.Wait(); err != nil {
		return kyc.Record{}, err
	}

	rec, verr := kyc.Assemble(
		extract.Extract(frontText, kyc.Front),
		extract.Extract(backText, kyc.Back),
		userID, frontText, backText,
	)
	if verr != nil {
		p.log.Infof("extraction incomplete, missing %v", verr.MissingNames())
		return kyc.Record{}, verr
	}
	return rec, nil
}

func (p *Pipeline) read(ctx context.Context, side kyc.Side, img image.Image) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	start := time.Now()
	text, err := p.selector.SelectBestText(ctx, img, p.languages)
	metrics.OCRDuration.WithLabelValues(side.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%s side: %w", side, err)
	}
	p.log.Debugf("%s side read %d chars in %s", side, len(text), time.Since(start))
	return text, nil
}

func (p *Pipeline) archiveImages(ctx context.Context, userID string, front, back *fetch.Image) {
	if p.archive == nil {
		return
	}
	if userID == "" {
		userID = "anonymous"
	}
	stamp := p.now().UTC().Format("20060102T150405.000000000")
	for side, img := range map[kyc.Side]*fetch.Image{kyc.Front: front, kyc.Back: back} {
		key := fmt.Sprintf("%s/%s-%s.%s", userID, stamp, side, img.Format)
		if err := p.archive.Archive(ctx, key, img.Data, img.ContentType); err != nil {
			p.log.Warnf("archive %s failed: %v", key, err)
		}
	}
}
