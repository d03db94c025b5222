package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotAccessible is returned when the image URL answers with a non-200 status.
var ErrNotAccessible = errors.New("image URL not accessible")

// ErrTooLarge is returned when the body exceeds the configured limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// Error wraps any failure to download or decode an image. The HTTP layer
// maps it to 400.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Image is a decoded image plus the raw bytes it was decoded from.
type Image struct {
	Image       image.Image
	Format      string
	ContentType string
	Data        []byte
}

// Fetcher downloads and decodes one image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Image, error)
}

// Downloader is the net/http backed Fetcher.
type Downloader struct {
	client   *http.Client
	maxBytes int64
}

// NewDownloader returns a Downloader with the given per-request timeout and
// body size limit. A zero maxBytes disables the limit.
func NewDownloader(timeout time.Duration, maxBytes int64) *Downloader {
	return &Downloader{client: &http.Client{Timeout: timeout}, maxBytes: maxBytes}
}

// Fetch downloads url and decodes the body. Every failure comes back as *Error.
func (d *Downloader) Fetch(ctx context.Context, url string) (*Image, error) {
	data, ctype, err := d.get(ctx, url)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	img, err := Decode(data)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	img.ContentType = ctype
	return img, nil
}

func (d *Downloader) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", ErrNotAccessible
	}

	var body io.Reader = resp.Body
	if d.maxBytes > 0 {
		body = io.LimitReader(resp.Body, d.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, "", ErrTooLarge
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Decode decodes raw image bytes in any registered format.
func Decode(data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &Image{Image: img, Format: format, ContentType: "image/" + format, Data: data}, nil
}
