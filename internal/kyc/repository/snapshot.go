package repository

import (
	"context"
	"errors"

	"github.com/idextract/idextract/internal/kyc"
)

// ErrCorruptSnapshot is returned by Load when the persisted collection exists
// but cannot be read back.
var ErrCorruptSnapshot = errors.New("snapshot is corrupt")

// Snapshot is the durable copy of the whole record collection. Save replaces
// the previous contents; Load returns records in insertion order and an empty
// slice when nothing was saved yet. Ping reports whether a Save could
// currently succeed.
type Snapshot interface {
	Load(ctx context.Context) ([]kyc.Record, error)
	Save(ctx context.Context, records []kyc.Record) error
	Ping(ctx context.Context) error
}
