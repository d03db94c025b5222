package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/idextract/idextract/internal/kyc"
	"github.com/idextract/idextract/internal/kyc/repository"
	"github.com/idextract/idextract/pkg/logger"
	"github.com/idextract/idextract/pkg/metrics"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrIncomplete = errors.New("record is missing required fields")
)

// Outcome is the result of a successful Save.
type Outcome int

const (
	Saved Outcome = iota
	AlreadyExists
)

func (o Outcome) String() string {
	if o == AlreadyExists {
		return "exists"
	}
	return "saved"
}

// RecordStore owns the record collection. The collection is loaded once when
// the store is opened and mirrored in memory afterwards; every save is
// serialized behind a single lock.
type RecordStore struct {
	mu       sync.RWMutex
	snapshot repository.Snapshot
	export   repository.Exporter
	cache    repository.Cache
	records  []kyc.Record
	index    map[string]int // identity number -> position in records
	log      *logger.Component
}

// OpenStore loads the snapshot. A missing snapshot yields an empty store; a
// corrupt one is returned as an error wrapping repository.ErrCorruptSnapshot.
func OpenStore(ctx context.Context, snap repository.Snapshot, export repository.Exporter, cache repository.Cache) (*RecordStore, error) {
	records, err := snap.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s := &RecordStore{
		snapshot: snap,
		export:   export,
		cache:    cache,
		index:    make(map[string]int, len(records)),
		log:      logger.Named("store"),
	}
	for _, r := range records {
		if _, dup := s.index[r.IdentityNumber]; dup {
			s.log.Warnf("snapshot holds identity %s twice, keeping the first", r.IdentityNumber)
			continue
		}
		s.index[r.IdentityNumber] = len(s.records)
		s.records = append(s.records, r)
	}
	s.log.Infof("loaded %d records", len(s.records))
	return s, nil
}

// Save persists rec unless a record with the same identity number exists.
// A new record is appended in memory, the snapshot is rewritten and a row is
// exported; the cache write is best effort and never fails the save. A save
// that has started is not cancelled with ctx.
func (s *RecordStore) Save(ctx context.Context, rec kyc.Record) (Outcome, error) {
	if missing := rec.Missing(); len(missing) > 0 {
		return Saved, fmt.Errorf("%w: %v", ErrIncomplete, missing)
	}
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[rec.IdentityNumber]; ok {
		return AlreadyExists, nil
	}

	next := make([]kyc.Record, len(s.records), len(s.records)+1)
	copy(next, s.records)
	next = append(next, rec)
	if err := s.snapshot.Save(ctx, next); err != nil {
		return Saved, fmt.Errorf("write snapshot: %w", err)
	}
	s.index[rec.IdentityNumber] = len(s.records)
	s.records = next

	// The record is committed once the snapshot holds it, so the cache is
	// written even when the export row fails.
	var exportErr error
	if s.export != nil {
		if err := s.export.Append(ctx, rec); err != nil {
			exportErr = fmt.Errorf("append export: %w", err)
		}
	}
	s.putCache(ctx, rec)
	if exportErr != nil {
		return Saved, exportErr
	}
	return Saved, nil
}

func (s *RecordStore) putCache(ctx context.Context, rec kyc.Record) {
	c, ok := s.cache.Get()
	if !ok {
		s.log.Debugf("cache unavailable, skipping %s", rec.IdentityNumber)
		return
	}
	if err := c.Put(ctx, rec); err != nil {
		metrics.CacheWriteFailures.Inc()
		s.log.Warnf("cache write for %s failed: %v", rec.IdentityNumber, err)
	}
}

// Lookup returns the stored record for identity, trying the cache first.
func (s *RecordStore) Lookup(ctx context.Context, identity string) (kyc.Record, error) {
	if c, ok := s.cache.Get(); ok {
		rec, err := c.Get(ctx, identity)
		if err != nil {
			s.log.Warnf("cache read for %s failed: %v", identity, err)
		} else if rec != nil {
			return *rec, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[identity]
	if !ok {
		return kyc.Record{}, ErrNotFound
	}
	return s.records[i], nil
}

// Ready reports whether the snapshot backend can take a save.
func (s *RecordStore) Ready(ctx context.Context) error {
	return s.snapshot.Ping(ctx)
}

// Count returns the number of stored records.
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a copy of the collection in insertion order.
func (s *RecordStore) Records() []kyc.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]kyc.Record(nil), s.records...)
}
