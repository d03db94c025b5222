package repository

import (
	"context"
	"sync"

	"github.com/idextract/idextract/internal/kyc"
)

// MemorySnapshot is an in-memory Snapshot used by tests and the CLI when
// nothing should touch disk. FailSave makes the next Save calls fail.
type MemorySnapshot struct {
	mu       sync.RWMutex
	records  []kyc.Record
	saves    int
	FailSave error
}

func NewMemorySnapshot(initial ...kyc.Record) *MemorySnapshot {
	return &MemorySnapshot{records: append([]kyc.Record(nil), initial...)}
}

func (m *MemorySnapshot) Load(ctx context.Context) ([]kyc.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]kyc.Record{}, m.records...), nil
}

func (m *MemorySnapshot) Save(ctx context.Context, records []kyc.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	m.records = append([]kyc.Record{}, records...)
	m.saves++
	return nil
}

// Saves reports how many successful Save calls were made.
func (m *MemorySnapshot) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MemorySnapshot) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.FailSave
}
