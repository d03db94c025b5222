package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idextract/idextract/internal/kyc"
)

// FileSnapshot keeps the collection as a JSON array in a single file.
type FileSnapshot struct {
	path string
}

func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

func (f *FileSnapshot) Path() string { return f.path }

func (f *FileSnapshot) Load(ctx context.Context) ([]kyc.Record, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []kyc.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return []kyc.Record{}, nil
	}
	var out []kyc.Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, f.path, err)
	}
	if out == nil {
		out = []kyc.Record{}
	}
	return out, nil
}

// Save writes the collection to a temp file next to the target and renames
// it into place, so readers never see a half written snapshot.
func (f *FileSnapshot) Save(ctx context.Context, records []kyc.Record) error {
	if records == nil {
		records = []kyc.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Ping checks that a temp file can be created next to the snapshot, which is
// the first step of every Save.
func (f *FileSnapshot) Ping(ctx context.Context) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".ping-*")
	if err != nil {
		return fmt.Errorf("snapshot directory not writable: %w", err)
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}
