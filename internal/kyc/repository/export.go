package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jszwec/csvutil"

	"github.com/idextract/idextract/internal/kyc"
)

// Exporter appends one row per newly saved record.
type Exporter interface {
	Append(ctx context.Context, rec kyc.Record) error
}

// CSVExport appends records to a CSV file. The header row is written only
// when the file does not exist yet or is empty.
type CSVExport struct {
	mu   sync.Mutex
	path string
}

func NewCSVExport(path string) *CSVExport {
	return &CSVExport{path: path}
}

func (e *CSVExport) Append(ctx context.Context, rec kyc.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	needHeader := true
	if st, err := os.Stat(e.path); err == nil {
		needHeader = st.Size() == 0
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat export: %w", err)
	}

	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = needHeader
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode export row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

// ReadCSVExport decodes every row of an export file.
func ReadCSVExport(path string) ([]kyc.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []kyc.Record
	if err := csvutil.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return out, nil
}
