package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/gzip"

	"github.com/lromero/covid-data-pipeline/internal/covid"
)

// ParquetArchive writes enriched snapshots as gzip-compressed parquet files.
type ParquetArchive struct{}

// NewParquetArchive creates a new ParquetArchive.
func NewParquetArchive() *ParquetArchive {
	return &ParquetArchive{}
}

// Persist writes one row per record to path, creating parent directories as
// needed. The file is rewritten in full on every run; nil metric pointers
// become nulls in the optional columns.
func (a *ParquetArchive) Persist(records []covid.EnrichedRecord, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := parquet.NewGenericWriter[covid.EnrichedRecord](f, parquet.Compression(&gzip.Codec{}))
	if _, err := w.Write(records); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}

	return f.Close()
}
