// Package csvfile implements the flat-file persistence primitive shared by
// the catalog and the sales ledger: one CSV file per entity type with a
// fixed, known-ahead-of-time column layout.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
)

// Table is a single CSV-backed collection of records. The file is created
// lazily with just the header row on first access, and every mutation
// rewrites the whole file. Table is not safe for concurrent use; callers
// serialize access.
type Table struct {
	path   string
	header []string
	logger *slog.Logger
}

// NewTable creates a Table backed by the file at path with the given
// ordered column layout. No I/O happens until the table is first used.
func NewTable(path string, header []string, logger *slog.Logger) *Table {
	return &Table{
		path:   path,
		header: header,
		logger: logger.With("component", "csvfile", "path", path),
	}
}

// Path returns the location of the backing file.
func (t *Table) Path() string {
	return t.path
}

// EnsureExists creates the parent directory and the backing file with a
// header row if the file does not exist yet.
func (t *Table) EnsureExists() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", t.path, err)
	}
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", t.path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", t.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", t.path, err)
	}
	return nil
}

// ReadAll returns every data record in the file, header excluded. Records
// are returned as raw string fields; the caller owns type conversion. A
// record that the CSV reader cannot parse ends the read: the records
// collected so far are returned and the failure is logged, so one corrupt
// tail does not block access to the rest of the collection.
func (t *Table) ReadAll() ([][]string, error) {
	if err := t.EnsureExists(); err != nil {
		return nil, err
	}
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.logger.Warn("aborting read on malformed CSV data, keeping records read so far",
				"records", len(records), "error", err)
			break
		}
		if first {
			first = false // header row
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// WriteAll rewrites the whole file: header first, then every record. There
// is no in-place row update for a flat ordered file, so this is the single
// mutation path for create, update and delete alike.
func (t *Table) WriteAll(records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", t.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", t.path, err)
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write record to %s: %w", t.path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", t.path, err)
	}
	return nil
}

// DecimalField converts a CSV field to a decimal. An empty field reads as
// zero; anything else must parse.
func DecimalField(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// IntField converts a CSV field to an integer. An empty field reads as
// zero; anything else must parse.
func IntField(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
