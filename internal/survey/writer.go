package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
)

const bytesPerMB = 1024 * 1024

// TableOptions controls table output.
type TableOptions struct {
	// Delimiter separates cells. Zero means ','.
	Delimiter rune

	// ProgressEvery logs a progress line every N rows. Zero disables it.
	ProgressEvery int

	// Logger receives progress and summary lines. Nil disables logging.
	Logger *logging.Logger
}

// Columns returns the output header for records: the canonical fields in
// fixed order, then every extra column in the union, sorted.
func Columns(records []Record) []string {
	seen := make(map[string]bool)
	var extras []string
	for _, r := range records {
		for k := range r.Extras {
			if !seen[k] && !isCanonical(k) {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	slices.Sort(extras)
	return append(CanonicalFields(), extras...)
}

// WriteTable writes a header and one row per record. Cells a record does
// not carry are left empty.
func WriteTable(w io.Writer, records []Record, opts TableOptions) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	columns := Columns(records)
	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if opts.Logger != nil {
		opts.Logger.Debug("writing table", "records", len(records), "columns", columns)
	}

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(columns))
	for i, r := range records {
		for j, col := range columns {
			row[j] = r.Get(col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
		if opts.Logger != nil && opts.ProgressEvery > 0 && (i+1)%opts.ProgressEvery == 0 {
			opts.Logger.Info("writing records", "written", i+1, "total", len(records))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// WriteFile writes records to path. An empty record set returns
// ErrNoRecords without creating the file; any I/O failure returns an
// ErrWriteFailed and removes whatever was partially written.
func WriteFile(path string, records []Record, opts TableOptions) (err error) {
	if len(records) == 0 {
		return ErrNoRecords
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer func() {
		if err != nil {
			os.Remove(path) //nolint:errcheck // Best effort cleanup of a partial file
		}
	}()

	if err = errors.Join(WriteTable(f, records, opts), f.Close()); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	if opts.Logger != nil {
		attrs := []any{"records", len(records), "output", path}
		if info, statErr := os.Stat(path); statErr == nil {
			attrs = append(attrs, "size_mb", fmt.Sprintf("%.2f", float64(info.Size())/bytesPerMB))
		}
		opts.Logger.Info("table written", attrs...)
	}
	return nil
}
