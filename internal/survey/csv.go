package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readTable parses delimited text into a header and its data rows. Quotes
// are lenient and rows may be shorter or longer than the header; survey
// tools are not careful CSV writers.
func readTable(body string, delimiter rune) (header []string, rows [][]string, err error) {
	r := csv.NewReader(strings.NewReader(body))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err = r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading header: %w", ErrMalformedDocument, err)
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: reading row: %w", ErrMalformedDocument, err)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// cell returns row[i], or "" when the row is too short.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
