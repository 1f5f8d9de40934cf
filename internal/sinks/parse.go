package sinks

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// parseFloat reads a numeric column. Empty, non-numeric and non-finite
// values ("NaN", "Inf") give nil.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseInt reads an integer column, accepting a decimal form like "-67.0".
func parseInt(s string) *int {
	f := parseFloat(s)
	if f == nil || *f < math.MinInt32 || *f > math.MaxInt32 {
		return nil
	}
	v := int(*f)
	return &v
}

// parseTimestamp reads the many timestamp shapes survey tools emit
// ("2024-01-15 10:30:00", "Mon Jan 15 10:30:00 2024", epoch seconds).
// Values without a zone are taken as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
