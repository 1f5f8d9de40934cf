package survey

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	macPattern      = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
	decimalPattern  = regexp.MustCompile(`^-?\d+\.\d+$`)
	negativePattern = regexp.MustCompile(`^-\d+$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// Channel numbers accepted by the text heuristic (2.4 and 5 GHz bands).
const (
	minChannel = 1
	maxChannel = 165
)

// TextExtractor is the best-effort parser for delimited text from legacy
// scanners, and the fallback for every format without its own extractor.
type TextExtractor struct{}

var _ Extractor = TextExtractor{}

// Extract classifies each token of each line by shape. Unrecognized tokens
// are dropped, and a line with nothing recognized yields no record.
//
// Coordinates are order sensitive: the first in-range decimal becomes the
// latitude and the next the longitude, so "lon lat" files come out swapped.
func (TextExtractor) Extract(path string) (*Extraction, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	ext := &Extraction{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ext.Units++
		if rec := parseTextLine(line); rec != nil {
			ext.Records = append(ext.Records, rec)
		}
	}
	return ext, nil
}

func splitTextLine(line string) []string {
	switch {
	case strings.Contains(line, "\t"):
		return strings.Split(line, "\t")
	case strings.Contains(line, ",") && !strings.Contains(line, `"`):
		return strings.Split(line, ",")
	default:
		return strings.Fields(line)
	}
}

func parseTextLine(line string) RawRecord {
	rec := RawRecord{}
	for _, tok := range splitTextLine(line) {
		tok = strings.TrimSpace(tok)
		switch {
		case macPattern.MatchString(tok):
			rec[FieldBSSID] = tok
		case decimalPattern.MatchString(tok):
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				continue
			}
			_, hasLat := rec[FieldLatitude]
			_, hasLon := rec[FieldLongitude]
			if v >= -90 && v <= 90 && !hasLat {
				rec[FieldLatitude] = tok
			} else if v >= -180 && v <= 180 && !hasLon {
				rec[FieldLongitude] = tok
			}
		case negativePattern.MatchString(tok) && isNegative(tok):
			rec[FieldSignal] = tok
		case digitsPattern.MatchString(tok):
			if _, ok := rec[FieldChannel]; ok {
				continue
			}
			if n, err := strconv.Atoi(tok); err == nil && n >= minChannel && n <= maxChannel {
				rec[FieldChannel] = tok
			}
		}
	}
	if len(rec) == 0 {
		return nil
	}
	return rec
}

// isNegative rejects "-0" and friends, which are not signal readings.
func isNegative(tok string) bool {
	n, err := strconv.Atoi(tok)
	return err == nil && n < 0
}
