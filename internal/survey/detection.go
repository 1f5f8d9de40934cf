package survey

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
)

// DefaultSampleSize is how many leading bytes detection inspects.
const DefaultSampleSize = 512

// xmlSniffRunes is how far into the sample a '<' still marks XML.
const xmlSniffRunes = 10

// Detector classifies survey files. The zero value is not usable; create
// one with NewDetector.
type Detector struct {
	sampleSize int
	logger     *logging.Logger
}

// NewDetector returns a Detector that reads sampleSize bytes per file
// (DefaultSampleSize when sampleSize <= 0).
func NewDetector(sampleSize int, logger *logging.Logger) *Detector {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Detector{sampleSize: sampleSize, logger: logger}
}

// Classify maps a path and its leading bytes to a Format. It never fails.
// Input that matches no rule is reported as generic text and logged.
func (d *Detector) Classify(path string, sample []byte) Format {
	format, matched := classify(path, sample, d.sampleSize)
	if !matched {
		d.logger.Info("unknown format, falling back to generic text parser", "file", path)
	}
	return format
}

// DetectFile reads the sample from disk and classifies it. An unreadable
// file is reported as FormatUnknown.
func (d *Detector) DetectFile(path string) Format {
	sample, err := readSample(path, d.sampleSize)
	if err != nil {
		d.logger.Warn("reading detection sample failed", "file", path, "error", err)
		return FormatUnknown
	}
	return d.Classify(path, sample)
}

// Classify applies the detection rules with the default sample size and
// no logging.
func Classify(path string, sample []byte) Format {
	format, _ := classify(path, sample, DefaultSampleSize)
	return format
}

func readSample(path string, size int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("reading sample: %w", err)
	}
	return buf[:n], nil
}

// classify holds the ordered rule list; the first match wins. The boolean
// is false only when no rule matched and the generic text default applies.
func classify(path string, sample []byte, limit int) (Format, bool) {
	if len(sample) > limit {
		sample = sample[:limit]
	}
	ext := extension(path)
	text := decodeSample(sample)
	lower := strings.ToLower(text)

	if ext == "kmz" {
		return FormatKMZ, true
	}
	if ext == "kml" || strings.Contains(lower, "<kml") {
		return FormatKML, true
	}

	if looksLikeXML(text) {
		switch {
		case strings.Contains(text, "<detection-run") || strings.Contains(text, "<kismet-run"):
			return FormatKismetNetXML, true
		case strings.Contains(text, "<gps-run"):
			return FormatKismetGPSXML, true
		case strings.Contains(text, "plist") || strings.Contains(text, "<dict>"):
			return FormatMacStumblerPlist, true
		case ext == "xml":
			return FormatKismetXML, true
		}
	}

	if ext == "csv" {
		return classifyCSVHeader(firstLine(lower)), true
	}

	if ext == "ns1" {
		return FormatNetStumblerNS1, true
	}
	if strings.Contains(lower, "netstumbler") || ext == "nss" {
		return FormatNetStumblerSummary, true
	}

	switch ext {
	case "netxml", "gpsxml", "nettxt", "gps":
		return Format("kismet_" + ext), true
	}

	if ext == "txt" {
		if strings.Contains(lower, "lat") && strings.Contains(lower, "lon") {
			return FormatGenericGPSText, true
		}
		if strings.Contains(lower, "ssid") || strings.Contains(lower, "bssid") {
			return FormatGenericText, true
		}
	}

	if ext == "kismac" {
		return FormatKisMACNative, true
	}
	if strings.Contains(lower, "wiscan") || ext == "wsc" {
		return FormatWiScan, true
	}

	return FormatGenericText, false
}

// classifyCSVHeader inspects the lowercased first line of a .csv file.
func classifyCSVHeader(header string) Format {
	switch {
	case strings.Contains(header, "wigle"),
		strings.Contains(header, "mac") && strings.Contains(header, "ssid") && strings.Contains(header, "authmode"):
		return FormatWigleCSV
	case strings.Contains(header, "bssid") || strings.Contains(header, "mac"):
		return FormatKismetCSV
	default:
		return FormatGenericCSV
	}
}

func extension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func looksLikeXML(text string) bool {
	if strings.HasPrefix(strings.TrimSpace(text), "<?xml") {
		return true
	}
	head := []rune(text)
	if len(head) > xmlSniffRunes {
		head = head[:xmlSniffRunes]
	}
	return strings.ContainsRune(string(head), '<')
}

func firstLine(text string) string {
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		return text[:i]
	}
	return text
}
