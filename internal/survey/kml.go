package survey

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// MaxKMLEntrySize caps how much of a KMZ entry is extracted.
const MaxKMLEntrySize = 256 * 1024 * 1024

// KMLExtractor reads placemarks from a KML document.
type KMLExtractor struct{}

var _ Extractor = KMLExtractor{}

// Extract returns one record per non-empty Placemark, at any depth.
func (KMLExtractor) Extract(path string) (*Extraction, error) {
	root, err := parseXMLFile(path)
	if err != nil {
		return nil, err
	}

	placemarks := root.descendants("Placemark")
	ext := &Extraction{Units: len(placemarks)}
	for _, pm := range placemarks {
		if rec := placemarkRecord(pm); len(rec) > 0 {
			ext.Records = append(ext.Records, rec)
		}
	}
	return ext, nil
}

func placemarkRecord(pm *xmlNode) RawRecord {
	rec := RawRecord{}

	if name := pm.textOf("name"); name != "" {
		rec[FieldSSID] = name
	}

	if desc := pm.textOf("description"); desc != "" {
		for _, line := range strings.Split(desc, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			if field := descriptionField(strings.ToLower(strings.TrimSpace(key))); field != "" {
				rec[field] = strings.TrimSpace(value)
			}
		}
	}

	if coords := pm.textOf("coordinates"); coords != "" {
		// LineStrings hold several space-separated tuples; the first is used.
		tuple := strings.Fields(coords)[0]
		parts := strings.Split(tuple, ",")
		if len(parts) >= 2 {
			rec[FieldLongitude] = strings.TrimSpace(parts[0])
			rec[FieldLatitude] = strings.TrimSpace(parts[1])
			if len(parts) >= 3 {
				rec[FieldAltitude] = strings.TrimSpace(parts[2])
			}
		}
	}

	if extended := pm.find("ExtendedData"); extended != nil {
		for _, data := range extended.descendants("Data") {
			name := data.attr("name")
			value := data.find("value")
			if name == "" || value == nil || value.Text == "" {
				continue
			}
			key := strings.ReplaceAll(strings.ToLower(name), " ", "_")
			rec[key] = strings.TrimSpace(value.Text)
		}
	}

	return rec
}

// descriptionField maps a lowercased "key: value" description key to its
// field. Order matters: "signal type" is a signal, not a type.
func descriptionField(key string) string {
	switch {
	case key == "ssid":
		return FieldSSID
	case key == "bssid" || key == "mac" || key == "mac address":
		return FieldBSSID
	case strings.Contains(key, "signal") || strings.Contains(key, "rssi"):
		return FieldSignal
	case key == "channel":
		return FieldChannel
	case strings.Contains(key, "encrypt") || strings.Contains(key, "security"):
		return FieldEncryption
	case strings.Contains(key, "type"):
		return FieldType
	case strings.Contains(key, "time"):
		return FieldTimestamp
	default:
		return ""
	}
}

// KMZExtractor unpacks the first KML entry of a KMZ archive to a temporary
// file and delegates to KML. The temporary file never outlives Extract.
type KMZExtractor struct {
	// KML parses the unpacked document. Defaults to KMLExtractor.
	KML Extractor

	// TempDir receives the unpacked file. Defaults to os.TempDir().
	TempDir string
}

var _ Extractor = KMZExtractor{}

// Extract implements Extractor.
func (e KMZExtractor) Extract(path string) (*Extraction, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	defer zr.Close()

	entry := firstKMLEntry(zr.File)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoKMLEntry, path)
	}

	tmp, err := e.unpack(entry)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp) //nolint:errcheck // Cleanup failure is not the caller's problem

	kml := e.KML
	if kml == nil {
		kml = KMLExtractor{}
	}
	return kml.Extract(tmp)
}

func firstKMLEntry(files []*zip.File) *zip.File {
	for _, f := range files {
		if strings.EqualFold(path.Ext(f.Name), ".kml") {
			return f
		}
	}
	return nil
}

func (e KMZExtractor) unpack(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", ErrMalformedDocument, entry.Name, err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(e.TempDir, "wardrive-*.kml")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	_, copyErr := io.Copy(tmp, io.LimitReader(rc, MaxKMLEntrySize))
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck // Best effort cleanup on error path
		return "", fmt.Errorf("%w: extracting %s: %w", ErrMalformedDocument, entry.Name, err)
	}
	return tmp.Name(), nil
}
