package survey

import "strings"

// wigleColumns maps WiGLE export headers to record fields.
var wigleColumns = []struct {
	header string
	field  string
}{
	{"MAC", FieldBSSID},
	{"SSID", FieldSSID},
	{"CurrentLatitude", FieldLatitude},
	{"CurrentLongitude", FieldLongitude},
	{"AltitudeMeters", FieldAltitude},
	{"RSSI", FieldSignal},
	{"Channel", FieldChannel},
	{"AuthMode", FieldEncryption},
	{"Type", FieldType},
	{"FirstSeen", FieldFirstSeen},
	{"LastSeen", FieldLastSeen},
}

// WigleCSVExtractor reads WiGLE WiFi CSV exports.
type WigleCSVExtractor struct{}

var _ Extractor = WigleCSVExtractor{}

// Extract skips the leading '#' comments and the "WigleWifi-" app banner,
// then maps the fixed WiGLE columns. A column missing from the file yields
// no key; a short row yields empty values.
func (WigleCSVExtractor) Extract(path string) (*Extraction, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	header, rows, err := readTable(skipWiglePreamble(text), ',')
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	ext := &Extraction{Units: len(rows)}
	for _, row := range rows {
		rec := RawRecord{}
		for _, col := range wigleColumns {
			if i, ok := index[col.header]; ok {
				rec[col.field] = cell(row, i)
			}
		}
		ext.Records = append(ext.Records, rec)
	}
	return ext, nil
}

func skipWiglePreamble(text string) string {
	for text != "" {
		line, rest, _ := strings.Cut(text, "\n")
		if !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "WigleWifi-") {
			break
		}
		text = rest
	}
	return text
}
