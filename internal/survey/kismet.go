package survey

import "strings"

// KismetCSVExtractor reads Kismet CSV logs by matching header substrings,
// so both the legacy semicolon dialect and comma exports work.
type KismetCSVExtractor struct{}

var _ Extractor = KismetCSVExtractor{}

// Extract maps every column whose lowercased header matches a field. When
// several columns match one field the rightmost wins. Every row yields a
// record.
func (KismetCSVExtractor) Extract(path string) (*Extraction, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	header, rows, err := readTable(text, kismetDelimiter(firstLine(text)))
	if err != nil {
		return nil, err
	}

	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = kismetField(strings.ToLower(h))
	}

	ext := &Extraction{Units: len(rows)}
	for _, row := range rows {
		rec := RawRecord{}
		for i, field := range fields {
			if field != "" {
				rec[field] = cell(row, i)
			}
		}
		ext.Records = append(ext.Records, rec)
	}
	return ext, nil
}

func kismetDelimiter(header string) rune {
	if strings.Contains(header, ";") && !strings.Contains(header, ",") {
		return ';'
	}
	return ','
}

// kismetField maps a lowercased header. "bssid" and "mac" are checked
// before "ssid" so a BSSID column never lands in ssid.
func kismetField(h string) string {
	switch {
	case strings.Contains(h, "bssid") || strings.Contains(h, "mac"):
		return FieldBSSID
	case strings.Contains(h, "ssid"):
		return FieldSSID
	case strings.Contains(h, "lat"):
		return FieldLatitude
	case strings.Contains(h, "lon"):
		return FieldLongitude
	case strings.Contains(h, "channel"):
		return FieldChannel
	case strings.Contains(h, "signal") || strings.Contains(h, "rssi"):
		return FieldSignal
	case strings.Contains(h, "crypt") || strings.Contains(h, "encrypt"):
		return FieldEncryption
	case strings.Contains(h, "type"):
		return FieldType
	case strings.Contains(h, "time"):
		return FieldTimestamp
	default:
		return ""
	}
}

// NetXMLExtractor reads Kismet .netxml logs.
type NetXMLExtractor struct{}

var _ Extractor = NetXMLExtractor{}

// Extract returns one record per wireless-network element. Missing or empty
// nodes leave their key out; a network with nothing usable still yields an
// (empty) record.
func (NetXMLExtractor) Extract(path string) (*Extraction, error) {
	root, err := parseXMLFile(path)
	if err != nil {
		return nil, err
	}

	networks := root.descendants("wireless-network")
	ext := &Extraction{Units: len(networks)}
	for _, n := range networks {
		rec := RawRecord{}
		setIf(rec, FieldSSID, n.textOf("SSID", "essid"))
		setIf(rec, FieldBSSID, n.textOf("BSSID"))
		setIf(rec, FieldChannel, n.textOf("channel"))
		setIf(rec, FieldEncryption, n.textOf("encryption"))

		if gps := n.find("gps-info"); gps != nil {
			setIf(rec, FieldLatitude, gps.textOf("avg-lat"))
			setIf(rec, FieldLongitude, gps.textOf("avg-lon"))
			setIf(rec, FieldAltitude, gps.textOf("avg-alt"))
		}

		signal := n.textOf("max-signal-dbm")
		if signal == "" {
			signal = n.textOf("snr-info", "max_signal_dbm")
		}
		setIf(rec, FieldSignal, signal)

		ext.Records = append(ext.Records, rec)
	}
	return ext, nil
}

func setIf(rec RawRecord, field, value string) {
	if value != "" {
		rec[field] = value
	}
}
