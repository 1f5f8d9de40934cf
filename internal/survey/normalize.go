package survey

// Normalize maps a raw record onto the canonical schema. It is total and
// pure: missing canonical fields become "", and every non-canonical key is
// kept as an extra. The timestamp falls back to first_seen, then last_seen,
// by key presence.
func Normalize(raw RawRecord) Record {
	r := Record{
		SSID:       raw[FieldSSID],
		BSSID:      raw[FieldBSSID],
		Latitude:   raw[FieldLatitude],
		Longitude:  raw[FieldLongitude],
		Altitude:   raw[FieldAltitude],
		Signal:     raw[FieldSignal],
		Channel:    raw[FieldChannel],
		Encryption: raw[FieldEncryption],
		Type:       raw[FieldType],
		Timestamp:  timestampOf(raw),
	}

	for k, v := range raw {
		if isCanonical(k) {
			continue
		}
		if r.Extras == nil {
			r.Extras = make(map[string]string)
		}
		r.Extras[k] = v
	}
	return r
}

// NormalizeAll normalizes records in order.
func NormalizeAll(raws []RawRecord) []Record {
	out := make([]Record, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw)
	}
	return out
}

func timestampOf(raw RawRecord) string {
	for _, key := range []string{FieldTimestamp, FieldFirstSeen, FieldLastSeen} {
		if v, ok := raw[key]; ok {
			return v
		}
	}
	return ""
}
