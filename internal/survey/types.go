package survey

import (
	"context"
	"slices"
	"time"
)

// Format identifies a survey file dialect.
type Format string

// Known formats. Classification only ever returns one of these.
const (
	FormatKML                Format = "kml"
	FormatKMZ                Format = "kmz"
	FormatKismetNetXML       Format = "kismet_netxml"
	FormatKismetGPSXML       Format = "kismet_gpsxml"
	FormatKismetXML          Format = "kismet_xml"
	FormatKismetNetTxt       Format = "kismet_nettxt"
	FormatKismetGPS          Format = "kismet_gps"
	FormatWigleCSV           Format = "wigle_csv"
	FormatKismetCSV          Format = "kismet_csv"
	FormatGenericCSV         Format = "generic_csv"
	FormatNetStumblerNS1     Format = "netstumbler_ns1"
	FormatNetStumblerSummary Format = "netstumbler_summary"
	FormatMacStumblerPlist   Format = "macstumbler_plist"
	FormatKisMACNative       Format = "kismac_native"
	FormatWiScan             Format = "wiscan"
	FormatGenericText        Format = "generic_text"
	FormatGenericGPSText     Format = "generic_gps_text"
	FormatUnknown            Format = "unknown"
)

var knownFormats = []Format{
	FormatKML, FormatKMZ,
	FormatKismetNetXML, FormatKismetGPSXML, FormatKismetXML, FormatKismetNetTxt, FormatKismetGPS,
	FormatWigleCSV, FormatKismetCSV, FormatGenericCSV,
	FormatNetStumblerNS1, FormatNetStumblerSummary,
	FormatMacStumblerPlist, FormatKisMACNative, FormatWiScan,
	FormatGenericText, FormatGenericGPSText, FormatUnknown,
}

// KnownFormats returns every format the classifier can emit.
func KnownFormats() []Format {
	return slices.Clone(knownFormats)
}

// Canonical and well-known raw field names.
const (
	FieldSSID       = "ssid"
	FieldBSSID      = "bssid"
	FieldLatitude   = "latitude"
	FieldLongitude  = "longitude"
	FieldAltitude   = "altitude"
	FieldSignal     = "signal"
	FieldChannel    = "channel"
	FieldEncryption = "encryption"
	FieldType       = "type"
	FieldTimestamp  = "timestamp"

	FieldFirstSeen = "first_seen"
	FieldLastSeen  = "last_seen"
)

var canonicalFields = []string{
	FieldSSID, FieldBSSID, FieldLatitude, FieldLongitude, FieldAltitude,
	FieldSignal, FieldChannel, FieldEncryption, FieldType, FieldTimestamp,
}

// CanonicalFields returns the ten canonical column names in output order.
func CanonicalFields() []string {
	return slices.Clone(canonicalFields)
}

func isCanonical(field string) bool {
	return slices.Contains(canonicalFields, field)
}

// RawRecord is what an extractor found in one unit of a source file
// (a placemark, a CSV row, a network node, a text line). Absent fields have
// no key.
type RawRecord map[string]string

// Record is a normalized observation. The canonical fields are always
// present (possibly empty); Extras carries every other source field.
type Record struct {
	SSID       string            `json:"ssid"`
	BSSID      string            `json:"bssid"`
	Latitude   string            `json:"latitude"`
	Longitude  string            `json:"longitude"`
	Altitude   string            `json:"altitude"`
	Signal     string            `json:"signal"`
	Channel    string            `json:"channel"`
	Encryption string            `json:"encryption"`
	Type       string            `json:"type"`
	Timestamp  string            `json:"timestamp"`
	Extras     map[string]string `json:"extras,omitempty"`
}

// Get returns the value of a column, canonical or extra. Unknown columns
// read as empty.
func (r Record) Get(column string) string {
	switch column {
	case FieldSSID:
		return r.SSID
	case FieldBSSID:
		return r.BSSID
	case FieldLatitude:
		return r.Latitude
	case FieldLongitude:
		return r.Longitude
	case FieldAltitude:
		return r.Altitude
	case FieldSignal:
		return r.Signal
	case FieldChannel:
		return r.Channel
	case FieldEncryption:
		return r.Encryption
	case FieldType:
		return r.Type
	case FieldTimestamp:
		return r.Timestamp
	default:
		return r.Extras[column]
	}
}

// Map returns the record as an open mapping with all ten canonical keys
// plus the extras. Extras never shadow canonical keys.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(canonicalFields)+len(r.Extras))
	for k, v := range r.Extras {
		m[k] = v
	}
	for _, f := range canonicalFields {
		m[f] = r.Get(f)
	}
	return m
}

// Stats counts extraction units for one file.
type Stats struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Warning is a non-fatal issue found during a conversion.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Conversion status values.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Result describes one conversion attempt.
type Result struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Output     string    `json:"output,omitempty"`
	Format     Format    `json:"format"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Records    []Record  `json:"records,omitempty"`
	Stats      Stats     `json:"stats"`
	Warnings   []Warning `json:"warnings,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Succeeded reports whether the conversion produced records (and, when an
// output was requested, wrote them).
func (r *Result) Succeeded() bool {
	return r.Status == StatusSucceeded
}

func (r *Result) warn(code, message string) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: message})
}

// BatchResult summarizes a folder conversion.
type BatchResult struct {
	Folder       string    `json:"folder"`
	OutputDir    string    `json:"output_dir"`
	Files        []string  `json:"files"`
	Succeeded    []string  `json:"succeeded"`
	Failed       []string  `json:"failed"`
	Results      []*Result `json:"results"`
	MergedOutput string    `json:"merged_output,omitempty"`
}

// OK reports whether at least one file in the batch converted.
func (b *BatchResult) OK() bool {
	return len(b.Succeeded) > 0
}

// Sink receives the outcome of every conversion attempt, successful or
// not. Sinks must be safe for concurrent use; the API server and the MQTT
// command handler may convert in parallel.
type Sink interface {
	Name() string
	Handle(ctx context.Context, res *Result) error
}
