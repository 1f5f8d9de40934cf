package survey

import "errors"

// Sentinel errors for conversion operations.
var (
	// ErrFileNotFound indicates the input path does not exist or is not a file.
	ErrFileNotFound = errors.New("input file not found")

	// ErrNoRecords indicates extraction produced nothing to write.
	ErrNoRecords = errors.New("no records extracted")

	// ErrWriteFailed indicates the output table could not be written.
	ErrWriteFailed = errors.New("writing output table failed")

	// ErrMalformedDocument indicates the input could not be parsed as its format.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrNoKMLEntry indicates a KMZ archive holds no .kml file.
	ErrNoKMLEntry = errors.New("no KML entry in KMZ archive")

	// ErrNotDirectory indicates a batch path is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNoSupportedFiles indicates a batch folder holds no convertible files.
	ErrNoSupportedFiles = errors.New("no supported files found")
)

// Warning codes for non-fatal conversion issues.
const (
	WarnFormatFallback = "FORMAT_FALLBACK"
	WarnExtractFailed  = "EXTRACT_FAILED"
	WarnUnitsSkipped   = "UNITS_SKIPPED"
	WarnSinkFailed     = "SINK_FAILED"
)
