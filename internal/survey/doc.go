// Package survey converts wardriving logs into one normalized table.
//
// Wireless survey tools write their captures in many shapes: KML and KMZ
// map layers, Kismet NetXML and CSV, WiGLE CSV exports, and assorted
// tab- or space-delimited text from older scanners. This package reduces all
// of them to a single record shape with ten canonical columns (ssid, bssid,
// latitude, longitude, altitude, signal, channel, encryption, type,
// timestamp) plus pass-through extra columns.
//
// # Pipeline
//
// A conversion always runs the same four stages:
//
//  1. Detect: the Detector maps a path and a 512-byte content sample to a
//     Format. Detection never fails; unknown input falls back to generic text.
//  2. Extract: the Registry resolves the Format to an Extractor, which turns
//     the file into RawRecords. Formats without a dedicated extractor
//     degrade to the generic text heuristic and the Result carries a
//     FORMAT_FALLBACK warning.
//  3. Normalize: every RawRecord becomes a Record. Missing fields are empty;
//     unrecognized fields become extras.
//  4. Write: WriteTable emits the canonical columns first, then extras in
//     alphabetical order.
//
// Malformed input is not fatal. An extractor error becomes an
// EXTRACT_FAILED warning and an empty extraction; only a conversion that
// yields zero records (ErrNoRecords) or cannot read or write a file fails.
//
// # Usage
//
//	conv := survey.NewConverter(survey.DefaultRegistry(), logger, survey.Options{})
//	res, err := conv.ConvertFile(ctx, "wigle.csv", "")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Output, len(res.Records))
//
// Folder conversion processes files strictly one after another, each with
// its own result, so a broken file cannot affect the rest of the batch.
package survey
