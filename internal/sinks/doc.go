// Package sinks delivers finished conversions to the optional back ends.
//
// Each sink implements survey.Sink and is handed every Result, successful
// or not, after the converter is done with it:
//
//   - CatalogSink records the run in SQLite and merges successful records
//     into the per-BSSID networks table.
//   - MQTTSink announces the run on wardrive/conversion/{format}.
//   - InfluxSink writes one wifi_observation point per record that carries
//     a numeric value.
//
// Sink errors are logged by the converter and surface as SINK_FAILED
// warnings; they never fail a conversion.
package sinks
