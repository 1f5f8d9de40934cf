// Package influxdb provides InfluxDB connectivity for wardrive-core.
//
// Every converted record with at least one numeric value becomes a point in
// the wifi_observation measurement, tagged by bssid, ssid, encryption and
// source format. Signal, channel and coordinates are stored as fields.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, log)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteObservation(influxdb.Observation{
//	    BSSID:  "AA:BB:CC:DD:EE:FF",
//	    Signal: &signal,
//	    Time:   seenAt,
//	})
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Refused batches are logged and counted by RejectedBatches.
package influxdb
