package sinks

import (
	"context"
	"time"

	"github.com/nerrad567/wardrive-core/internal/catalog"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
	"github.com/nerrad567/wardrive-core/internal/survey"
)

// ObservationWriter is the subset of the InfluxDB client the sink needs.
type ObservationWriter interface {
	WriteObservations(obs []influxdb.Observation) int
}

var _ ObservationWriter = (*influxdb.Client)(nil)

// InfluxSink writes successful conversions as wifi_observation points.
type InfluxSink struct {
	w      ObservationWriter
	logger *logging.Logger
}

var _ survey.Sink = (*InfluxSink)(nil)

// NewInfluxSink creates a sink writing through w.
func NewInfluxSink(w ObservationWriter, logger *logging.Logger) *InfluxSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &InfluxSink{w: w, logger: logger}
}

// Name implements survey.Sink.
func (s *InfluxSink) Name() string { return "influxdb" }

// Handle queues one point per record. Writes are asynchronous, so batch
// errors reach the client's error callback rather than this return value.
func (s *InfluxSink) Handle(_ context.Context, res *survey.Result) error {
	if !res.Succeeded() {
		return nil
	}
	obs := ObservationPoints(res)
	written := s.w.WriteObservations(obs)
	s.logger.Debug("observations queued", "run_id", res.RunID, "points", written, "records", len(obs))
	return nil
}

// ObservationPoints maps records to observations. The point time is the
// record's own timestamp when it parses, else the conversion time.
func ObservationPoints(res *survey.Result) []influxdb.Observation {
	fallback := res.FinishedAt
	if fallback.IsZero() {
		fallback = time.Now()
	}

	obs := make([]influxdb.Observation, 0, len(res.Records))
	for _, r := range res.Records {
		ts, ok := parseTimestamp(r.Timestamp)
		if !ok {
			ts = fallback
		}
		obs = append(obs, influxdb.Observation{
			BSSID:      catalog.NormalizeBSSID(r.BSSID),
			SSID:       r.SSID,
			Encryption: r.Encryption,
			Format:     string(res.Format),
			Signal:     parseFloat(r.Signal),
			Channel:    parseFloat(r.Channel),
			Latitude:   parseFloat(r.Latitude),
			Longitude:  parseFloat(r.Longitude),
			Altitude:   parseFloat(r.Altitude),
			Time:       ts,
		})
	}
	return obs
}
