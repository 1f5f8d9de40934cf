package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// ObservationMeasurement is the measurement every sighting is written to.
const ObservationMeasurement = "wifi_observation"

// Observation is one sighting of an access point. Nil numeric fields are
// omitted from the point; empty tags are dropped.
type Observation struct {
	BSSID      string
	SSID       string
	Encryption string
	Format     string

	Signal    *float64
	Channel   *float64
	Latitude  *float64
	Longitude *float64
	Altitude  *float64

	Time time.Time
}

// Fields returns the numeric fields that are present.
func (o Observation) Fields() map[string]any {
	fields := make(map[string]any, 5)
	for name, v := range map[string]*float64{
		"signal":    o.Signal,
		"channel":   o.Channel,
		"latitude":  o.Latitude,
		"longitude": o.Longitude,
		"altitude":  o.Altitude,
	} {
		if v != nil {
			fields[name] = *v
		}
	}
	return fields
}

// Tags returns the non-empty tags.
func (o Observation) Tags() map[string]string {
	tags := make(map[string]string, 4)
	for name, v := range map[string]string{
		"bssid":      o.BSSID,
		"ssid":       o.SSID,
		"encryption": o.Encryption,
		"format":     o.Format,
	} {
		if v != "" {
			tags[name] = v
		}
	}
	return tags
}

// NewObservationPoint builds the point for o, or returns nil when o carries
// no numeric field (InfluxDB rejects points without fields).
func NewObservationPoint(o Observation) *write.Point {
	fields := o.Fields()
	if len(fields) == 0 {
		return nil
	}
	ts := o.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return write.NewPoint(ObservationMeasurement, o.Tags(), fields, ts)
}

// WriteObservation queues one observation. It reports whether a point was
// queued; observations without numeric fields and writes on a closed client
// are dropped.
//
// The write is non-blocking; data is batched and sent asynchronously.
func (c *Client) WriteObservation(o Observation) bool {
	if !c.IsConnected() {
		return false
	}

	point := NewObservationPoint(o)
	if point == nil {
		return false
	}
	c.writeAPI.WritePoint(point)
	return true
}

// WriteObservations queues a batch and returns how many points were queued.
func (c *Client) WriteObservations(obs []Observation) int {
	written := 0
	for _, o := range obs {
		if c.WriteObservation(o) {
			written++
		}
	}
	return written
}
