package catalog

import (
	"strings"
	"time"
)

// Run is one conversion attempt.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Output     string    `json:"output,omitempty"`
	Format     string    `json:"format"`
	Status     string    `json:"status"`
	Records    int       `json:"records"`
	Attempted  int       `json:"attempted"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Observation is one sighting of an access point, ready to be merged into
// the networks table. Nil numeric fields were absent or unparseable.
type Observation struct {
	BSSID      string
	SSID       string
	Encryption string
	Channel    string
	Type       string
	Signal     *int
	Latitude   *float64
	Longitude  *float64
	Altitude   *float64
}

// Network is the merged view of every observation of one BSSID.
type Network struct {
	BSSID         string    `json:"bssid"`
	SSID          string    `json:"ssid"`
	Encryption    string    `json:"encryption"`
	Channel       string    `json:"channel"`
	Type          string    `json:"type"`
	BestSignal    *int      `json:"best_signal,omitempty"`
	BestLatitude  *float64  `json:"best_latitude,omitempty"`
	BestLongitude *float64  `json:"best_longitude,omitempty"`
	BestAltitude  *float64  `json:"best_altitude,omitempty"`
	Observations  int       `json:"observations"`
	FirstRunID    string    `json:"first_run_id"`
	LastRunID     string    `json:"last_run_id"`
	FirstSeenAt   time.Time `json:"first_seen_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

// NetworkFilter narrows ListNetworks.
type NetworkFilter struct {
	// SSID matches networks whose SSID contains this text (case-insensitive).
	SSID string

	// Encryption matches an exact encryption value.
	Encryption string

	// Limit caps the result size. Zero means DefaultListLimit.
	Limit int
}

// Listing limits.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// NormalizeBSSID upper-cases a hardware address and uses ':' separators, so
// "aa-bb-cc-dd-ee-ff" and "AA:BB:CC:DD:EE:FF" share a catalog row.
func NormalizeBSSID(bssid string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(bssid), "-", ":"))
}
