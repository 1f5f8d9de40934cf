// Package catalog persists conversion history in SQLite.
//
// Every conversion attempt is stored as a Run. Successful runs also feed the
// networks table, which keeps one row per access point (keyed by BSSID)
// across all runs: the latest SSID, encryption, channel and type, the
// strongest signal seen and where it was seen, and how many observations
// have been folded in.
//
// The schema lives in the top-level migrations package; callers open the
// database through internal/infrastructure/database and migrate it before
// constructing a repository.
package catalog
