package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines catalog persistence operations.
type Repository interface {
	RecordRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	UpsertNetworks(ctx context.Context, runID string, seenAt time.Time, obs []Observation) (int, error)
	GetNetwork(ctx context.Context, bssid string) (*Network, error)
	ListNetworks(ctx context.Context, filter NetworkFilter) ([]Network, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a catalog repository on a migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordRun inserts a run, or replaces it if the ID already exists.
func (r *SQLiteRepository) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" || run.Source == "" || run.Status == "" {
		return fmt.Errorf("%w: id, source and status are required", ErrInvalidRun)
	}

	const query = `INSERT INTO conversion_runs
		(id, source, output, format, status, records, attempted, failed, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			output = excluded.output,
			status = excluded.status,
			records = excluded.records,
			attempted = excluded.attempted,
			failed = excluded.failed,
			error = excluded.error,
			finished_at = excluded.finished_at`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Source, run.Output, run.Format, run.Status,
		run.Records, run.Attempted, run.Failed, run.Error,
		formatTime(run.StartedAt), formatTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns a single run by ID.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	const query = `SELECT id, source, output, format, status, records, attempted, failed, error,
		started_at, finished_at FROM conversion_runs WHERE id = ?`
	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	const query = `SELECT id, source, output, format, status, records, attempted, failed, error,
		started_at, finished_at FROM conversion_runs ORDER BY started_at DESC, id LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}

// upsertNetworkQuery merges one observation. SQLite evaluates every SET
// expression against the old row, so the best_* columns all compare with
// the previous best_signal.
const upsertNetworkQuery = `INSERT INTO networks
	(bssid, ssid, encryption, channel, type, best_signal, best_latitude, best_longitude, best_altitude,
	 observations, first_run_id, last_run_id, first_seen_at, last_seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)
	ON CONFLICT(bssid) DO UPDATE SET
		ssid = CASE WHEN excluded.ssid != '' THEN excluded.ssid ELSE networks.ssid END,
		encryption = CASE WHEN excluded.encryption != '' THEN excluded.encryption ELSE networks.encryption END,
		channel = CASE WHEN excluded.channel != '' THEN excluded.channel ELSE networks.channel END,
		type = CASE WHEN excluded.type != '' THEN excluded.type ELSE networks.type END,
		best_signal = CASE WHEN ` + strongerCondition + ` THEN excluded.best_signal ELSE networks.best_signal END,
		best_latitude = CASE WHEN ` + strongerCondition + ` THEN excluded.best_latitude
			ELSE COALESCE(networks.best_latitude, excluded.best_latitude) END,
		best_longitude = CASE WHEN ` + strongerCondition + ` THEN excluded.best_longitude
			ELSE COALESCE(networks.best_longitude, excluded.best_longitude) END,
		best_altitude = CASE WHEN ` + strongerCondition + ` THEN excluded.best_altitude
			ELSE COALESCE(networks.best_altitude, excluded.best_altitude) END,
		observations = networks.observations + 1,
		last_run_id = excluded.last_run_id,
		last_seen_at = excluded.last_seen_at`

const strongerCondition = `excluded.best_signal IS NOT NULL AND
	(networks.best_signal IS NULL OR excluded.best_signal > networks.best_signal)`

// UpsertNetworks folds observations from one run into the networks table
// in a single transaction. Observations without a BSSID are skipped; the
// count of merged observations is returned.
func (r *SQLiteRepository) UpsertNetworks(ctx context.Context, runID string, seenAt time.Time, obs []Observation) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsertNetworkQuery)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	seen := formatTime(seenAt)
	merged := 0
	for _, o := range obs {
		bssid := NormalizeBSSID(o.BSSID)
		if bssid == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			bssid, o.SSID, o.Encryption, o.Channel, o.Type,
			nullInt(o.Signal), nullFloat(o.Latitude), nullFloat(o.Longitude), nullFloat(o.Altitude),
			runID, runID, seen, seen,
		); err != nil {
			return 0, fmt.Errorf("upserting network %s: %w", bssid, err)
		}
		merged++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing networks: %w", err)
	}
	return merged, nil
}

const networkColumns = `bssid, ssid, encryption, channel, type, best_signal, best_latitude,
	best_longitude, best_altitude, observations, first_run_id, last_run_id, first_seen_at, last_seen_at`

// GetNetwork returns the merged view of one BSSID.
func (r *SQLiteRepository) GetNetwork(ctx context.Context, bssid string) (*Network, error) {
	query := `SELECT ` + networkColumns + ` FROM networks WHERE bssid = ?`
	n, err := scanNetwork(r.db.QueryRowContext(ctx, query, NormalizeBSSID(bssid)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNetworkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning network: %w", err)
	}
	return n, nil
}

// ListNetworks returns networks most recently seen first.
func (r *SQLiteRepository) ListNetworks(ctx context.Context, filter NetworkFilter) ([]Network, error) {
	var where []string
	var args []any
	if filter.SSID != "" {
		where = append(where, "ssid LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(filter.SSID)+"%")
	}
	if filter.Encryption != "" {
		where = append(where, "encryption = ?")
		args = append(args, filter.Encryption)
	}

	query := `SELECT ` + networkColumns + ` FROM networks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY last_seen_at DESC, bssid LIMIT ?"
	args = append(args, clampLimit(filter.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying networks: %w", err)
	}
	defer rows.Close()

	var networks []Network
	for rows.Next() {
		n, err := scanNetwork(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning network row: %w", err)
		}
		networks = append(networks, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating network rows: %w", err)
	}
	return networks, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var startedAt, finishedAt string
	if err := s.Scan(&run.ID, &run.Source, &run.Output, &run.Format, &run.Status,
		&run.Records, &run.Attempted, &run.Failed, &run.Error, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	return &run, nil
}

func scanNetwork(s scanner) (*Network, error) {
	var n Network
	var signal sql.NullInt64
	var lat, lon, alt sql.NullFloat64
	var firstSeen, lastSeen string
	if err := s.Scan(&n.BSSID, &n.SSID, &n.Encryption, &n.Channel, &n.Type,
		&signal, &lat, &lon, &alt, &n.Observations,
		&n.FirstRunID, &n.LastRunID, &firstSeen, &lastSeen); err != nil {
		return nil, err
	}
	if signal.Valid {
		v := int(signal.Int64)
		n.BestSignal = &v
	}
	n.BestLatitude = floatPtr(lat)
	n.BestLongitude = floatPtr(lon)
	n.BestAltitude = floatPtr(alt)
	n.FirstSeenAt = parseTime(firstSeen)
	n.LastSeenAt = parseTime(lastSeen)
	return &n, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp; malformed values read as zero.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
