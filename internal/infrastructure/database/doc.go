// Package database provides SQLite connectivity for the wardrive catalog.
//
// The catalog keeps a history of conversion runs and a deduplicated view of
// every access point seen across them. This package only owns the
// connection and the schema; queries live in internal/catalog.
//
// Connections are opened with WAL mode and a busy timeout so the API server
// can read the catalog while a batch conversion is writing to it. SQLite
// allows a single writer, so the pool is capped at one open connection.
//
// Usage:
//
//	db, err := database.OpenConfig(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are embedded by the top-level migrations package and are
// additive: new columns must be nullable or carry a default. Each version
// ships a .up.sql and a .down.sql file named
// YYYYMMDD_HHMMSS_description.{up,down}.sql.
package database
