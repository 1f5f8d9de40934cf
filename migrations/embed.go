// Package migrations embeds the catalog schema into the binary.
//
// Importing this package for side effects registers the files with the
// database package, so wardrive can migrate the catalog without the SQL
// files being present on disk.
package migrations

import (
	"embed"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
