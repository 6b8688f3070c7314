// Package migrations embeds the agent's SQL schema into the binary.
package migrations

import "embed"

//go:embed *.up.sql
var files embed.FS

// FS holds the migration files at its root, ready for database.DB.Migrate.
var FS = files
