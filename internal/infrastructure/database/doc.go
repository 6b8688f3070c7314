// Package database provides SQLite storage for the edge agent.
//
// This package manages:
//   - Opening the database with WAL mode and a busy timeout
//   - Forward-only schema migrations read from an fs.FS
//   - Health checks for the status API
//
// The only current consumer is the connectivity journal, which records every
// readiness transition so the history survives restarts.
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
