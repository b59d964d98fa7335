// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM that configures MySQL for production use
// and SQLite for local or test use, selected by the Driver config field.
//
// # Connect
//
// The generic Connect function establishes a connection to the database and
// verifies it with a ping before returning.
//
// # Schema Inspection
//
// GetTableColumns retrieves column definitions for a table in a
// driver-agnostic way, and VerifySchema asserts that the counting tables
// exist after migration. Startup uses this as a sanity check, since the
// session tables are the audit record and must never be silently absent.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	err = database.VerifySchema(db, []string{"sessions", "count_events"})
package database
