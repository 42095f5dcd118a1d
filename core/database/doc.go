// Package database handles database connections and schema inspection.
//
// It wraps GORM to open either a MySQL server or a SQLite file based on the
// application's configuration. The importer uses two connections built by
// this package: the staging store, which keeps the extracted dump and the
// source-to-target id bridge, and the target platform database.
//
// # Connect
//
// Connect selects the dialector from Config.Driver ("mysql" or "sqlite"),
// applies connection timeouts and pool limits, and pings the server.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let commands verify that the staging
// tables carry the bridge columns before reconciliation starts.
//
// # Usage
//
//	db, err := database.Connect(cfg.Staging)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "zendesk_users", "target_user_id")
package database
