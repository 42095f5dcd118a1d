// Package server holds the HTTP server configuration.
//
// The importer is a batch tool; the HTTP server only exists for the `serve`
// command, which exposes a read-only view of the staging store while a
// migration is being prepared or audited.
package server
