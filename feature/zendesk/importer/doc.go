// Package importer orchestrates a forum dump migration: extraction of the
// dump's member documents into the staging store, then identity and content
// reconciliation into the platform.
package importer
