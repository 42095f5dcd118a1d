// Package zendesk serves a read-only view of a forum dump migration.
//
// The staging store doubles as the migration's audit trail; this feature
// exposes it over HTTP:
//
//	GET /migration/status  staged and bridged record counts per kind
//	GET /migration/forums  staged forums with importability and entry counts
//
// The import itself runs from the command line (see feature/zendesk/importer).
package zendesk
