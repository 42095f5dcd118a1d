// Package staging persists extracted dump records and their bridges to the
// target platform.
//
// The staging store is the audit trail of a migration: every field the dump
// carries is kept, records are never deleted, and each record's bridge
// (target_user_id / target_content_id) is set exactly once. Extraction
// inserts are idempotent on the source key, so a persisted store can be
// re-extracted and reconciled again without duplicating work.
package staging
