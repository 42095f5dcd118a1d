// Package models defines the staging tables that hold an extracted Zendesk
// forum dump, and the field descriptor tables the extractor consults instead
// of inspecting the structs at runtime.
//
// Staged records keep every field the dump carries for their kind; the
// reconcilers only read a few of them. Each table has a unique source key
// (user_id, forum_id, entry_id, post_id) and, for users, entries and posts, a
// nullable bridge column holding the target platform id once reconciled.
//
// Source timestamps are data, not bookkeeping: GORM's automatic
// created_at/updated_at handling is disabled on every staged model.
package models
