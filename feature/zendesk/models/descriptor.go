package models

import (
	"fmt"

	"forum-importer/core/reconcile"
	"forum-importer/feature/zendesk/coerce"
)

// Field describes one staged column: its declared value type and, for
// strings, the maximum stored length in characters (0 = unlimited).
type Field struct {
	Type      string
	MaxLength int
}

// Descriptor is the explicit schema of one staged record kind.
type Descriptor struct {
	Kind reconcile.Kind
	// Key is the column holding the source system identifier.
	Key string
	// Fields maps column names to their declared type.
	Fields map[string]Field
	// New returns a zero model, used to bind inserts to the right table.
	New func() any
}

// Field returns the descriptor of column, or false when the kind has no such column.
func (d *Descriptor) Field(column string) (Field, bool) {
	f, ok := d.Fields[column]
	return f, ok
}

var (
	str     = func(n int) Field { return Field{Type: coerce.TypeString, MaxLength: n} }
	text    = Field{Type: coerce.TypeString}
	integer = Field{Type: coerce.TypeInteger}
	boolean = Field{Type: coerce.TypeBoolean}
	instant = Field{Type: coerce.TypeDatetime}
)

var descriptors = map[reconcile.Kind]*Descriptor{
	reconcile.KindUser: {
		Kind: reconcile.KindUser,
		Key:  "user_id",
		New:  func() any { return &User{} },
		Fields: map[string]Field{
			"user_id":            integer,
			"name":               str(255),
			"email":              str(254),
			"is_verified":        boolean,
			"is_active":          boolean,
			"created_at":         instant,
			"updated_at":         instant,
			"last_login":         instant,
			"openid_url":         str(200),
			"organization_id":    integer,
			"phone":              str(32),
			"restriction_id":     integer,
			"roles":              integer,
			"time_zone":          str(255),
			"uses_12_hour_clock": boolean,
			"photo_url":          str(200),
		},
	},
	reconcile.KindForum: {
		Kind: reconcile.KindForum,
		Key:  "forum_id",
		New:  func() any { return &Forum{} },
		Fields: map[string]Field{
			"forum_id":                  integer,
			"name":                      str(255),
			"description":               str(255),
			"display_type_id":           integer,
			"entries_count":             integer,
			"is_locked":                 boolean,
			"organization_id":           integer,
			"position":                  integer,
			"updated_at":                instant,
			"translation_locale_id":     integer,
			"use_for_suggestions":       boolean,
			"visibility_restriction_id": integer,
			"is_public":                 boolean,
		},
	},
	reconcile.KindEntry: {
		Kind: reconcile.KindEntry,
		Key:  "entry_id",
		New:  func() any { return &Entry{} },
		Fields: map[string]Field{
			"entry_id":        integer,
			"forum_id":        integer,
			"submitter_id":    integer,
			"title":           str(300),
			"body":            text,
			"tags":            str(255),
			"flag_type_id":    integer,
			"hits":            integer,
			"is_highlighted":  boolean,
			"is_locked":       boolean,
			"is_pinned":       boolean,
			"is_public":       boolean,
			"organization_id": integer,
			"position":        integer,
			"posts_count":     integer,
			"votes_count":     integer,
			"created_at":      instant,
			"updated_at":      instant,
		},
	},
	reconcile.KindPost: {
		Kind: reconcile.KindPost,
		Key:  "post_id",
		New:  func() any { return &Post{} },
		Fields: map[string]Field{
			"post_id":        integer,
			"entry_id":       integer,
			"forum_id":       integer,
			"user_id":        integer,
			"body":           text,
			"is_informative": boolean,
			"created_at":     instant,
			"updated_at":     instant,
		},
	},
}

// DescriptorFor returns the field descriptor table of kind.
func DescriptorFor(kind reconcile.Kind) (*Descriptor, error) {
	d, ok := descriptors[kind]
	if !ok {
		return nil, fmt.Errorf("no staging descriptor for record kind %q", kind)
	}
	return d, nil
}
