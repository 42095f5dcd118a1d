package extract

import "forum-importer/core/reconcile"

// Source is one dump document and the fields copied from it.
type Source struct {
	File     string
	EntryTag string
	Kind     reconcile.Kind
	Fields   []string
	Extra    []Mapping
}

// Sources lists the dump documents in extraction order.
var Sources = []Source{
	{
		File:     "users.xml",
		EntryTag: "user",
		Kind:     reconcile.KindUser,
		Fields: []string{
			"created-at", "is-active", "last-login", "name", "openid-url",
			"organization-id", "phone", "restriction-id", "roles", "time-zone",
			"updated-at", "uses-12-hour-clock", "email", "is-verified", "photo-url",
		},
		Extra: []Mapping{{Field: "id", Column: "user_id"}},
	},
	{
		File:     "forums.xml",
		EntryTag: "forum",
		Kind:     reconcile.KindForum,
		Fields: []string{
			"description", "display-type-id", "entries-count", "is-locked", "name",
			"organization-id", "position", "updated-at", "translation-locale-id",
			"use-for-suggestions", "visibility-restriction-id", "is-public",
		},
		Extra: []Mapping{{Field: "id", Column: "forum_id"}},
	},
	{
		File:     "entries.xml",
		EntryTag: "entry",
		Kind:     reconcile.KindEntry,
		Fields: []string{
			"body", "created-at", "tags", "flag-type-id", "forum-id", "hits",
			"is-highlighted", "is-locked", "is-pinned", "is-public", "organization-id",
			"position", "posts-count", "submitter-id", "title", "updated-at", "votes-count",
		},
		Extra: []Mapping{{Field: "id", Column: "entry_id"}},
	},
	{
		File:     "posts.xml",
		EntryTag: "post",
		Kind:     reconcile.KindPost,
		Fields: []string{
			"body", "created-at", "updated-at", "entry-id", "forum-id", "user-id",
			"is-informative",
		},
		Extra: []Mapping{{Field: "id", Column: "post_id"}},
	},
}

// SourceFor returns the dump document description of kind.
func SourceFor(kind reconcile.Kind) (Source, bool) {
	for _, s := range Sources {
		if s.Kind == kind {
			return s, true
		}
	}
	return Source{}, false
}
