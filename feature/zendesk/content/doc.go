// Package content reconciles staged forums, entries and posts into platform
// threads and replies.
//
// Forums that are not viewable by the public are skipped outright. Every
// entry of an imported forum becomes a thread, every post of a posted entry
// becomes a reply. An entry or post whose author has no platform account,
// or whose creation the platform rejects, is dropped with one warning and
// its siblings carry on.
package content
