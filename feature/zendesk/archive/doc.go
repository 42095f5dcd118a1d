// Package archive opens the member documents of an unpacked forum dump,
// either from a local directory or from an object storage prefix.
//
// Dumps are usually unpacked from a tarball whose members sit in one
// top-level folder; both readers accept that layout as well as a flat one.
package archive
