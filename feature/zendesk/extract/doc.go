// Package extract reads a forum dump's markup documents into the staging store.
//
// The dump carries type metadata per field instead of a fixed schema:
//
//	<user>
//	  <created-at type="datetime">2009-04-03T16:15:27+01:00</created-at>
//	  <id type="integer">7</id>
//	  <is-active type="boolean">true</is-active>
//	  <name>Ann Example</name>
//	</user>
//
// Extraction is generic: the caller names the entry tag, the record kind and
// the fields to copy, and the Extractor consults the kind's descriptor table
// (models.DescriptorFor) for column types and maximum lengths. A malformed
// value aborts the whole extraction call; nothing guessed is ever staged.
package extract
