// SPDX-License-Identifier: MPL-2.0

// Package defxml models parsed XML definition documents.
//
// A Document pairs a mutable etree tree with the metadata of the mod that owns it:
// the partition it belongs to (trusted base content or an untrusted overlay), the mod's
// display name and package id, and the absolute path the tree was read from.
//
// File organization:
//   - document.go: Document, Partition, and top-level element access
//   - parse.go: reading and parsing definition files
//   - save.go: persisting an edited tree back to its source path
package defxml
