// SPDX-License-Identifier: MPL-2.0

// Package defdb builds a resolved view of a definition corpus.
//
// Top-level elements are indexed by template name and by (tag, defName). Each
// element is resolved against its ParentName chain: structured child elements
// are merged recursively, list items are appended, and leaf values replace the
// parent's. An element marked Inherit="False" replaces the inherited element
// outright. Abstract elements act as templates only.
package defdb
