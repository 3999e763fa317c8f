// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs an audit when definition files change.
//
// A Watcher monitors one or more root directories (the configured mod
// directories) and fires a debounced callback with the changed paths that
// match its glob patterns. Events inside the debounce window are coalesced.
package watch
