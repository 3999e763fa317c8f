// SPDX-License-Identifier: MPL-2.0

// Package basecheck finds overlay definitions that redeclare a base template name
// and, when auto-fix is enabled, removes them from the overlay files.
//
// A run collects every template name declared by trusted documents, scans each
// untrusted document for top-level elements declaring one of those names, reports
// every collision, optionally repairs and saves the affected documents, and finally
// runs the integrity check over the resolved chemical registry.
//
// File organization:
//   - names.go: KnownNameSet and template name collection
//   - scan.go: collision scanning
//   - repair.go: removal planning, application, and persistence hooks
//   - pass.go: the run state machine (Pass, Mode, Result)
//   - messages.go: operator-facing texts
//   - summary.go: JSON/TOML export of a run
package basecheck
