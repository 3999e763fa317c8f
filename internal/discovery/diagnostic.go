// SPDX-License-Identifier: MPL-2.0

package discovery

import "github.com/allyourbase/allyourbase/pkg/defxml"

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"

	// CodeModsDirNotFound marks a configured mod directory that does not exist.
	CodeModsDirNotFound = "mods_dir_not_found"
	// CodeAboutMissing marks a subdirectory without About/About.xml.
	CodeAboutMissing = "about_missing"
	// CodeAboutParseFailed marks an About.xml that is not valid XML.
	CodeAboutParseFailed = "about_parse_failed"
	// CodeDuplicatePackageID marks a mod skipped because an earlier mod has the same package id.
	CodeDuplicatePackageID = "duplicate_package_id"
	// CodeDefsParseSkipped marks a definition file that could not be parsed.
	CodeDefsParseSkipped = "defs_parse_skipped"
	// CodeDefsListFailed marks a definitions directory that could not be listed.
	CodeDefsListFailed = "defs_list_failed"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic represents a structured discovery diagnostic that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "defs_parse_skipped").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}

	// ModSetResult bundles discovered mods with the diagnostics produced while
	// finding them.
	ModSetResult struct {
		Mods        []Mod
		Diagnostics []Diagnostic
	}

	// LoadResult bundles discovered mods, their parsed documents, and all
	// diagnostics. Documents are ordered trusted first, then untrusted, each in
	// load order and then path order.
	LoadResult struct {
		Mods        []Mod
		Documents   []*defxml.Document
		Diagnostics []Diagnostic
	}
)

// String returns the string representation of the Severity.
func (s Severity) String() string { return string(s) }

// Trusted returns the number of trusted mods.
func (r *ModSetResult) Trusted() int {
	n := 0
	for _, m := range r.Mods {
		if m.IsTrusted() {
			n++
		}
	}
	return n
}
