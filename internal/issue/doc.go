// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of operator guides.
//
// ActionableError carries the failed operation, the resource involved, and
// remediation suggestions. Issue holds a Markdown guide for a known situation
// (a base template collision, an auto-fix run, a broken chemical definition)
// that the CLI renders with glamour, either next to an error or through
// 'ayb explain <topic>'.
package issue
