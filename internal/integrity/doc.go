// SPDX-License-Identifier: MPL-2.0

// Package integrity checks fully resolved chemical definitions for a usable
// addiction effect. It only reads the registry it is given and reports
// violations; it never edits definitions.
package integrity
