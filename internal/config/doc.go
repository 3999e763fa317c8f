// SPDX-License-Identifier: MPL-2.0

// Package config handles ayb configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/ayb/config.cue (XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support/ayb/config.cue on macOS, %APPDATA%\ayb\config.cue on
// Windows). Values are validated against the embedded config_schema.cue before they
// reach Viper, and again as typed values after decoding.
//
// The auto_fix preference is one-shot: after a run that had it enabled, the CLI calls
// DisableAutoFix so the next start is report-only again.
package config
