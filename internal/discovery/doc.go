// SPDX-License-Identifier: MPL-2.0

// Package discovery finds mods in the configured mod directories and loads
// their definition documents.
//
// A mod is a directory with About/About.xml. Its package id decides whether it
// belongs to the trusted base corpus (config trusted_packages) or to the
// untrusted overlay corpus. Problems that only affect one mod or one file are
// returned as Diagnostics for the CLI to render; they never stop discovery.
package discovery
