// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* helpers it can lay out a mods directory (WriteMods) with
// About/About.xml metadata and Defs files for discovery and CLI tests.
package testutil
