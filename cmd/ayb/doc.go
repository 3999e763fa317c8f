// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for ayb.
//
// The root command wires an App (configuration, discovery, rendering) into the
// audit, config, and explain subcommands. Handlers return errors instead of
// exiting; an ExitError carries a non-zero exit code up to Execute.
package cmd
