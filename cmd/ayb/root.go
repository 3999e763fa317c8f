// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/allyourbase/allyourbase/internal/config"
	"github.com/allyourbase/allyourbase/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags are the persistent flags shared by all subcommands.
type rootFlags struct {
	configPath string
	verbose    bool
}

// loadOptions returns the config loading inputs selected by --config.
func (f *rootFlags) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: f.configPath}
}

// NewRootCommand builds the ayb command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "ayb",
		Short: "Find mods that overwrite base game templates",
		Long: TitleStyle.Render("ayb") + SubtitleStyle.Render(" - audit mod definitions against the base game") + `

ayb reads the XML definitions of the base game and every installed mod, and
reports each mod definition that redeclares a template Name owned by the base
game. Such redeclarations silently replace the base template for every other
mod and cause hard-to-trace compatibility errors.

With auto-fix enabled, ayb deletes the offending definitions from the mod
files once, then switches auto-fix off again.

` + SubtitleStyle.Render("Examples:") + `
  ayb audit --mods-dir ~/RimWorld/Data --mods-dir ~/RimWorld/Mods
  ayb audit --auto-fix
  ayb audit --output json
  ayb explain template-collision
  ayb config show`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is the ayb config directory's config.cue)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newAuditCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))
	rootCmd.AddCommand(newExplainCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the resulting status code.
// It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version is passed as an option.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors use
// their own formatting; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// glamourStyle maps the configured color scheme onto a glamour style name.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if os.Getenv("NO_COLOR") != "" {
			return "notty"
		}
		return "dark"
	}
}
