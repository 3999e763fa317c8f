// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/allyourbase/allyourbase/internal/config"
	"github.com/allyourbase/allyourbase/internal/issue"
)

// newConfigCommand creates the `ayb config` command tree.
// Subcommands that read configuration use the App's config provider.
func newConfigCommand(app *App, root *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ayb configuration",
		Long: `Manage ayb configuration.

Configuration is stored in:
  - Linux: ~/.config/ayb/config.cue
  - macOS: ~/Library/Application Support/ayb/config.cue
  - Windows: %APPDATA%\ayb\config.cue

Every key can also be set with an AYB_ environment variable
(for example AYB_AUTO_FIX=true or AYB_REPORT_MAX_MESSAGES=50).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app, root)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value.\n\nValid keys: " + strings.Join(config.SettableKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, root, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), root.loadOptions())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return err
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, root *rootFlags) error {
	cfg, source, err := app.Config.LoadWithSource(ctx, root.loadOptions())
	if err != nil {
		if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("dark"); renderErr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("mod_dirs"))
	if len(cfg.ModDirs) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, dir := range cfg.ModDirs {
		fmt.Fprintf(w, "  - %s\n", valueStyle.Render(dir))
	}
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("trusted_packages"))
	for _, p := range cfg.TrustedPackages {
		fmt.Fprintf(w, "  - %s\n", valueStyle.Render(string(p)))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("defs_dir"), valueStyle.Render(cfg.DefsDir))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("name_attribute"), valueStyle.Render(cfg.NameAttribute))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("auto_fix"), valueStyle.Render(fmt.Sprintf("%v", cfg.AutoFix)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("dev_mode"), valueStyle.Render(fmt.Sprintf("%v", cfg.DevMode)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("gate"), valueStyle.Render(string(cfg.Gate)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("report"))
	fmt.Fprintf(w, "  max_messages: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Report.MaxMessages)))
	fmt.Fprintf(w, "  output: %s\n", valueStyle.Render(string(cfg.Report.Output)))
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("persist"))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Persist.Timeout))
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig(app *App, root *rootFlags) error {
	var (
		path string
		err  error
	)
	if root.configPath == "" {
		path, err = config.CreateDefaultConfig("")
	} else {
		path = root.configPath
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			err = config.SaveFile(config.DefaultConfig(), path)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	slog.Debug("config initialized", "path", path)
	fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App, root *rootFlags) error {
	path, err := config.FilePath(root.loadOptions())
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	return nil
}

func setConfigValue(ctx context.Context, app *App, root *rootFlags, key, value string) error {
	path, err := config.UpdateFile(ctx, root.loadOptions(), func(cfg *config.Config) error {
		return config.SetValue(cfg, key, value)
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	slog.Debug("config updated", "path", path, "key", key)
	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
