// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/allyourbase/allyourbase/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "ayb"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variable overrides (AYB_AUTO_FIX, AYB_REPORT_OUTPUT).
	EnvPrefix = "AYB"
)

// ErrUnknownKey is returned by SetValue for keys that are not settable.
var ErrUnknownKey = errors.New("unknown configuration key")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the ayb configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the config file that opts point at, whether or not it exists.
func FilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions loads configuration and returns the file it came from, or ""
// when only defaults (and environment overrides) apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper(true)

	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'ayb config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", loadError(opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(cuePath) {
			if err := loadCUEIntoViper(v, cuePath); err != nil {
				return nil, "", loadError(cuePath, err)
			}
			resolvedPath = cuePath
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if _, errs := cfg.IsValid(); len(errs) > 0 {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Run 'ayb config show' to inspect the effective values").
			WithSuggestion("Check AYB_* environment variables for overrides").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("Run 'ayb explain config-load-failed' for details").
		Wrap(err).
		BuildError()
}

// newViper returns a Viper instance holding the defaults, with AYB_*
// environment overrides when env is set.
func newViper(env bool) *viper.Viper {
	v := viper.New()
	if env {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	defaults := DefaultConfig()
	v.SetDefault("mod_dirs", defaults.ModDirs)
	v.SetDefault("trusted_packages", defaults.TrustedPackages)
	v.SetDefault("defs_dir", defaults.DefsDir)
	v.SetDefault("name_attribute", defaults.NameAttribute)
	v.SetDefault("auto_fix", defaults.AutoFix)
	v.SetDefault("dev_mode", defaults.DevMode)
	v.SetDefault("gate", defaults.Gate)
	v.SetDefault("report.max_messages", defaults.Report.MaxMessages)
	v.SetDefault("report.output", defaults.Report.Output)
	v.SetDefault("persist.timeout", defaults.Persist.Timeout)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	return v
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. Fields are optional, so validation does
// not require concrete values.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := checkFileSize(data, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig creates a default config file in configDirPath (or the
// standard directory when empty) if none exists, and returns its path.
func CreateDefaultConfig(configDirPath string) (string, error) {
	cfgPath, err := FilePath(LoadOptions{ConfigDirPath: configDirPath})
	if err != nil {
		return "", err
	}
	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	return cfgPath, SaveFile(DefaultConfig(), cfgPath)
}

// Save writes cfg to the config file in configDirPath, or the standard
// directory when empty.
func Save(cfg *Config, configDirPath string) error {
	cfgPath, err := FilePath(LoadOptions{ConfigDirPath: configDirPath})
	if err != nil {
		return err
	}
	return SaveFile(cfg, cfgPath)
}

// SaveFile writes cfg as CUE to path, creating parent directories.
func SaveFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DisableAutoFix switches auto_fix off in the config file that opts resolve to.
// It reports whether the file was changed; nothing is written when no config
// file exists or auto_fix is already off there.
func DisableAutoFix(ctx context.Context, opts LoadOptions) (bool, error) {
	path, err := FilePath(opts)
	if err != nil {
		return false, err
	}
	if !fileExists(path) {
		return false, nil
	}

	cfg, err := loadFileOnly(path)
	if err != nil {
		return false, err
	}
	if !cfg.AutoFix {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	cfg.AutoFix = false
	if err := SaveFile(cfg, path); err != nil {
		return false, issue.NewErrorContext().
			WithOperation("disable auto-fix").
			WithResource(path).
			WithSuggestion("Set auto_fix: false manually before the next run").
			Wrap(err).
			BuildError()
	}
	return true, nil
}

// UpdateFile applies update to the config file that opts resolve to and writes
// it back, starting from defaults when the file does not exist yet. Environment
// overrides are neither read nor persisted. It returns the file path.
func UpdateFile(ctx context.Context, opts LoadOptions, update func(*Config) error) (string, error) {
	path, err := FilePath(opts)
	if err != nil {
		return "", err
	}

	cfg := DefaultConfig()
	if fileExists(path) {
		if cfg, err = loadFileOnly(path); err != nil {
			return "", err
		}
	}
	if err := update(cfg); err != nil {
		return "", err
	}
	if _, errs := cfg.IsValid(); len(errs) > 0 {
		return "", &InvalidConfigError{FieldErrors: errs}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return path, SaveFile(cfg, path)
}

// loadFileOnly reads path over the defaults without environment overrides.
func loadFileOnly(path string) (*Config, error) {
	v := newViper(false)
	if err := loadCUEIntoViper(v, path); err != nil {
		return nil, loadError(path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SettableKeys lists the keys accepted by SetValue.
func SettableKeys() []string {
	return []string{
		"auto_fix", "dev_mode", "gate", "defs_dir", "name_attribute",
		"report.max_messages", "report.output", "persist.timeout",
		"ui.color_scheme", "ui.verbose",
	}
}

// SetValue assigns a string value to the field named by key.
func SetValue(cfg *Config, key, value string) error {
	switch key {
	case "auto_fix":
		cfg.AutoFix = parseBool(value)
	case "dev_mode":
		cfg.DevMode = parseBool(value)
	case "gate":
		if _, errs := GateMode(value).IsValid(); len(errs) > 0 {
			return errs[0]
		}
		cfg.Gate = GateMode(value)
	case "defs_dir":
		if strings.TrimSpace(value) == "" {
			return errors.New("defs_dir must not be empty")
		}
		cfg.DefsDir = value
	case "name_attribute":
		if strings.TrimSpace(value) == "" {
			return errors.New("name_attribute must not be empty")
		}
		cfg.NameAttribute = value
	case "report.max_messages":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("report.max_messages must be a positive integer, got %q", value)
		}
		cfg.Report.MaxMessages = n
	case "report.output":
		if _, errs := OutputFormat(value).IsValid(); len(errs) > 0 {
			return errs[0]
		}
		cfg.Report.Output = OutputFormat(value)
	case "persist.timeout":
		prev := cfg.Persist.Timeout
		cfg.Persist.Timeout = value
		if _, err := cfg.PersistTimeout(); err != nil {
			cfg.Persist.Timeout = prev
			return err
		}
	case "ui.color_scheme":
		if _, errs := ColorScheme(value).IsValid(); len(errs) > 0 {
			return errs[0]
		}
		cfg.UI.ColorScheme = ColorScheme(value)
	case "ui.verbose":
		cfg.UI.Verbose = parseBool(value)
	default:
		return fmt.Errorf("%w: %s\nValid keys: %s", ErrUnknownKey, key, strings.Join(SettableKeys(), ", "))
	}
	return nil
}

func parseBool(value string) bool {
	return value == "true" || value == "1"
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// ayb configuration file\n")
	sb.WriteString("// Run 'ayb config show' to see the effective values.\n\n")

	sb.WriteString("mod_dirs: [")
	writeCUEList(&sb, cfg.ModDirs)
	sb.WriteString("]\n")

	patterns := make([]string, 0, len(cfg.TrustedPackages))
	for _, p := range cfg.TrustedPackages {
		patterns = append(patterns, string(p))
	}
	sb.WriteString("trusted_packages: [")
	writeCUEList(&sb, patterns)
	sb.WriteString("]\n")

	fmt.Fprintf(&sb, "defs_dir: %q\n", cfg.DefsDir)
	fmt.Fprintf(&sb, "name_attribute: %q\n", cfg.NameAttribute)

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "auto_fix: %v\n", cfg.AutoFix)
	fmt.Fprintf(&sb, "dev_mode: %v\n", cfg.DevMode)
	fmt.Fprintf(&sb, "gate: %q\n", cfg.Gate)

	sb.WriteString("\nreport: {\n")
	fmt.Fprintf(&sb, "\tmax_messages: %d\n", cfg.Report.MaxMessages)
	fmt.Fprintf(&sb, "\toutput: %q\n", cfg.Report.Output)
	sb.WriteString("}\n")

	sb.WriteString("\npersist: {\n")
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Persist.Timeout)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeCUEList(sb *strings.Builder, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(sb, "\t%q,\n", item)
	}
}
