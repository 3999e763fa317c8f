// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// GateAlways runs the audit on every start.
	GateAlways GateMode = "always"
	// GateDevMode runs the audit only when dev_mode is on.
	GateDevMode GateMode = "dev_mode"

	// OutputHuman renders a styled terminal summary.
	OutputHuman OutputFormat = "human"
	// OutputJSON writes the run summary as JSON.
	OutputJSON OutputFormat = "json"
	// OutputTOML writes the run summary as TOML.
	OutputTOML OutputFormat = "toml"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultDefsDir is the per-mod definitions subdirectory.
	DefaultDefsDir = "Defs"
	// DefaultNameAttribute is the template name attribute.
	DefaultNameAttribute = "Name"
	// DefaultMaxMessages is the report message cap.
	DefaultMaxMessages = 1000
	// DefaultPersistTimeout bounds a single file save.
	DefaultPersistTimeout = "30s"
)

var (
	// ErrInvalidGateMode is returned when a GateMode value is not recognized.
	ErrInvalidGateMode = errors.New("invalid gate")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidTrustedPattern is returned when a trusted package pattern is malformed.
	ErrInvalidTrustedPattern = errors.New("invalid trusted package pattern")
	// ErrInvalidPersistTimeout is returned when persist.timeout is not a positive duration.
	ErrInvalidPersistTimeout = errors.New("invalid persist timeout")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// GateMode decides when the audit runs.
	// Defined locally to avoid coupling config to internal/basecheck.
	GateMode string

	// InvalidGateModeError is returned when a GateMode value is not recognized.
	// It wraps ErrInvalidGateMode for errors.Is() compatibility.
	InvalidGateModeError struct {
		Value GateMode
	}

	// OutputFormat selects how audit results are printed.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// TrustedPattern is a doublestar pattern over lower-cased package ids.
	TrustedPattern string

	// InvalidTrustedPatternError is returned when a TrustedPattern does not compile.
	// It wraps ErrInvalidTrustedPattern for errors.Is() compatibility.
	InvalidTrustedPatternError struct {
		Value TrustedPattern
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ModDirs lists directories whose immediate subdirectories are mods.
		ModDirs []string `json:"mod_dirs" mapstructure:"mod_dirs"`
		// TrustedPackages selects the base corpus by package id.
		TrustedPackages []TrustedPattern `json:"trusted_packages" mapstructure:"trusted_packages"`
		// DefsDir is the definitions subdirectory inside each mod.
		DefsDir string `json:"defs_dir" mapstructure:"defs_dir"`
		// NameAttribute is the attribute that declares a template name.
		NameAttribute string `json:"name_attribute" mapstructure:"name_attribute"`
		// AutoFix removes overwriting definitions on the next run.
		AutoFix bool `json:"auto_fix" mapstructure:"auto_fix"`
		// DevMode is the developer mode preference.
		DevMode bool `json:"dev_mode" mapstructure:"dev_mode"`
		// Gate decides when the audit runs.
		Gate GateMode `json:"gate" mapstructure:"gate"`
		// Report configures message output.
		Report ReportConfig `json:"report" mapstructure:"report"`
		// Persist configures file rewrites.
		Persist PersistConfig `json:"persist" mapstructure:"persist"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ReportConfig configures message output.
	ReportConfig struct {
		// MaxMessages caps ordinary report messages per run.
		MaxMessages int `json:"max_messages" mapstructure:"max_messages"`
		// Output selects the summary format.
		Output OutputFormat `json:"output" mapstructure:"output"`
	}

	// PersistConfig configures file rewrites.
	PersistConfig struct {
		// Timeout is a Go duration string bounding a single save.
		Timeout string `json:"timeout" mapstructure:"timeout"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ModDirs:         []string{},
		TrustedPackages: []TrustedPattern{"ludeon.rimworld", "ludeon.rimworld.*"},
		DefsDir:         DefaultDefsDir,
		NameAttribute:   DefaultNameAttribute,
		Gate:            GateAlways,
		Report: ReportConfig{
			MaxMessages: DefaultMaxMessages,
			Output:      OutputHuman,
		},
		Persist: PersistConfig{Timeout: DefaultPersistTimeout},
		UI:      UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// IsValid returns whether the GateMode is one of the defined values.
func (g GateMode) IsValid() (bool, []error) {
	switch g {
	case GateAlways, GateDevMode:
		return true, nil
	default:
		return false, []error{&InvalidGateModeError{Value: g}}
	}
}

// Error implements the error interface for InvalidGateModeError.
func (e *InvalidGateModeError) Error() string {
	return fmt.Sprintf("invalid gate %q (valid: always, dev_mode)", e.Value)
}

// Unwrap returns ErrInvalidGateMode for errors.Is() compatibility.
func (e *InvalidGateModeError) Unwrap() error { return ErrInvalidGateMode }

// IsValid returns whether the OutputFormat is one of the defined values.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputHuman, OutputJSON, OutputTOML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: human, json, toml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// IsValid returns whether the ColorScheme is one of the defined values.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the pattern is non-empty and compiles.
func (p TrustedPattern) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" || !doublestar.ValidatePattern(string(p)) {
		return false, []error{&InvalidTrustedPatternError{Value: p}}
	}
	return true, nil
}

// Matches reports whether packageID, lower-cased, matches the pattern.
func (p TrustedPattern) Matches(packageID string) bool {
	ok, err := doublestar.Match(strings.ToLower(string(p)), strings.ToLower(packageID))
	return err == nil && ok
}

// Error implements the error interface for InvalidTrustedPatternError.
func (e *InvalidTrustedPatternError) Error() string {
	return fmt.Sprintf("invalid trusted package pattern %q", e.Value)
}

// Unwrap returns ErrInvalidTrustedPattern for errors.Is() compatibility.
func (e *InvalidTrustedPatternError) Unwrap() error { return ErrInvalidTrustedPattern }

// PersistTimeout parses Persist.Timeout. An empty value yields the default.
func (c *Config) PersistTimeout() (time.Duration, error) {
	raw := c.Persist.Timeout
	if raw == "" {
		raw = DefaultPersistTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPersistTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidPersistTimeout, raw)
	}
	return d, nil
}

// IsTrusted reports whether packageID belongs to the base corpus.
func (c *Config) IsTrusted(packageID string) bool {
	for _, p := range c.TrustedPackages {
		if p.Matches(packageID) {
			return true
		}
	}
	return false
}

// IsValid returns whether every field of the Config is valid.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if _, fieldErrs := c.Gate.IsValid(); fieldErrs != nil {
		errs = append(errs, fieldErrs...)
	}
	if _, fieldErrs := c.Report.Output.IsValid(); fieldErrs != nil {
		errs = append(errs, fieldErrs...)
	}
	if _, fieldErrs := c.UI.ColorScheme.IsValid(); fieldErrs != nil {
		errs = append(errs, fieldErrs...)
	}
	for _, p := range c.TrustedPackages {
		if _, fieldErrs := p.IsValid(); fieldErrs != nil {
			errs = append(errs, fieldErrs...)
		}
	}
	if _, err := c.PersistTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Report.MaxMessages <= 0 {
		errs = append(errs, fmt.Errorf("report.max_messages must be positive, got %d", c.Report.MaxMessages))
	}
	if strings.TrimSpace(c.DefsDir) == "" {
		errs = append(errs, errors.New("defs_dir must not be empty"))
	}
	if strings.TrimSpace(c.NameAttribute) == "" {
		errs = append(errs, errors.New("name_attribute must not be empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
