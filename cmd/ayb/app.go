// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/allyourbase/allyourbase/internal/config"
	"github.com/allyourbase/allyourbase/internal/defdb"
	"github.com/allyourbase/allyourbase/internal/discovery"
)

const codeConfigLoadFailed = "config_load_failed"

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives an App and reaches configuration, discovery, and output through
	// it.
	App struct {
		Config      config.Provider
		Discovery   DiscoveryFactory
		Diagnostics DiagnosticRenderer
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		Discovery   DiscoveryFactory
		Diagnostics DiagnosticRenderer
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// Loader loads the definition corpus.
	Loader interface {
		Load(ctx context.Context) (*discovery.LoadResult, error)
		ModDirs() []string
	}

	// DiscoveryFactory creates a Loader for a resolved configuration.
	DiscoveryFactory func(cfg *config.Config) Loader

	// DiagnosticRenderer renders structured diagnostics.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []discovery.Diagnostic, stderr io.Writer)
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Discovery == nil {
		deps.Discovery = func(cfg *config.Config) Loader { return discovery.New(cfg) }
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}

	return &App{
		Config:      deps.Config,
		Discovery:   deps.Discovery,
		Diagnostics: deps.Diagnostics,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

// loadConfigWithFallback loads configuration via the provider. On failure it
// returns defaults with a diagnostic so read-only commands stay usable.
//
// An explicit --config path or an existing but malformed file is an error
// diagnostic; a missing config directory is only a warning.
func loadConfigWithFallback(ctx context.Context, provider config.Provider, opts config.LoadOptions) (*config.Config, string, []discovery.Diagnostic) {
	cfg, source, err := provider.LoadWithSource(ctx, opts)
	if err == nil {
		return cfg, source, nil
	}

	if opts.ConfigFilePath != "" {
		return config.DefaultConfig(), "", []discovery.Diagnostic{{
			Severity: discovery.SeverityError,
			Code:     codeConfigLoadFailed,
			Message:  fmt.Sprintf("failed to load config from %s: %v", opts.ConfigFilePath, err),
			Path:     opts.ConfigFilePath,
			Cause:    err,
		}}
	}

	severity := discovery.SeverityError
	if errors.Is(err, os.ErrNotExist) {
		severity = discovery.SeverityWarning
	}
	return config.DefaultConfig(), "", []discovery.Diagnostic{{
		Severity: severity,
		Code:     codeConfigLoadFailed,
		Message:  fmt.Sprintf("failed to load config, using defaults: %v", err),
		Cause:    err,
	}}
}

// registryDiagnostics converts definition resolution problems into warnings.
func registryDiagnostics(reg *defdb.Registry) []discovery.Diagnostic {
	src := reg.Diagnostics()
	out := make([]discovery.Diagnostic, 0, len(src))
	for _, d := range src {
		out = append(out, discovery.Diagnostic{
			Severity: discovery.SeverityWarning,
			Code:     d.Code,
			Message:  d.Message,
			Path:     d.Path,
		})
	}
	return out
}

func hasErrors(diags []discovery.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == discovery.SeverityError {
			return true
		}
	}
	return false
}

// Render writes structured diagnostics to stderr with lipgloss styling.
func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []discovery.Diagnostic, stderr io.Writer) {
	for _, diag := range diags {
		prefix := WarningStyle.Render("warning")
		if diag.Severity == discovery.SeverityError {
			prefix = ErrorStyle.Render("error")
		}

		if diag.Path != "" {
			_, _ = fmt.Fprintf(stderr, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}

		_, _ = fmt.Fprintf(stderr, "%s: %s\n", prefix, diag.Message)
	}
}
