// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"

	"github.com/allyourbase/allyourbase/internal/config"
	"github.com/allyourbase/allyourbase/internal/issue"
)

func TestNewRootCommandSubcommands(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Dependencies{})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	root := NewRootCommand(app)
	for _, name := range []string{"audit", "config", "explain"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, c, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{name: "with cause", err: &ExitError{Code: 1, Err: cause}, want: "boom"},
		{name: "code only", err: &ExitError{Code: 3}, want: "exit status 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
	if !errors.Is(&ExitError{Code: 1, Err: cause}, cause) {
		t.Error("ExitError does not unwrap to its cause")
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	ae := issue.NewErrorContext().
		WithOperation("discover mods").
		WithSuggestion("Pass --mods-dir").
		Wrap(errors.New("no mods")).
		BuildError()
	if got := formatErrorForDisplay(ae, false); got == ae.Error() {
		t.Errorf("actionable error not formatted with suggestions: %q", got)
	}
	plain := errors.New("plain")
	if got := formatErrorForDisplay(plain, false); got != "plain" {
		t.Errorf("formatErrorForDisplay(plain) = %q", got)
	}
}

func TestGlamourStyle(t *testing.T) {
	t.Parallel()

	if got := glamourStyle(config.ColorSchemeLight); got != "light" {
		t.Errorf("glamourStyle(light) = %q", got)
	}
	if got := glamourStyle(config.ColorSchemeDark); got != "dark" {
		t.Errorf("glamourStyle(dark) = %q", got)
	}
}
