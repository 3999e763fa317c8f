// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"testing"
)

func contextWithCancel(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithCancel(t.Context())
}

func TestTrustedPattern_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern TrustedPattern
		id      string
		want    bool
	}{
		{"ludeon.rimworld", "Ludeon.RimWorld", true},
		{"ludeon.rimworld.*", "Ludeon.RimWorld.Royalty", true},
		{"ludeon.rimworld.*", "Ludeon.RimWorld", false},
		{"ludeon.rimworld", "someone.rimworldtweaks", false},
		{"Ludeon.*", "ludeon.rimworld", true},
	}

	for _, tt := range tests {
		if got := tt.pattern.Matches(tt.id); got != tt.want {
			t.Errorf("TrustedPattern(%q).Matches(%q) = %v, want %v", tt.pattern, tt.id, got, tt.want)
		}
	}

	cfg := DefaultConfig()
	if !cfg.IsTrusted("Ludeon.RimWorld.Ideology") || cfg.IsTrusted("brrainz.harmony") {
		t.Error("IsTrusted() with default patterns")
	}
}

func TestTypedValues_IsValid(t *testing.T) {
	t.Parallel()

	if _, errs := GateMode("weekly").IsValid(); len(errs) != 1 || !errors.Is(errs[0], ErrInvalidGateMode) {
		t.Errorf("GateMode.IsValid() = %v", errs)
	}
	if _, errs := OutputFormat("yaml").IsValid(); len(errs) != 1 || !errors.Is(errs[0], ErrInvalidOutputFormat) {
		t.Errorf("OutputFormat.IsValid() = %v", errs)
	}
	if _, errs := ColorScheme("neon").IsValid(); len(errs) != 1 || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("ColorScheme.IsValid() = %v", errs)
	}
	if _, errs := TrustedPattern("a[").IsValid(); len(errs) != 1 || !errors.Is(errs[0], ErrInvalidTrustedPattern) {
		t.Errorf("TrustedPattern.IsValid() = %v", errs)
	}
	if _, errs := TrustedPattern("  ").IsValid(); len(errs) != 1 {
		t.Errorf("blank TrustedPattern.IsValid() = %v", errs)
	}
}

func TestConfig_IsValid_CollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Gate = "nope"
	cfg.Report.MaxMessages = 0
	cfg.DefsDir = ""

	valid, errs := cfg.IsValid()
	if valid || len(errs) != 1 {
		t.Fatalf("IsValid() = %v, %v", valid, errs)
	}
	var ce *InvalidConfigError
	if !errors.As(errs[0], &ce) || len(ce.FieldErrors) != 3 {
		t.Fatalf("errs[0] = %v, want InvalidConfigError with 3 field errors", errs[0])
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("InvalidConfigError does not wrap ErrInvalidConfig")
	}
}
