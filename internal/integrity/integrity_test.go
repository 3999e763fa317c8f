// SPDX-License-Identifier: MPL-2.0

package integrity

import (
	"strings"
	"testing"

	"github.com/allyourbase/allyourbase/internal/report"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rec     ChemicalRecord
		want    Reason
		wantBad bool
	}{
		{
			name:    "missing effect",
			rec:     ChemicalRecord{DefName: "Psychite", ModName: "Drugs+"},
			want:    ReasonMissingEffect,
			wantBad: true,
		},
		{
			name:    "missing class",
			rec:     ChemicalRecord{DefName: "Psychite", AddictionEffect: &EffectRef{DefName: "PsychiteAddiction"}},
			want:    ReasonMissingClass,
			wantBad: true,
		},
		{
			name: "complete",
			rec: ChemicalRecord{DefName: "Psychite", AddictionEffect: &EffectRef{
				DefName: "PsychiteAddiction", Class: "Hediff_Addiction",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, bad := Validate(tt.rec)
			if got != tt.want || bad != tt.wantBad {
				t.Errorf("Validate() = (%q, %v), want (%q, %v)", got, bad, tt.want, tt.wantBad)
			}
		})
	}
}

func TestCheck_ReportsExactlyViolations(t *testing.T) {
	t.Parallel()

	reg := Slice{
		{DefName: "Alcohol", ModName: "Core", AddictionEffect: &EffectRef{DefName: "AlcoholAddiction", Class: "Hediff_Addiction"}},
		{DefName: "Smokeleaf", ModName: "BadMod"},
		{DefName: "Luciferium", ModName: "OtherMod", AddictionEffect: &EffectRef{DefName: "LuciAddiction"}},
	}
	rec := &report.Recorder{}

	violations := Check(reg, rec)
	if len(violations) != 2 {
		t.Fatalf("len(violations) = %d, want 2", len(violations))
	}
	if violations[0].Record.DefName != "Smokeleaf" || violations[0].Reason != ReasonMissingEffect {
		t.Errorf("violations[0] = %+v", violations[0])
	}
	if violations[1].Record.DefName != "Luciferium" || violations[1].Reason != ReasonMissingClass {
		t.Errorf("violations[1] = %+v", violations[1])
	}

	errs := rec.Texts(report.SeverityError)
	if len(errs) != 2 {
		t.Fatalf("error reports = %d, want 2", len(errs))
	}
	if !strings.Contains(errs[0], "Smokeleaf from mod BadMod") {
		t.Errorf("report %q should name the record and its mod", errs[0])
	}
	if !strings.Contains(errs[1], "LuciAddiction") {
		t.Errorf("report %q should name the unresolved effect", errs[1])
	}
	if len(rec.Entries()) != 2 {
		t.Errorf("only error reports expected, got %d entries", len(rec.Entries()))
	}
}

func TestCheck_NilRegistry(t *testing.T) {
	t.Parallel()

	if v := Check(nil, &report.Recorder{}); v != nil {
		t.Errorf("Check(nil) = %v, want nil", v)
	}
}
