// SPDX-License-Identifier: MPL-2.0

package integrity

import (
	"fmt"

	"github.com/allyourbase/allyourbase/internal/report"
)

const (
	// ReasonMissingEffect means the record has no addiction effect reference.
	ReasonMissingEffect Reason = "missing_addiction_effect"
	// ReasonMissingClass means the referenced effect resolved without a class.
	ReasonMissingClass Reason = "missing_effect_class"
)

type (
	// Reason explains why a record failed the check.
	Reason string

	// EffectRef is a resolved addiction effect definition.
	EffectRef struct {
		// DefName identifies the effect definition.
		DefName string `json:"def_name" toml:"def_name"`
		// Class is the effect's implementing class. Empty when the resolved
		// definition does not declare one.
		Class string `json:"class,omitempty" toml:"class,omitempty"`
	}

	// ChemicalRecord is a resolved chemical definition.
	ChemicalRecord struct {
		DefName string `json:"def_name" toml:"def_name"`
		ModName string `json:"mod_name" toml:"mod_name"`
		// AddictionEffect is nil when the definition has no addiction effect or
		// the reference does not resolve.
		AddictionEffect *EffectRef `json:"addiction_effect,omitempty" toml:"addiction_effect,omitempty"`
	}

	// Registry exposes resolved chemical definitions.
	Registry interface {
		Chemicals() []ChemicalRecord
	}

	// Violation is one record that failed the check.
	Violation struct {
		Record ChemicalRecord `json:"record" toml:"record"`
		Reason Reason         `json:"reason" toml:"reason"`
	}
)

// Validate inspects a single record and returns the violation reason, if any.
func Validate(rec ChemicalRecord) (Reason, bool) {
	switch {
	case rec.AddictionEffect == nil:
		return ReasonMissingEffect, true
	case rec.AddictionEffect.Class == "":
		return ReasonMissingClass, true
	default:
		return "", false
	}
}

// Check validates every record in reg and emits one error per violation to
// sink. A nil registry yields no violations.
func Check(reg Registry, sink report.Sink) []Violation {
	if reg == nil {
		return nil
	}

	var violations []Violation
	for _, rec := range reg.Chemicals() {
		reason, bad := Validate(rec)
		if !bad {
			continue
		}
		violations = append(violations, Violation{Record: rec, Reason: reason})
		if sink != nil {
			report.Errorf(sink, "%s", Message(rec, reason))
		}
	}
	return violations
}

// Message formats the operator-facing text for a violation.
func Message(rec ChemicalRecord, reason Reason) string {
	detail := "has no addictionHediff"
	if reason == ReasonMissingClass {
		detail = fmt.Sprintf("has addictionHediff %s with no hediffClass", rec.AddictionEffect.DefName)
	}
	return fmt.Sprintf("%s from mod %s %s. This will break raids and worldgen. Misconfigured XML or parent.",
		rec.DefName, rec.ModName, detail)
}

// Slice adapts a fixed list of records to the Registry interface.
type Slice []ChemicalRecord

// Chemicals returns the records.
func (s Slice) Chemicals() []ChemicalRecord { return s }
