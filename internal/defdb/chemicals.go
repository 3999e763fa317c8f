// SPDX-License-Identifier: MPL-2.0

package defdb

import (
	"github.com/allyourbase/allyourbase/internal/integrity"
)

const (
	chemicalDefTag     = "ChemicalDef"
	hediffDefTag       = "HediffDef"
	addictionHediffTag = "addictionHediff"
	hediffClassTag     = "hediffClass"
)

// Chemicals returns a record for every concrete ChemicalDef in load order.
// The addiction effect is resolved against the HediffDef index; an absent or
// unknown reference leaves AddictionEffect nil.
func (r *Registry) Chemicals() []integrity.ChemicalRecord {
	defs := r.Defs(chemicalDefTag)
	out := make([]integrity.ChemicalRecord, 0, len(defs))
	for _, d := range defs {
		rec := integrity.ChemicalRecord{DefName: d.DefName, ModName: d.ModName}
		if ref := childText(d.Resolved, addictionHediffTag); ref != "" {
			if hediff, ok := r.Def(hediffDefTag, ref); ok {
				rec.AddictionEffect = &integrity.EffectRef{
					DefName: ref,
					Class:   childText(hediff.Resolved, hediffClassTag),
				}
			}
		}
		out = append(out, rec)
	}
	return out
}
