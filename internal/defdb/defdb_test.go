// SPDX-License-Identifier: MPL-2.0

package defdb

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/allyourbase/allyourbase/internal/integrity"
	"github.com/allyourbase/allyourbase/pkg/defxml"
)

func doc(t *testing.T, partition defxml.Partition, mod, path, src string) *defxml.Document {
	t.Helper()
	tree, err := defxml.Parse([]byte(src), path)
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", path, err)
	}
	return &defxml.Document{Partition: partition, ModName: mod, Path: path, Tree: tree}
}

func liTexts(t *testing.T, r *Registry, tag, defName, list string) []string {
	t.Helper()
	d, ok := r.Def(tag, defName)
	if !ok {
		t.Fatalf("Def(%s, %s) not found", tag, defName)
	}
	var out []string
	if l := d.Resolved.SelectElement(list); l != nil {
		for _, li := range l.SelectElements("li") {
			out = append(out, li.Text())
		}
	}
	return out
}

func TestBuild_Inheritance(t *testing.T) {
	t.Parallel()

	r := Build([]*defxml.Document{doc(t, defxml.PartitionTrusted, "Core", "core.xml", `<Defs>
  <ThingDef Name="BaseThing" Abstract="True">
    <label>base</label>
    <stats><Mass>1</Mass><Beauty>2</Beauty></stats>
    <tags><li>A</li></tags>
    <comps><li>CompA</li></comps>
  </ThingDef>
  <ThingDef ParentName="BaseThing">
    <defName>Rock</defName>
    <stats><Mass>5</Mass></stats>
    <tags><li>B</li></tags>
    <comps Inherit="False"><li>CompB</li></comps>
  </ThingDef>
</Defs>`)})

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (abstract templates are not definitions)", r.Len())
	}
	rock, ok := r.Def("ThingDef", "Rock")
	if !ok {
		t.Fatal("Def(ThingDef, Rock) not found")
	}
	if got := childText(rock.Resolved, "label"); got != "base" {
		t.Errorf("inherited label = %q, want base", got)
	}
	stats := rock.Resolved.SelectElement("stats")
	if got := childText(stats, "Mass"); got != "5" {
		t.Errorf("Mass = %q, want 5", got)
	}
	if got := childText(stats, "Beauty"); got != "2" {
		t.Errorf("Beauty = %q, want 2", got)
	}
	if diff := cmp.Diff([]string{"A", "B"}, liTexts(t, r, "ThingDef", "Rock", "tags")); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"CompB"}, liTexts(t, r, "ThingDef", "Rock", "comps")); diff != "" {
		t.Errorf("comps mismatch (-want +got):\n%s", diff)
	}
	if len(r.Diagnostics()) != 0 {
		t.Errorf("Diagnostics() = %v, want none", r.Diagnostics())
	}
}

func TestBuild_Diagnostics(t *testing.T) {
	t.Parallel()

	r := Build([]*defxml.Document{doc(t, defxml.PartitionUntrusted, "Mod", "mod.xml", `<Defs>
  <ThingDef ParentName="Missing"><defName>Orphan</defName><label>own</label></ThingDef>
  <ThingDef Name="LoopA" ParentName="LoopB" Abstract="True"/>
  <ThingDef Name="LoopB" ParentName="LoopA" Abstract="True"/>
  <ThingDef Name="Self" ParentName="Self"><defName>Selfish</defName></ThingDef>
</Defs>`)})

	var codes []string
	for _, d := range r.Diagnostics() {
		codes = append(codes, d.Code)
		if d.Path != "mod.xml" {
			t.Errorf("diagnostic path = %q, want mod.xml", d.Path)
		}
	}
	want := []string{CodeParentNotFound, CodeInheritanceCycle, CodeInheritanceCycle}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("diagnostic codes mismatch (-want +got):\n%s", diff)
	}

	orphan, ok := r.Def("ThingDef", "Orphan")
	if !ok || childText(orphan.Resolved, "label") != "own" {
		t.Errorf("unresolved def should keep its own content, got %+v", orphan)
	}
}

func TestBuild_LaterOverridesEarlier(t *testing.T) {
	t.Parallel()

	r := Build([]*defxml.Document{
		doc(t, defxml.PartitionTrusted, "Core", "core.xml",
			`<Defs><HediffDef Name="BaseHediff" Abstract="True"><hediffClass>HediffWithComps</hediffClass></HediffDef>
<HediffDef><defName>Dup</defName><label>core</label></HediffDef></Defs>`),
		doc(t, defxml.PartitionUntrusted, "Mod", "mod.xml",
			`<Defs><HediffDef Name="BaseHediff" Abstract="True"><label>mod</label></HediffDef>
<HediffDef><defName>Dup</defName><label>mod</label></HediffDef></Defs>`),
	})

	d, ok := r.Def("HediffDef", "Dup")
	if !ok || d.ModName != "Mod" {
		t.Errorf("Def(Dup) = %+v, want the Mod version", d)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	tmpl, ok := r.Template("BaseHediff")
	if !ok || childText(tmpl, "hediffClass") != "" {
		t.Errorf("Template(BaseHediff) should be the overlay version without hediffClass")
	}
}

func TestRegistry_Chemicals(t *testing.T) {
	t.Parallel()

	core := doc(t, defxml.PartitionTrusted, "Core", "core.xml", `<Defs>
  <HediffDef Name="AddictionBase" Abstract="True"><hediffClass>Hediff_Addiction</hediffClass></HediffDef>
  <HediffDef ParentName="AddictionBase"><defName>SmokeleafAddiction</defName></HediffDef>
  <HediffDef><defName>Classless</defName></HediffDef>
  <ChemicalDef Name="DrugBase" Abstract="True"><addictionHediff>SmokeleafAddiction</addictionHediff></ChemicalDef>
  <ChemicalDef ParentName="DrugBase"><defName>Smokeleaf</defName></ChemicalDef>
  <ChemicalDef><defName>Glitter</defName></ChemicalDef>
  <ChemicalDef><defName>Fizz</defName><addictionHediff>Classless</addictionHediff></ChemicalDef>
  <ChemicalDef><defName>Ghost</defName><addictionHediff>NoSuchHediff</addictionHediff></ChemicalDef>
</Defs>`)

	r := Build([]*defxml.Document{core})
	want := []integrity.ChemicalRecord{
		{DefName: "Smokeleaf", ModName: "Core", AddictionEffect: &integrity.EffectRef{DefName: "SmokeleafAddiction", Class: "Hediff_Addiction"}},
		{DefName: "Glitter", ModName: "Core"},
		{DefName: "Fizz", ModName: "Core", AddictionEffect: &integrity.EffectRef{DefName: "Classless"}},
		{DefName: "Ghost", ModName: "Core"},
	}
	if diff := cmp.Diff(want, r.Chemicals()); diff != "" {
		t.Errorf("Chemicals() mismatch (-want +got):\n%s", diff)
	}

	violations := integrity.Check(r, nil)
	if len(violations) != 3 {
		t.Errorf("Check() = %d violations, want 3: %+v", len(violations), violations)
	}
}
