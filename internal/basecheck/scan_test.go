// SPDX-License-Identifier: MPL-2.0

package basecheck

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/allyourbase/allyourbase/pkg/defxml"
)

const overlaySrc = `<Defs>
  <HediffDef Name="BaseHediff"/>
  <!-- comment -->
  <ThingDef Name="CustomThing"/>
  <ThingDef><defName>Unnamed</defName></ThingDef>
  <ThingDef Name="BaseRace"/>
</Defs>`

func TestScan(t *testing.T) {
	t.Parallel()

	known := NewKnownNameSet("BaseHediff", "BaseRace")

	tests := []struct {
		name  string
		order Order
		want  []string
	}{
		{name: "forward", order: OrderForward, want: []string{"BaseHediff", "BaseRace"}},
		{name: "reverse", order: OrderReverse, want: []string{"BaseRace", "BaseHediff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := parseDoc(t, defxml.PartitionUntrusted, "Mod", "mod/Defs.xml", overlaySrc)
			got := Scan(doc, known, defxml.DefaultNameAttr, tt.order)

			var names []string
			for _, c := range got {
				names = append(names, c.Name)
				if c.ModName != "Mod" || c.Path != "mod/Defs.xml" || c.Partition != defxml.PartitionUntrusted {
					t.Errorf("collision provenance = %+v", c)
				}
				el, ok := doc.Root().Child[c.Index].(*etree.Element)
				if !ok || el.SelectAttrValue("Name", "") != c.Name {
					t.Errorf("Index %d does not address %q", c.Index, c.Name)
				}
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("Scan() names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScan_Skips(t *testing.T) {
	t.Parallel()

	known := NewKnownNameSet("BaseHediff")

	trusted := parseDoc(t, defxml.PartitionTrusted, "Core", "core/a.xml", `<Defs><A Name="BaseHediff"/></Defs>`)
	if got := Scan(trusted, known, defxml.DefaultNameAttr, OrderForward); got != nil {
		t.Errorf("Scan(trusted) = %v, want nil", got)
	}

	empty := &defxml.Document{Partition: defxml.PartitionUntrusted, Tree: etree.NewDocument()}
	if got := Scan(empty, known, defxml.DefaultNameAttr, OrderForward); got != nil {
		t.Errorf("Scan(no root) = %v, want nil", got)
	}

	if got := Scan(nil, known, defxml.DefaultNameAttr, OrderForward); got != nil {
		t.Errorf("Scan(nil) = %v, want nil", got)
	}
}

func TestScan_Idempotent(t *testing.T) {
	t.Parallel()

	known := NewKnownNameSet("BaseHediff", "BaseRace")
	doc := parseDoc(t, defxml.PartitionUntrusted, "Mod", "mod/Defs.xml", overlaySrc)

	first := Scan(doc, known, defxml.DefaultNameAttr, OrderReverse)
	second := Scan(doc, known, defxml.DefaultNameAttr, OrderReverse)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second Scan() differs (-first +second):\n%s", diff)
	}
}

func TestScan_DuplicateNamesEachReported(t *testing.T) {
	t.Parallel()

	known := NewKnownNameSet("BaseHediff")
	doc := parseDoc(t, defxml.PartitionUntrusted, "Mod", "mod/Defs.xml",
		`<Defs><A Name="BaseHediff"/><B Name="BaseHediff"/></Defs>`)

	got := Scan(doc, known, defxml.DefaultNameAttr, OrderForward)
	want := []Collision{
		{Partition: defxml.PartitionUntrusted, ModName: "Mod", Path: "mod/Defs.xml", Name: "BaseHediff"},
		{Partition: defxml.PartitionUntrusted, ModName: "Mod", Path: "mod/Defs.xml", Name: "BaseHediff"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Collision{}, "Index")); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}
