// SPDX-License-Identifier: MPL-2.0

package defxml

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	tree, err := Parse([]byte(src), "test.xml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return &Document{Partition: PartitionUntrusted, ModName: "Test", Path: "test.xml", Tree: tree}
}

func topLevelNames(d *Document) []string {
	var names []string
	for _, n := range d.TopLevel() {
		name, _ := DeclaredName(n.Element, DefaultNameAttr)
		names = append(names, name)
	}
	return names
}

func TestPartition_Validate(t *testing.T) {
	t.Parallel()

	for _, p := range []Partition{PartitionTrusted, PartitionUntrusted} {
		if err := p.Validate(); err != nil {
			t.Errorf("Partition(%q).Validate() = %v, want nil", p, err)
		}
	}

	err := Partition("core").Validate()
	if !errors.Is(err, ErrInvalidPartition) {
		t.Fatalf("Validate() = %v, want ErrInvalidPartition", err)
	}
	var pe *InvalidPartitionError
	if !errors.As(err, &pe) || pe.Value != "core" {
		t.Errorf("errors.As() = %v, want InvalidPartitionError{core}", err)
	}
}

func TestDocument_TopLevel_SkipsNonElements(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<?xml version="1.0" encoding="utf-8"?>
<Defs>
  <!-- comment -->
  <ThingDef Name="A"/>
  text
  <ThingDef><defName>B</defName></ThingDef>
</Defs>`)

	nodes := doc.TopLevel()
	if len(nodes) != 2 {
		t.Fatalf("len(TopLevel()) = %d, want 2", len(nodes))
	}
	for _, n := range nodes {
		if doc.Root().Child[n.Index] != n.Element {
			t.Errorf("node index %d does not address its element", n.Index)
		}
	}
}

func TestDocument_TopLevel_NoRoot(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"", `<?xml version="1.0"?>`, "<!-- only a comment -->"} {
		doc := mustParse(t, src)
		if doc.Root() != nil {
			t.Errorf("Root() for %q = %v, want nil", src, doc.Root())
		}
		if nodes := doc.TopLevel(); nodes != nil {
			t.Errorf("TopLevel() for %q = %v, want nil", src, nodes)
		}
	}

	var nilDoc *Document
	if nilDoc.Root() != nil {
		t.Error("nil Document Root() should be nil")
	}
}

func TestDeclaredName(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<Defs><A Name="Base"/><B name="lower"/><C/></Defs>`)
	nodes := doc.TopLevel()

	tests := []struct {
		name     string
		idx      int
		attr     string
		want     string
		wantBool bool
	}{
		{name: "declared", idx: 0, attr: "Name", want: "Base", wantBool: true},
		{name: "default attribute", idx: 0, attr: "", want: "Base", wantBool: true},
		{name: "case sensitive", idx: 1, attr: "Name", want: "", wantBool: false},
		{name: "custom attribute", idx: 1, attr: "name", want: "lower", wantBool: true},
		{name: "absent", idx: 2, attr: "Name", want: "", wantBool: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := DeclaredName(nodes[tt.idx].Element, tt.attr)
			if got != tt.want || ok != tt.wantBool {
				t.Errorf("DeclaredName() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantBool)
			}
		})
	}

	if _, ok := DeclaredName(nil, "Name"); ok {
		t.Error("DeclaredName(nil) should report false")
	}
}

// TestDocument_RemoveTopLevel_AllSubsets removes every subset of top-level
// elements from documents of size 0..6 and checks that exactly the chosen
// elements disappear and the rest keep their order.
func TestDocument_RemoveTopLevel_AllSubsets(t *testing.T) {
	t.Parallel()

	for n := 0; n <= 6; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			var sb strings.Builder
			sb.WriteString("<Defs>\n")
			for i := range n {
				fmt.Fprintf(&sb, "  <ThingDef Name=\"E%d\"/>\n", i)
			}
			sb.WriteString("</Defs>")

			doc := mustParse(t, sb.String())
			nodes := doc.TopLevel()

			var indices []int
			var want []string
			for i, node := range nodes {
				if mask&(1<<i) != 0 {
					indices = append(indices, node.Index)
					continue
				}
				want = append(want, fmt.Sprintf("E%d", i))
			}

			removed, err := doc.RemoveTopLevel(indices)
			if err != nil {
				t.Fatalf("n=%d mask=%b: RemoveTopLevel() error = %v", n, mask, err)
			}
			if len(removed) != len(indices) {
				t.Errorf("n=%d mask=%b: removed %d, want %d", n, mask, len(removed), len(indices))
			}
			if diff := cmp.Diff(want, topLevelNames(doc)); diff != "" {
				t.Errorf("n=%d mask=%b: remaining names mismatch (-want +got):\n%s", n, mask, diff)
			}
		}
	}
}

func TestDocument_RemoveTopLevel_Duplicates(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<Defs><A Name="1"/><A Name="2"/><A Name="3"/></Defs>`)
	idx := doc.TopLevel()[1].Index

	removed, err := doc.RemoveTopLevel([]int{idx, idx})
	if err != nil {
		t.Fatalf("RemoveTopLevel() error = %v", err)
	}
	if len(removed) != 1 {
		t.Fatalf("len(removed) = %d, want 1", len(removed))
	}
	if diff := cmp.Diff([]string{"1", "3"}, topLevelNames(doc)); diff != "" {
		t.Errorf("remaining mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_RemoveTopLevel_Errors(t *testing.T) {
	t.Parallel()

	empty := mustParse(t, "")
	if _, err := empty.RemoveTopLevel([]int{0}); !errors.Is(err, ErrNoRoot) {
		t.Errorf("RemoveTopLevel() on empty document = %v, want ErrNoRoot", err)
	}
	if removed, err := empty.RemoveTopLevel(nil); err != nil || removed != nil {
		t.Errorf("RemoveTopLevel(nil) = (%v, %v), want (nil, nil)", removed, err)
	}

	doc := mustParse(t, "<Defs>\n  <A Name=\"1\"/>\n</Defs>")
	// Index 0 is the leading whitespace token.
	if _, err := doc.RemoveTopLevel([]int{0}); !errors.Is(err, ErrNotTopLevelElement) {
		t.Errorf("RemoveTopLevel(text token) = %v, want ErrNotTopLevelElement", err)
	}
	if _, err := doc.RemoveTopLevel([]int{1, 99}); !errors.Is(err, ErrNotTopLevelElement) {
		t.Errorf("RemoveTopLevel(out of range) = %v, want ErrNotTopLevelElement", err)
	}
	if got := topLevelNames(doc); len(got) != 1 {
		t.Errorf("tree modified after failed removal: %v", got)
	}
}
