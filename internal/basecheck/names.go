// SPDX-License-Identifier: MPL-2.0

package basecheck

import (
	"slices"

	"github.com/allyourbase/allyourbase/pkg/defxml"
)

// KnownNameSet is the set of template names declared by the trusted corpus.
// It is built once and never modified afterwards; the zero value is an empty set.
type KnownNameSet struct {
	names map[string]struct{}
}

// NewKnownNameSet creates a set holding names. Duplicates collapse.
func NewKnownNameSet(names ...string) KnownNameSet {
	set := KnownNameSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		set.names[n] = struct{}{}
	}
	return set
}

// CollectTemplateNames gathers the declared names of the top-level elements of
// every trusted document. Documents without a root and elements without the
// name attribute are skipped. Untrusted documents are ignored.
func CollectTemplateNames(docs []*defxml.Document, attrKey string) KnownNameSet {
	set := KnownNameSet{names: make(map[string]struct{})}
	for _, doc := range docs {
		if !doc.IsTrusted() {
			continue
		}
		for _, node := range doc.TopLevel() {
			if name, ok := defxml.DeclaredName(node.Element, attrKey); ok {
				set.names[name] = struct{}{}
			}
		}
	}
	return set
}

// Contains reports whether name is a known template name.
func (s KnownNameSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of distinct names.
func (s KnownNameSet) Len() int {
	return len(s.names)
}

// Names returns the names in sorted order.
func (s KnownNameSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
