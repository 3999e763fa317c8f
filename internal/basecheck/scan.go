// SPDX-License-Identifier: MPL-2.0

package basecheck

import (
	"github.com/allyourbase/allyourbase/pkg/defxml"
)

const (
	// OrderForward visits top-level elements in document order.
	OrderForward Order = iota
	// OrderReverse visits top-level elements from the last to the first, so a
	// removal at one index never shifts an index that is visited later.
	OrderReverse
)

type (
	// Order selects the iteration order of a scan.
	Order int

	// Collision is one overlay element that redeclares a known template name.
	Collision struct {
		Partition defxml.Partition `json:"partition" toml:"partition"`
		ModName   string           `json:"mod_name" toml:"mod_name"`
		PackageID string           `json:"package_id,omitempty" toml:"package_id,omitempty"`
		Path      string           `json:"path" toml:"path"`
		Name      string           `json:"name" toml:"name"`
		// Index is the element's token index under the root at scan time.
		Index int `json:"-" toml:"-"`
	}
)

// String returns a human-readable order name.
func (o Order) String() string {
	switch o {
	case OrderForward:
		return "forward"
	case OrderReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Scan returns one Collision for every top-level element of doc whose declared
// name is in known, in the requested order. Trusted documents and documents
// without a root yield nothing. Scan does not modify doc.
func Scan(doc *defxml.Document, known KnownNameSet, attrKey string, order Order) []Collision {
	if doc == nil || doc.IsTrusted() {
		return nil
	}
	nodes := doc.TopLevel()
	if len(nodes) == 0 {
		return nil
	}

	var out []Collision
	visit := func(node defxml.Node) {
		name, ok := defxml.DeclaredName(node.Element, attrKey)
		if !ok || !known.Contains(name) {
			return
		}
		out = append(out, Collision{
			Partition: doc.Partition,
			ModName:   doc.ModName,
			PackageID: doc.PackageID,
			Path:      doc.Path,
			Name:      name,
			Index:     node.Index,
		})
	}

	if order == OrderReverse {
		for i := len(nodes) - 1; i >= 0; i-- {
			visit(nodes[i])
		}
		return out
	}
	for _, node := range nodes {
		visit(node)
	}
	return out
}
