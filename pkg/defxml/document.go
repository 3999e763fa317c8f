// SPDX-License-Identifier: MPL-2.0

package defxml

import (
	"errors"
	"fmt"
	"slices"

	"github.com/beevik/etree"
)

const (
	// PartitionTrusted marks base content that is assumed correct.
	PartitionTrusted Partition = "trusted"
	// PartitionUntrusted marks third-party overlay content.
	PartitionUntrusted Partition = "untrusted"

	// DefaultNameAttr is the attribute that declares a reusable template name.
	// Matching is case-sensitive.
	DefaultNameAttr = "Name"
)

var (
	// ErrInvalidPartition is the sentinel error wrapped by InvalidPartitionError.
	ErrInvalidPartition = errors.New("invalid partition")
	// ErrNoRoot is returned by operations that need a root element on a document without one.
	ErrNoRoot = errors.New("document has no root element")
	// ErrNotTopLevelElement is returned when a removal index does not address a
	// direct element child of the root.
	ErrNotTopLevelElement = errors.New("index does not address a top-level element")
)

type (
	// Partition identifies which corpus a document belongs to.
	Partition string

	// InvalidPartitionError is returned when a Partition value is not recognized.
	// It wraps ErrInvalidPartition for errors.Is() compatibility.
	InvalidPartitionError struct {
		Value Partition
	}

	// Document is one parsed definition file together with its ownership metadata.
	// The tree is mutable; callers that edit it are responsible for persisting it.
	Document struct {
		// Partition is the corpus the document belongs to.
		Partition Partition
		// ModName is the owning mod's display name.
		ModName string
		// PackageID is the owning mod's package identifier.
		PackageID string
		// Path is the absolute source path of the document.
		Path string
		// Tree is the parsed XML tree. It may have no root element.
		Tree *etree.Document
		// BOM records a leading UTF-8 byte order mark in the source, which
		// Save writes back.
		BOM bool
	}

	// Node is a direct element child of a document root and its token index
	// within the root's child list. Indices count every token (text, comments,
	// and elements), so they are stable only until the next mutation.
	Node struct {
		Index   int
		Element *etree.Element
	}
)

// String returns the string representation of the Partition.
func (p Partition) String() string { return string(p) }

// Validate returns an error if the Partition is not recognized.
func (p Partition) Validate() error {
	switch p {
	case PartitionTrusted, PartitionUntrusted:
		return nil
	default:
		return &InvalidPartitionError{Value: p}
	}
}

// Error implements the error interface for InvalidPartitionError.
func (e *InvalidPartitionError) Error() string {
	return fmt.Sprintf("invalid partition %q (valid: trusted, untrusted)", e.Value)
}

// Unwrap returns ErrInvalidPartition for errors.Is() compatibility.
func (e *InvalidPartitionError) Unwrap() error { return ErrInvalidPartition }

// IsTrusted reports whether the document belongs to the trusted partition.
func (d *Document) IsTrusted() bool {
	return d != nil && d.Partition == PartitionTrusted
}

// Root returns the document's root element, or nil when the document is empty
// or was never parsed.
func (d *Document) Root() *etree.Element {
	if d == nil || d.Tree == nil {
		return nil
	}
	return d.Tree.Root()
}

// TopLevel returns the direct element children of the root in document order.
// Text, comment, directive, and processing-instruction tokens are skipped.
// A document without a root yields nil.
func (d *Document) TopLevel() []Node {
	root := d.Root()
	if root == nil {
		return nil
	}

	var nodes []Node
	for i, tok := range root.Child {
		el, ok := tok.(*etree.Element)
		if !ok {
			continue
		}
		nodes = append(nodes, Node{Index: i, Element: el})
	}
	return nodes
}

// DeclaredName returns the value of the attribute attrKey on el. The boolean is
// false when the attribute is not declared. An empty attrKey uses DefaultNameAttr.
func DeclaredName(el *etree.Element, attrKey string) (string, bool) {
	if el == nil {
		return "", false
	}
	if attrKey == "" {
		attrKey = DefaultNameAttr
	}
	attr := el.SelectAttr(attrKey)
	if attr == nil {
		return "", false
	}
	return attr.Value, true
}

// RemoveTopLevel removes the root's direct element children at the given token
// indices and returns the removed elements in the order they were removed.
//
// Indices are deduplicated and applied from highest to lowest so that removing
// index i never shifts an index that has not been removed yet. Every index is
// checked before anything is removed; on error the tree is left untouched.
func (d *Document) RemoveTopLevel(indices []int) ([]*etree.Element, error) {
	if len(indices) == 0 {
		return nil, nil
	}
	root := d.Root()
	if root == nil {
		return nil, ErrNoRoot
	}

	ordered := slices.Clone(indices)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)
	slices.Reverse(ordered)

	for _, idx := range ordered {
		if idx < 0 || idx >= len(root.Child) {
			return nil, fmt.Errorf("%w: %d (root has %d children)", ErrNotTopLevelElement, idx, len(root.Child))
		}
		if _, ok := root.Child[idx].(*etree.Element); !ok {
			return nil, fmt.Errorf("%w: %d", ErrNotTopLevelElement, idx)
		}
	}

	removed := make([]*etree.Element, 0, len(ordered))
	for _, idx := range ordered {
		tok := root.RemoveChildAt(idx)
		if el, ok := tok.(*etree.Element); ok {
			removed = append(removed, el)
		}
	}
	return removed, nil
}
