// SPDX-License-Identifier: MPL-2.0

package defdb

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/allyourbase/allyourbase/pkg/defxml"
)

const (
	// CodeParentNotFound marks a ParentName that names no known template.
	CodeParentNotFound = "parent_not_found"
	// CodeInheritanceCycle marks a ParentName chain that loops back on itself.
	CodeInheritanceCycle = "inheritance_cycle"

	attrParentName = "ParentName"
	attrAbstract   = "Abstract"
	attrInherit    = "Inherit"
	listItemTag    = "li"
	defNameTag     = "defName"
)

type (
	// Diagnostic describes a resolution problem. Resolution continues with the
	// element's own content.
	Diagnostic struct {
		Code    string
		Message string
		Path    string
	}

	// Key identifies a concrete definition.
	Key struct {
		Tag     string
		DefName string
	}

	// Def is a resolved concrete definition.
	Def struct {
		Key
		ModName  string
		Path     string
		Resolved *etree.Element
	}

	// Option configures Build.
	Option func(*buildOptions)

	buildOptions struct {
		nameAttr string
	}

	// Registry is the resolved definition index. It is read-only after Build.
	Registry struct {
		templates   map[string]*entry
		defs        map[Key]*entry
		order       []*entry
		diagnostics []Diagnostic
	}

	entry struct {
		doc       *defxml.Document
		el        *etree.Element
		name      string
		parent    string
		abstract  bool
		key       Key
		resolving bool
		resolved  *etree.Element
	}
)

// WithNameAttr sets the attribute that declares template names.
func WithNameAttr(attr string) Option {
	return func(o *buildOptions) { o.nameAttr = attr }
}

// Build indexes and resolves every top-level element of docs. Later documents
// override earlier ones for the same template name or (tag, defName).
func Build(docs []*defxml.Document, opts ...Option) *Registry {
	o := buildOptions{nameAttr: defxml.DefaultNameAttr}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		templates: make(map[string]*entry),
		defs:      make(map[Key]*entry),
	}

	var all []*entry
	for _, doc := range docs {
		for _, node := range doc.TopLevel() {
			e := &entry{
				doc:      doc,
				el:       node.Element,
				parent:   node.Element.SelectAttrValue(attrParentName, ""),
				abstract: strings.EqualFold(node.Element.SelectAttrValue(attrAbstract, ""), "true"),
			}
			if name, ok := defxml.DeclaredName(node.Element, o.nameAttr); ok {
				e.name = name
				r.templates[name] = e
			}
			all = append(all, e)
			if e.abstract {
				continue
			}
			defName := childText(node.Element, defNameTag)
			if defName == "" {
				continue
			}
			e.key = Key{Tag: node.Element.Tag, DefName: defName}
			if prev, ok := r.defs[e.key]; ok {
				r.removeFromOrder(prev)
			}
			r.defs[e.key] = e
			r.order = append(r.order, e)
		}
	}

	for _, e := range all {
		r.resolve(e)
	}
	return r
}

// Len returns the number of concrete definitions.
func (r *Registry) Len() int { return len(r.order) }

// Def returns the resolved concrete definition for tag and defName.
func (r *Registry) Def(tag, defName string) (Def, bool) {
	e, ok := r.defs[Key{Tag: tag, DefName: defName}]
	if !ok {
		return Def{}, false
	}
	return e.def(), true
}

// Defs returns every concrete definition with the given tag in load order.
func (r *Registry) Defs(tag string) []Def {
	var out []Def
	for _, e := range r.order {
		if e.key.Tag == tag {
			out = append(out, e.def())
		}
	}
	return out
}

// Template returns the resolved element declaring name.
func (r *Registry) Template(name string) (*etree.Element, bool) {
	e, ok := r.templates[name]
	if !ok {
		return nil, false
	}
	return e.resolved, true
}

// Diagnostics returns the problems found while resolving.
func (r *Registry) Diagnostics() []Diagnostic {
	return r.diagnostics
}

func (r *Registry) removeFromOrder(target *entry) {
	for i, e := range r.order {
		if e == target {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func (r *Registry) resolve(e *entry) *etree.Element {
	if e.resolved != nil {
		return e.resolved
	}
	if e.parent == "" {
		e.resolved = e.el.Copy()
		return e.resolved
	}

	parent, ok := r.templates[e.parent]
	switch {
	case !ok:
		r.diagnostics = append(r.diagnostics, Diagnostic{
			Code:    CodeParentNotFound,
			Message: fmt.Sprintf("%s references unknown parent %s", e.label(), e.parent),
			Path:    e.doc.Path,
		})
		e.resolved = e.el.Copy()
		return e.resolved
	case parent.resolving || parent == e:
		r.diagnostics = append(r.diagnostics, Diagnostic{
			Code:    CodeInheritanceCycle,
			Message: fmt.Sprintf("%s inherits from %s, which leads back to itself", e.label(), e.parent),
			Path:    e.doc.Path,
		})
		e.resolved = e.el.Copy()
		return e.resolved
	}

	e.resolving = true
	base := r.resolve(parent)
	e.resolving = false
	if e.resolved != nil {
		return e.resolved
	}
	e.resolved = merge(base, e.el)
	return e.resolved
}

func (e *entry) label() string {
	switch {
	case e.key.DefName != "":
		return e.el.Tag + " " + e.key.DefName
	case e.name != "":
		return e.el.Tag + " " + e.name
	default:
		return e.el.Tag
	}
}

func (e *entry) def() Def {
	return Def{Key: e.key, ModName: e.doc.ModName, Path: e.doc.Path, Resolved: e.resolved}
}

// merge returns a copy of parent overlaid with child.
func merge(parent, child *etree.Element) *etree.Element {
	out := parent.Copy()
	out.Space, out.Tag = child.Space, child.Tag
	out.Attr = append([]etree.Attr(nil), child.Attr...)

	if len(child.ChildElements()) == 0 {
		if text := child.Text(); strings.TrimSpace(text) != "" || len(out.ChildElements()) == 0 {
			for _, c := range out.ChildElements() {
				out.RemoveChild(c)
			}
			out.SetText(text)
		}
		return out
	}

	for _, c := range child.ChildElements() {
		if c.Tag == listItemTag {
			out.AddChild(c.Copy())
			continue
		}
		existing := out.SelectElement(c.Tag)
		if existing == nil {
			out.AddChild(c.Copy())
			continue
		}
		replacement := c.Copy()
		if !strings.EqualFold(c.SelectAttrValue(attrInherit, ""), "false") {
			replacement = merge(existing, c)
		}
		idx := existing.Index()
		out.RemoveChildAt(idx)
		out.InsertChildAt(idx, replacement)
	}
	return out
}

func childText(el *etree.Element, tag string) string {
	c := el.SelectElement(tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}
