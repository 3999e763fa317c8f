// SPDX-License-Identifier: MPL-2.0

package basecheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/allyourbase/allyourbase/pkg/defxml"
)

// ErrTrustedDocument is returned when a repair targets a trusted document.
var ErrTrustedDocument = errors.New("refusing to modify a trusted document")

type (
	// RepairPlan lists the top-level elements to remove from one document.
	RepairPlan struct {
		Doc     *defxml.Document
		AttrKey string
		Indices []int
	}

	// RepairState is the outcome of applying a plan. Dirty is true once at least
	// one element has been removed from the document's tree.
	RepairState struct {
		Dirty   bool
		Removed []string
	}

	// Persister writes an edited document back to its source.
	Persister interface {
		Persist(ctx context.Context, doc *defxml.Document) error
	}

	// PersisterFunc adapts a function to the Persister interface.
	PersisterFunc func(ctx context.Context, doc *defxml.Document) error
)

// Persist calls f(ctx, doc).
func (f PersisterFunc) Persist(ctx context.Context, doc *defxml.Document) error {
	return f(ctx, doc)
}

// FilePersister saves documents in place with defxml.Save.
func FilePersister() Persister {
	return PersisterFunc(defxml.Save)
}

// PlanRepair builds the removal plan for doc from the collisions found in it.
// Collisions that belong to other documents are ignored.
func PlanRepair(doc *defxml.Document, attrKey string, collisions []Collision) RepairPlan {
	plan := RepairPlan{Doc: doc, AttrKey: attrKey}
	if doc == nil {
		return plan
	}
	for _, c := range collisions {
		if c.Path != doc.Path {
			continue
		}
		plan.Indices = append(plan.Indices, c.Index)
	}
	return plan
}

// ApplyRepair removes the planned elements from the document's tree. Removed
// lists the declared names of the removed elements, last element first. The tree
// is left untouched when the plan is invalid.
func ApplyRepair(plan RepairPlan) (RepairState, error) {
	if plan.Doc == nil || len(plan.Indices) == 0 {
		return RepairState{}, nil
	}
	if plan.Doc.IsTrusted() {
		return RepairState{}, fmt.Errorf("%w: %s", ErrTrustedDocument, plan.Doc.Path)
	}

	removed, err := plan.Doc.RemoveTopLevel(plan.Indices)
	if err != nil {
		return RepairState{}, fmt.Errorf("repair %s: %w", plan.Doc.Path, err)
	}

	state := RepairState{Dirty: len(removed) > 0}
	for _, el := range removed {
		name, _ := defxml.DeclaredName(el, plan.AttrKey)
		state.Removed = append(state.Removed, name)
	}
	return state, nil
}
