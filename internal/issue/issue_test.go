// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	ids := []Id{
		TemplateCollisionId,
		AutoFixActiveId,
		MissingAddictionEffectId,
		ConfigLoadFailedId,
		ModsDirNotFoundId,
		SaveFailedId,
	}

	values := Values()
	if len(values) != len(ids) {
		t.Fatalf("Values() has %d issues, want %d", len(values), len(ids))
	}
	for i, id := range ids {
		if values[i].Id() != id {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, values[i].Id(), id)
		}
		if Get(id) != values[i] {
			t.Errorf("Get(%d) does not match Values()", id)
		}
	}
}

func TestIssues_HaveTopicsAndContent(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, i := range Values() {
		if i.Topic() == "" || i.Summary() == "" || strings.TrimSpace(string(i.MarkdownMsg())) == "" {
			t.Errorf("issue %d is missing topic, summary, or content", i.Id())
		}
		if seen[i.Topic()] {
			t.Errorf("duplicate topic %q", i.Topic())
		}
		seen[i.Topic()] = true

		got, ok := Lookup(i.Topic())
		if !ok || got != i {
			t.Errorf("Lookup(%q) = %v, %v", i.Topic(), got, ok)
		}
	}

	if _, ok := Lookup("no-such-topic"); ok {
		t.Error("Lookup() found an unknown topic")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	for _, i := range Values() {
		out, err := i.Render("notty")
		if err != nil {
			t.Errorf("Render(%q) error = %v", i.Topic(), err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("Render(%q) returned empty output", i.Topic())
		}
	}

	out, err := Get(TemplateCollisionId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "See also") || !strings.Contains(out, "ayb audit --auto-fix") {
		t.Errorf("rendered guide missing links or commands:\n%s", out)
	}
}

func TestIssue_ExtLinksIsCopy(t *testing.T) {
	t.Parallel()

	i := Get(TemplateCollisionId)
	links := i.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ExtLinks() is empty")
	}
	links[0] = "changed"
	if i.ExtLinks()[0] == "changed" {
		t.Error("ExtLinks() exposes internal state")
	}
}
