// SPDX-License-Identifier: MPL-2.0

package basecheck

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/allyourbase/allyourbase/pkg/defxml"
)

func parseDoc(t *testing.T, partition defxml.Partition, mod, path, src string) *defxml.Document {
	t.Helper()
	tree, err := defxml.Parse([]byte(src), path)
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", path, err)
	}
	return &defxml.Document{Partition: partition, ModName: mod, Path: path, Tree: tree}
}

func writeDoc(t *testing.T, dir string, partition defxml.Partition, mod, name, src string) *defxml.Document {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	tree, err := defxml.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	return &defxml.Document{Partition: partition, ModName: mod, Path: path, Tree: tree}
}

func remainingNames(doc *defxml.Document) []string {
	var names []string
	for _, n := range doc.TopLevel() {
		if name, ok := defxml.DeclaredName(n.Element, defxml.DefaultNameAttr); ok {
			names = append(names, name)
		}
	}
	return names
}

// persistSpy records every persisted path and optionally fails for some.
type persistSpy struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]error
}

func (s *persistSpy) Persist(_ context.Context, doc *defxml.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, doc.Path)
	if err, ok := s.fail[doc.Path]; ok {
		return err
	}
	return nil
}

type counterSpy struct {
	resets int
}

func (c *counterSpy) ResetMessageCount() { c.resets++ }
