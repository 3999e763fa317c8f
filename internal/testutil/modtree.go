// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
)

// Mod describes a mod directory to lay out on disk.
type Mod struct {
	// Dir is the directory name under the mods root.
	Dir string
	// Name is the display name written to About/About.xml.
	Name string
	// PackageID is written to About/About.xml when non-empty.
	PackageID string
	// NoAbout skips About/About.xml entirely.
	NoAbout bool
	// Defs maps paths relative to the mod's Defs directory to file content.
	Defs map[string]string
}

// WriteMods lays out mods under root and returns the mods' absolute paths
// in the order given.
func WriteMods(t testing.TB, root string, mods ...Mod) []string {
	t.Helper()
	paths := make([]string, 0, len(mods))
	for _, m := range mods {
		dir := filepath.Join(root, m.Dir)
		MustMkdirAll(t, dir, 0o755)
		if !m.NoAbout {
			MustWriteFile(t, filepath.Join(dir, "About", "About.xml"), AboutXML(m.Name, m.PackageID))
		}
		for rel, content := range m.Defs {
			MustWriteFile(t, filepath.Join(dir, "Defs", filepath.FromSlash(rel)), content)
		}
		paths = append(paths, dir)
	}
	return paths
}

// AboutXML renders a minimal About.xml.
func AboutXML(name, packageID string) string {
	body := fmt.Sprintf("  <name>%s</name>\n", name)
	if packageID != "" {
		body += fmt.Sprintf("  <packageId>%s</packageId>\n", packageID)
	}
	return "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<ModMetaData>\n" + body + "</ModMetaData>\n"
}

// DefsXML wraps top-level elements in a <Defs> root.
func DefsXML(elements ...string) string {
	out := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<Defs>\n"
	for _, el := range elements {
		out += "  " + el + "\n"
	}
	return out + "</Defs>\n"
}
