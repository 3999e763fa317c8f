// SPDX-License-Identifier: MPL-2.0

package defxml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

const defaultFileMode fs.FileMode = 0o644

// Save serializes the whole tree of doc and replaces the file at doc.Path.
//
// The tree is written to a temporary file in the same directory and renamed over
// the original, so a failed or cancelled save leaves the original file intact.
// The original file mode is preserved when the file already exists, and a byte
// order mark is written back when the source had one. The context
// is checked before the rename; once the rename has happened the save is complete.
func Save(ctx context.Context, doc *Document) error {
	if doc == nil || doc.Tree == nil {
		return errors.New("save: nil document")
	}
	if doc.Path == "" {
		return errors.New("save: document has no source path")
	}

	data, err := doc.Tree.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", doc.Path, err)
	}
	if doc.BOM {
		data = append(slices.Clip(utf8BOM), data...)
	}

	mode := defaultFileMode
	if info, statErr := os.Stat(doc.Path); statErr == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(doc.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(doc.Path)+".ayb-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", doc.Path, err)
	}
	tmpPath := tmp.Name()

	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpPath) // best-effort cleanup of the unused temp file
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save %s canceled: %w", doc.Path, err)
	}

	if err := os.Rename(tmpPath, doc.Path); err != nil {
		return fmt.Errorf("replace %s: %w", doc.Path, err)
	}
	renamed = true

	return nil
}
