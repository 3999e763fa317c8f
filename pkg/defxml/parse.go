// SPDX-License-Identifier: MPL-2.0

package defxml

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
)

// DefaultMaxFileSize caps the size of a single definition file. Definition files
// are hand-written XML; anything larger is almost certainly not one.
const DefaultMaxFileSize = 16 << 20

var (
	// ErrFileTooLarge is returned when a definition file exceeds DefaultMaxFileSize.
	ErrFileTooLarge = errors.New("definition file too large")

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// ReadFile reads and parses the definition file at path.
func ReadFile(path string) (*etree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, path)
}

// ReadDocument reads the definition file at path into a Document with Path,
// Tree and BOM set. Ownership fields are left to the caller.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	tree, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Tree: tree, BOM: HasBOM(data)}, nil
}

// HasBOM reports whether data starts with a UTF-8 byte order mark.
func HasBOM(data []byte) bool {
	return bytes.HasPrefix(data, utf8BOM)
}

// Parse parses data as an XML definition file. The path is only used in error
// messages. A leading UTF-8 byte order mark is ignored. Input without any
// element parses successfully into a document whose Root is nil.
func Parse(data []byte, path string) (*etree.Document, error) {
	if len(data) > DefaultMaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, len(data), DefaultMaxFileSize)
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree, nil
}
