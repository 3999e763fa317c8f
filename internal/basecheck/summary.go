// SPDX-License-Identifier: MPL-2.0

package basecheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/allyourbase/allyourbase/internal/integrity"
)

const (
	// OutputFormatHuman is the styled terminal summary rendered by the CLI.
	OutputFormatHuman OutputFormat = "human"
	// OutputFormatJSON writes the Summary as indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatTOML writes the Summary as TOML.
	OutputFormatTOML OutputFormat = "toml"
)

// ErrInvalidOutputFormat is the sentinel error wrapped by InvalidOutputFormatError.
var ErrInvalidOutputFormat = errors.New("invalid output format")

type (
	// OutputFormat selects how a Summary is written.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// Summary is the exportable view of a Result.
	Summary struct {
		Skipped          bool                  `json:"skipped" toml:"skipped"`
		AutoFix          bool                  `json:"auto_fix" toml:"auto_fix"`
		DisableAutoFix   bool                  `json:"disable_auto_fix" toml:"disable_auto_fix"`
		KnownNames       int                   `json:"known_names" toml:"known_names"`
		DocumentsScanned int                   `json:"documents_scanned" toml:"documents_scanned"`
		Removed          int                   `json:"removed" toml:"removed"`
		Collisions       []Collision           `json:"collisions" toml:"collisions"`
		Files            []FileSummary         `json:"files" toml:"files"`
		Violations       []integrity.Violation `json:"violations" toml:"violations"`
		FinalPhase       string                `json:"final_phase" toml:"final_phase"`
	}

	// FileSummary is the exportable view of a DocumentOutcome.
	FileSummary struct {
		Path       string   `json:"path" toml:"path"`
		ModName    string   `json:"mod_name" toml:"mod_name"`
		Collisions int      `json:"collisions" toml:"collisions"`
		Removed    []string `json:"removed,omitempty" toml:"removed,omitempty"`
		Persisted  bool     `json:"persisted" toml:"persisted"`
		Error      string   `json:"error,omitempty" toml:"error,omitempty"`
	}
)

// Validate returns an error if the OutputFormat is not recognized.
func (f OutputFormat) Validate() error {
	switch f {
	case OutputFormatHuman, OutputFormatJSON, OutputFormatTOML:
		return nil
	default:
		return &InvalidOutputFormatError{Value: f}
	}
}

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: human, json, toml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// Summarize builds the exportable view of res.
func Summarize(res *Result) Summary {
	s := Summary{
		Skipped:          res.Skipped,
		AutoFix:          res.AutoFix,
		DisableAutoFix:   res.DisableAutoFix,
		KnownNames:       res.KnownNames,
		DocumentsScanned: res.DocumentsScanned,
		Removed:          res.Removed(),
		Collisions:       res.Collisions,
		Violations:       res.Violations,
		FinalPhase:       res.FinalPhase().String(),
	}
	if s.Collisions == nil {
		s.Collisions = []Collision{}
	}
	if s.Violations == nil {
		s.Violations = []integrity.Violation{}
	}
	s.Files = make([]FileSummary, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		fs := FileSummary{
			Path:       o.Path,
			ModName:    o.ModName,
			Collisions: len(o.Collisions),
			Removed:    o.Removed,
			Persisted:  o.Persisted,
		}
		switch {
		case o.RepairErr != nil:
			fs.Error = o.RepairErr.Error()
		case o.PersistErr != nil:
			fs.Error = o.PersistErr.Error()
		}
		s.Files = append(s.Files, fs)
	}
	return s
}

// WriteSummary encodes s to w. Only machine-readable formats are supported;
// human output is rendered by the caller.
func WriteSummary(w io.Writer, format OutputFormat, s Summary) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	case OutputFormatTOML:
		encoder := toml.NewEncoder(w)
		encoder.SetIndentTables(true)
		return encoder.Encode(s)
	case OutputFormatHuman:
		return fmt.Errorf("summary: %s output is rendered by the caller", format)
	default:
		return &InvalidOutputFormatError{Value: format}
	}
}
