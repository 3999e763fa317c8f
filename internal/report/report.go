// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"fmt"
)

const (
	// SeverityMessage is an informational message.
	SeverityMessage Severity = "message"
	// SeverityWarning is a recoverable problem the operator should look at.
	SeverityWarning Severity = "warning"
	// SeverityError is a problem that breaks something downstream.
	SeverityError Severity = "error"
)

// ErrInvalidSeverity is the sentinel error wrapped by InvalidSeverityError.
var ErrInvalidSeverity = errors.New("invalid severity")

type (
	// Severity is the level of a reported message.
	Severity string

	// InvalidSeverityError is returned when a Severity value is not recognized.
	// It wraps ErrInvalidSeverity for errors.Is() compatibility.
	InvalidSeverityError struct {
		Value Severity
	}

	// Entry is one formatted message.
	Entry struct {
		Severity Severity
		Text     string
		// BypassLimit asks rate-limiting sinks to deliver the entry even when
		// their message cap has been reached.
		BypassLimit bool
	}

	// Sink receives reported entries. Implementations must be safe for use by a
	// single producer; the audit pass never emits concurrently.
	Sink interface {
		Emit(e Entry)
	}

	// SinkFunc adapts a function to the Sink interface.
	SinkFunc func(e Entry)
)

// Validate returns an error if the Severity is not recognized.
func (s Severity) Validate() error {
	switch s {
	case SeverityMessage, SeverityWarning, SeverityError:
		return nil
	default:
		return &InvalidSeverityError{Value: s}
	}
}

// String returns the string representation of the Severity.
func (s Severity) String() string { return string(s) }

// Error implements the error interface for InvalidSeverityError.
func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid severity %q (valid: message, warning, error)", e.Value)
}

// Unwrap returns ErrInvalidSeverity for errors.Is() compatibility.
func (e *InvalidSeverityError) Unwrap() error { return ErrInvalidSeverity }

// Emit calls f(e).
func (f SinkFunc) Emit(e Entry) { f(e) }

// Messagef emits an informational entry.
func Messagef(s Sink, format string, args ...any) {
	s.Emit(Entry{Severity: SeverityMessage, Text: fmt.Sprintf(format, args...)})
}

// Warningf emits a warning entry.
func Warningf(s Sink, format string, args ...any) {
	s.Emit(Entry{Severity: SeverityWarning, Text: fmt.Sprintf(format, args...)})
}

// Errorf emits an error entry.
func Errorf(s Sink, format string, args ...any) {
	s.Emit(Entry{Severity: SeverityError, Text: fmt.Sprintf(format, args...)})
}
