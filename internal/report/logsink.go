// SPDX-License-Identifier: MPL-2.0

package report

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// LogSink renders entries through a charmbracelet/log logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a LogSink writing to w (os.Stderr when nil).
func NewLogSink(w io.Writer) *LogSink {
	if w == nil {
		w = os.Stderr
	}
	return &LogSink{
		logger: log.NewWithOptions(w, log.Options{
			Prefix: "ayb",
			Level:  log.InfoLevel,
		}),
	}
}

// Logger returns the underlying logger.
func (s *LogSink) Logger() *log.Logger {
	return s.logger
}

// Emit writes e at the log level matching its severity.
func (s *LogSink) Emit(e Entry) {
	switch e.Severity {
	case SeverityError:
		s.logger.Error(e.Text)
	case SeverityWarning:
		s.logger.Warn(e.Text)
	default:
		s.logger.Info(e.Text)
	}
}
