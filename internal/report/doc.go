// SPDX-License-Identifier: MPL-2.0

// Package report carries operator-facing messages produced by the audit pass.
//
// Messages flow into a Sink. LogSink renders them with charmbracelet/log, Limiter
// caps how many ordinary messages reach the next sink until its count is reset,
// and Recorder keeps them in memory for summaries and tests.
package report
