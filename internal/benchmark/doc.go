// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of an audit:
//   - XML definition parsing
//   - Mod discovery and parallel document loading
//   - The collision pass over a loaded corpus
//   - Registry construction with inheritance resolution
//
// To generate a profile, run:
//
//	go test -run='^$' -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
