// SPDX-License-Identifier: MPL-2.0

package report

import "sync"

// Recorder keeps every emitted entry in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Emit appends e.
func (r *Recorder) Emit(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of all recorded entries in emission order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Texts returns the text of every recorded entry with the given severity.
func (r *Recorder) Texts(sev Severity) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Severity == sev {
			out = append(out, e.Text)
		}
	}
	return out
}

// Count returns the number of recorded entries with the given severity.
func (r *Recorder) Count(sev Severity) int {
	return len(r.Texts(sev))
}
