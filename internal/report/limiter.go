// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"sync"
)

// DefaultMaxMessages is the number of ordinary entries a Limiter forwards
// before it starts dropping them.
const DefaultMaxMessages = 1000

// Limiter forwards entries to the next sink until a message cap is reached.
// Entries with BypassLimit set are always forwarded and never counted. When the
// cap is first reached, a single notice is forwarded in place of the dropped
// entry. ResetMessageCount starts a fresh budget.
type Limiter struct {
	mu      sync.Mutex
	next    Sink
	max     int
	count   int
	dropped int
	tripped bool
}

// NewLimiter creates a Limiter in front of next. A non-positive max uses
// DefaultMaxMessages.
func NewLimiter(next Sink, maxMessages int) *Limiter {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &Limiter{next: next, max: maxMessages}
}

// Emit forwards e unless the cap has been reached.
func (l *Limiter) Emit(e Entry) {
	l.mu.Lock()
	if e.BypassLimit {
		l.mu.Unlock()
		l.next.Emit(e)
		return
	}
	if l.count >= l.max {
		l.dropped++
		notify := !l.tripped
		l.tripped = true
		l.mu.Unlock()
		if notify {
			l.next.Emit(Entry{
				Severity:    SeverityWarning,
				Text:        fmt.Sprintf("Reached the limit of %d messages. Further messages will not be shown.", l.max),
				BypassLimit: true,
			})
		}
		return
	}
	l.count++
	l.mu.Unlock()

	l.next.Emit(e)
}

// ResetMessageCount clears the message count so the next entries are forwarded again.
func (l *Limiter) ResetMessageCount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count = 0
	l.dropped = 0
	l.tripped = false
}

// Dropped returns the number of entries dropped since the last reset.
func (l *Limiter) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
