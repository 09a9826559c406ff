// Package budget implements the per-provider request budget: a fixed
// 60 second accounting window with a consumed-request counter. It exists to
// avoid tripping the upstream providers' own limits, not to enforce
// billing-grade quotas, so it is in-process and resets on restart.
package budget

import (
	"sync"
	"time"
)

const windowLength = time.Minute

// state is the mutable window for one provider. The window is replaced,
// never decremented, once its reset time has passed.
type state struct {
	used    int
	resetAt time.Time
}

// Tracker gates calls against each provider's per-minute budget.
type Tracker struct {
	mu     sync.Mutex
	limits map[string]int
	states map[string]*state
	now    func() time.Time
}

// NewTracker builds a tracker from provider name -> requests per minute.
func NewTracker(limits map[string]int) *Tracker {
	l := make(map[string]int, len(limits))
	for name, rpm := range limits {
		l[name] = rpm
	}
	return &Tracker{
		limits: l,
		states: make(map[string]*state, len(limits)),
		now:    time.Now,
	}
}

// TryConsume reports whether the provider may be called now and, if so,
// charges one request against the current window. It never blocks; a caller
// denied a slot is expected to move on to the next provider.
func (t *Tracker) TryConsume(provider string) bool {
	limit, ok := t.limits[provider]
	if !ok {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s, ok := t.states[provider]
	if !ok || now.After(s.resetAt) {
		s = &state{resetAt: now.Add(windowLength)}
		t.states[provider] = s
	}
	if s.used >= limit {
		return false
	}
	s.used++
	return true
}

// Usage returns the consumed count and reset time of the provider's current
// window. A provider that has not been called this window reports zero usage
// and a zero reset time.
func (t *Tracker) Usage(provider string) (used int, resetAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.states[provider]
	if !ok || t.now().After(s.resetAt) {
		return 0, time.Time{}
	}
	return s.used, s.resetAt
}
