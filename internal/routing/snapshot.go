package routing

import "sync/atomic"

// Snapshot holds the live rule list behind an atomic pointer. Captures read
// a consistent snapshot for their whole evaluation; a rules-file reload swaps
// the pointer without racing in-flight captures.
type Snapshot struct {
	p atomic.Pointer[[]Rule]
}

// NewSnapshot creates a snapshot holding rules.
func NewSnapshot(rules []Rule) *Snapshot {
	s := &Snapshot{}
	s.Store(rules)
	return s
}

// Load returns the current rule list. Callers must not mutate it.
func (s *Snapshot) Load() []Rule {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return nil
}

// Store atomically replaces the rule list.
func (s *Snapshot) Store(rules []Rule) {
	s.p.Store(&rules)
}
