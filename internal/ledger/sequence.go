package ledger

import (
	"sync/atomic"
	"time"
)

// Clock supplies timestamps to the ledger services. Production wiring uses
// time.Now; tests inject a fixed clock for deterministic records.
type Clock func() time.Time

// Sequence is the monotonically increasing counter mixed into derived
// identifiers where temporal uniqueness is required. Ordering across
// processes is supplied by the surrounding deployment; within a process the
// counter is atomic.
type Sequence struct {
	counter atomic.Uint64
}

// NewSequence creates a sequence starting after seed.
func NewSequence(seed uint64) *Sequence {
	s := &Sequence{}
	s.counter.Store(seed)
	return s
}

// Next returns the next value in the sequence.
func (s *Sequence) Next() uint64 {
	return s.counter.Add(1)
}
