/*
seq.go - Monotonic id sequences

PURPOSE:
  Every engine draws record ids from one monotonically increasing counter
  seeded at construction from max(current unix-millis, every id already
  present in that engine's collections). Ids stay unique across reloads
  and across manual edits of the persisted tree.

  Sequences are injectable so tests can assert exact ids.
*/
package engine

import "time"

// =============================================================================
// SEQUENCE - Per-engine id generator
// =============================================================================

// Sequence hands out unique, strictly increasing int64 ids.
type Sequence struct {
	next int64
}

// NewSequence seeds a sequence from the wall clock and every existing id.
func NewSequence(existing ...int64) *Sequence {
	seed := time.Now().UnixMilli()
	for _, id := range existing {
		if id >= seed {
			seed = id + 1
		}
	}
	return &Sequence{next: seed}
}

// NewSequenceAt seeds a sequence at an explicit starting id (tests).
func NewSequenceAt(start int64) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	id := s.next
	s.next++
	return id
}

// Observe raises the floor above an id seen after construction (e.g. a
// record merged in from another conversation).
func (s *Sequence) Observe(id int64) {
	if id >= s.next {
		s.next = id + 1
	}
}
