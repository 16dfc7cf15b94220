// Package idgen supplies the id shapes the engine hands out: a
// process-wide monotonic sequence (backing the nextSeq() built-in), a
// random record id for a freshly inserted record, and a random trace id
// for a task that arrives without one.
package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Sequence is a monotonic, concurrency-safe counter. The zero value starts
// at 1 on its first Next call.
type Sequence struct {
	counter atomic.Int64
}

// Next returns the next value in the sequence, starting from 1.
func (s *Sequence) Next() int64 {
	return s.counter.Add(1)
}

// NewTraceID mints a random trace id for a task submitted without one.
func NewTraceID() string {
	return uuid.NewString()
}

// NewRecordID mints a random id for a freshly inserted record, used by
// storage adapters that don't derive ids from their own primary key.
func NewRecordID() string {
	return uuid.NewString()
}
