// Package sequence orders fetch completions. Each store issues a sequence
// number when a fetch begins and applies the result only if no later fetch
// was issued meanwhile, so a slow early response can never overwrite a
// faster later one.
package sequence

import "sync/atomic"

// Tracker provides monotonically increasing sequence numbers.
type Tracker struct{ n atomic.Uint64 }

// Next issues the next sequence number.
func (t *Tracker) Next() uint64 { return t.n.Add(1) }

// Latest returns the most recently issued sequence number.
func (t *Tracker) Latest() uint64 { return t.n.Load() }

// Current reports whether seq is still the latest issued number, i.e. whether
// a completion carrying it may be applied.
func (t *Tracker) Current(seq uint64) bool { return seq == t.n.Load() }
