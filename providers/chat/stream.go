package chat

import (
	"iter"

	"github.com/devconsole/modelbridge/core/converse"
)

// TextStream is the scoped resource returned by ConverseStream. Iterating it
// yields assistant text fragments in arrival order; once the iterator is
// exhausted normally, Final returns the reassembled response.
//
// The stream owns its transport resources. The underlying connection is
// released when iteration ends for any reason: normal exhaustion, an early
// break, or a mid-stream error. A TextStream is single-use and not safe for
// concurrent iteration.
type TextStream struct {
	inner     iter.Seq2[string, error]
	finalFn   func() *converse.Response
	exhausted bool
}

// NewTextStream builds a stream over inner. finalFn is invoked lazily by
// Final once the stream has been fully consumed; it typically closes over the
// accumulation state the producing closure fills in while yielding.
func NewTextStream(inner iter.Seq2[string, error], finalFn func() *converse.Response) *TextStream {
	return &TextStream{inner: inner, finalFn: finalFn}
}

// Iter returns the fragment iterator, for use with range-over-func:
//
//	for fragment, err := range stream.Iter() {
//		if err != nil {
//			return err
//		}
//		fmt.Print(fragment)
//	}
//
// A non-nil error is the last pair yielded; fragments already delivered
// before it remain valid.
func (s *TextStream) Iter() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for fragment, err := range s.inner {
			if !yield(fragment, err) {
				return
			}
			if err != nil {
				return
			}
		}
		s.exhausted = true
	}
}

// Drain consumes the remaining fragments, discarding them, and returns the
// reassembled response. Callers that only want the aggregate can use it in
// place of a range loop.
func (s *TextStream) Drain() (*converse.Response, error) {
	for _, err := range s.Iter() {
		if err != nil {
			return nil, err
		}
	}
	return s.Final(), nil
}

// Final returns the reassembled response once the stream has been fully and
// cleanly consumed, and nil before that point or after a mid-stream error.
func (s *TextStream) Final() *converse.Response {
	if !s.exhausted || s.finalFn == nil {
		return nil
	}
	return s.finalFn()
}
