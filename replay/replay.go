/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package replay turns a single-pass source of values into something
// that any number of consumers can traverse independently.
//
// A Seq owns one Source and an append-only cache of everything the
// Source has produced so far.  A Cursor replays the cache in order
// and then, once past the cache boundary, pulls one more element at a
// time from the Source.  The Source is never consulted twice for the
// same position, so a Source backed by a generator-like producer (or
// an unbounded one) is safe.
package replay

import (
	"sync"
)

// A Source produces one element per call.  The second return value is
// false when the source is exhausted.  A Source is single-pass: once
// it reports exhaustion or an error, it won't be called again.
type Source func() (interface{}, bool, error)

// Slice makes a Source over the given elements.
func Slice(xs []interface{}) Source {
	i := 0
	return func() (interface{}, bool, error) {
		if len(xs) <= i {
			return nil, false, nil
		}
		x := xs[i]
		i++
		return x, true, nil
	}
}

// Chan makes a Source that pulls from the given channel until the
// channel is closed.
func Chan(c chan interface{}) Source {
	return func() (interface{}, bool, error) {
		x, ok := <-c
		return x, ok, nil
	}
}

// Seq is a replayable view of a single-pass Source.
//
// The zero Seq is ready to use (as an empty sequence until SetSource
// is called).
type Seq struct {
	sync.Mutex

	src   Source
	cache []interface{}
	done  bool
	err   error
}

// NewSeq makes a Seq that'll draw from the given Source.
func NewSeq(src Source) *Seq {
	return &Seq{
		src: src,
	}
}

// SetSource installs a fresh producer and forgets everything the
// previous one produced.
//
// Don't call SetSource just to "refresh" a Seq you want to keep
// consuming: the whole point of a Seq is that prior consumption is
// never repeated.
func (s *Seq) SetSource(src Source) {
	s.Lock()
	s.src = src
	s.cache = nil
	s.done = false
	s.err = nil
	s.Unlock()
}

// Cached returns how many elements have been pulled from the Source
// so far.
func (s *Seq) Cached() int {
	s.Lock()
	n := len(s.cache)
	s.Unlock()
	return n
}

// First returns the first element of the sequence (pulling it from
// the Source if necessary).
func (s *Seq) First() (interface{}, bool, error) {
	return s.Cursor().Next()
}

// Cursor opens an independent traversal that starts at the beginning
// of the sequence.
func (s *Seq) Cursor() *Cursor {
	return &Cursor{
		seq: s,
	}
}

// at returns the element at position i, extending the cache by at
// most one element.
//
// The Seq's lock makes the caller the single writer for that append,
// so an element is in the cache before any cursor can observe it.
func (s *Seq) at(i int) (interface{}, bool, error) {
	s.Lock()
	defer s.Unlock()

	if i < len(s.cache) {
		return s.cache[i], true, nil
	}

	// A cursor only asks for cache boundary + 1.
	if s.done || s.src == nil {
		return nil, false, s.err
	}

	x, ok, err := s.src()
	if err != nil {
		s.done = true
		s.err = err
		s.src = nil
		return nil, false, err
	}
	if !ok {
		s.done = true
		s.src = nil
		return nil, false, nil
	}

	s.cache = append(s.cache, x)

	return x, true, nil
}

// Cursor is one consumer's position in a Seq.
//
// Cursors may be abandoned at any point; the shared cache stays
// intact for other cursors.
type Cursor struct {
	seq *Seq
	pos int
}

// Next returns the next element.  The second return value is false
// when the sequence is exhausted.
func (c *Cursor) Next() (interface{}, bool, error) {
	x, ok, err := c.seq.at(c.pos)
	if err != nil || !ok {
		return nil, false, err
	}
	c.pos++
	return x, true, nil
}
