// Copyright 2026 The fitalloc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package freeset tracks the free blocks of the policy arena under two
// orderings at once: an address-sorted doubly-linked list for neighbor
// lookup, and a size-keyed skip structure for best/worst-fit queries.
//
// Both views thread through the same block headers; every mutation goes
// through this package so the two can never disagree. The next-fit rover
// lives here too, because it is a weak reference into the address list and
// every merge has to keep it honest.
package freeset

import (
	"github.com/gomemlab/fitalloc/internal/debug"
	"github.com/gomemlab/fitalloc/internal/rng"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// Set is the dual-indexed free set of one policy arena.
//
// A Set holds raw arena addresses only; it must be Reset whenever its arena
// is (re)bootstrapped.
type Set struct {
	head   xunsafe.Addr[byte]
	levels [SkipHeight]xunsafe.Addr[byte]
	rover  xunsafe.Addr[byte]
	rng    rng.State
	count  int
}

// Reset empties the set and returns the height generator to its fixed
// seed, so that identical allocation sequences rebuild identical index
// shapes.
func (s *Set) Reset() {
	*s = Set{}
	s.rng.Reset()
}

// Head returns the lowest-addressed free block, or 0.
func (s *Set) Head() xunsafe.Addr[byte] {
	return s.head
}

// Len returns the number of free blocks.
func (s *Set) Len() int {
	return s.count
}

// Rover returns the next-fit resumption point; 0 means "start at the
// head".
func (s *Set) Rover() xunsafe.Addr[byte] {
	return s.rover
}

// SetRover moves the next-fit resumption point.
func (s *Set) SetRover(a xunsafe.Addr[byte]) {
	s.rover = a
}

// Add inserts a block whose position is unknown, walking the list to find
// its address-order slot.
func (s *Set) Add(n xunsafe.Addr[byte]) {
	s.AddAfter(s.locate(n), n)
}

// AddAfter inserts a block whose address-list predecessor is already known;
// prev == 0 inserts at the head.
func (s *Set) AddAfter(prev, n xunsafe.Addr[byte]) {
	s.linkAfter(prev, n)
	s.indexInsert(n)
	s.count++
}

// Remove detaches a block from both views.
//
// If the rover referenced the departing block it slides to the block's
// address-list successor, or to the head on wrap, so that it never dangles.
func (s *Set) Remove(n xunsafe.Addr[byte]) {
	next := At(n).Next
	s.indexRemove(n)
	s.unlink(n)
	s.count--

	if s.rover == n {
		if next == 0 {
			next = s.head
		}
		s.rover = next
	}
}

// Neighbors returns the blocks flanking n in address order.
func (s *Set) Neighbors(n xunsafe.Addr[byte]) (prev, next xunsafe.Addr[byte]) {
	h := At(n)
	return h.Prev, h.Next
}

// Release returns a freed block to the set, merging it with any
// address-adjacent free neighbor.
//
// The block's header must already be stamped free. Whatever survives the
// merges is the one block reinserted into the size index, and the rover is
// retargeted to it if it referenced anything that was absorbed.
func (s *Set) Release(b xunsafe.Addr[byte]) {
	debug.Assert(At(b).Free, "releasing a block not stamped free: %v", b)

	prev := s.locate(b)
	s.linkAfter(prev, b)
	s.count++

	survivor := b
	if prev != 0 {
		p := At(prev)
		if adjacent(p, At(b)) {
			s.indexRemove(prev)
			s.unlink(b)
			s.count--
			p.PayloadSize += uint32(HeaderBytes) + At(b).PayloadSize
			if s.rover == b {
				s.rover = prev
			}
			survivor = prev
		}
	}

	sh := At(survivor)
	if next := sh.Next; next != 0 && adjacent(sh, At(next)) {
		s.indexRemove(next)
		s.unlink(next)
		s.count--
		sh.PayloadSize += uint32(HeaderBytes) + At(next).PayloadSize
		if s.rover == next {
			s.rover = survivor
		}
	}

	s.indexInsert(survivor)
}
