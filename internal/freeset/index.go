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

package freeset

import (
	"github.com/gomemlab/fitalloc/internal/debug"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// The size-ordered view: a skip structure threaded through the same block
// headers, keyed by (payload size, address). The address component makes
// the key total, so equal-size blocks resolve to the lowest address and
// best/worst-fit tie-breaking needs no special cases.

// precedes reports whether h orders strictly before the key (size, a).
func precedes(h *Header, size uint32, a xunsafe.Addr[byte]) bool {
	return h.PayloadSize < size || (h.PayloadSize == size && Base(h) < a)
}

// fwdAt returns the level-l link cell of the given predecessor, where
// pred == 0 denotes the index head.
func (s *Set) fwdAt(pred xunsafe.Addr[byte], l int) *xunsafe.Addr[byte] {
	if pred == 0 {
		return &s.levels[l]
	}
	return &At(pred).Fwd[l]
}

// path records, per level, the last block ordering strictly before the key
// (size, a); 0 stands for the index head.
func (s *Set) path(size uint32, a xunsafe.Addr[byte], update *[SkipHeight]xunsafe.Addr[byte]) {
	var pred xunsafe.Addr[byte]
	for l := SkipHeight - 1; l >= 0; l-- {
		for {
			next := *s.fwdAt(pred, l)
			if next == 0 || !precedes(At(next), size, a) {
				break
			}
			pred = next
		}
		update[l] = pred
	}
}

// indexInsert splices n into the size index, drawing its height from the
// deterministic generator.
func (s *Set) indexInsert(n xunsafe.Addr[byte]) {
	h := At(n)
	h.Height = uint8(s.rng.Height(SkipHeight))

	var update [SkipHeight]xunsafe.Addr[byte]
	s.path(h.PayloadSize, n, &update)

	for l := range SkipHeight {
		if l < int(h.Height) {
			cell := s.fwdAt(update[l], l)
			h.Fwd[l] = *cell
			*cell = n
		} else {
			h.Fwd[l] = 0
		}
	}
}

// indexRemove detaches n from every level it participates in.
func (s *Set) indexRemove(n xunsafe.Addr[byte]) {
	h := At(n)

	var update [SkipHeight]xunsafe.Addr[byte]
	s.path(h.PayloadSize, n, &update)

	for l := range int(h.Height) {
		cell := s.fwdAt(update[l], l)
		debug.Assert(*cell == n, "size index missing %v at level %d", n, l)
		*cell = h.Fwd[l]
		h.Fwd[l] = 0
	}
}

// FirstGE returns the smallest block, in (size, address) order, whose
// payload is at least k; 0 when none is big enough. This is the best-fit
// query.
func (s *Set) FirstGE(k int) xunsafe.Addr[byte] {
	var update [SkipHeight]xunsafe.Addr[byte]
	s.path(uint32(k), 0, &update)
	return *s.fwdAt(update[0], 0)
}

// Max returns the greatest block in (size, address) order; 0 when the set
// is empty. This is the worst-fit query.
func (s *Set) Max() xunsafe.Addr[byte] {
	var pred xunsafe.Addr[byte]
	for l := SkipHeight - 1; l >= 0; l-- {
		for {
			next := *s.fwdAt(pred, l)
			if next == 0 {
				break
			}
			pred = next
		}
	}
	return pred
}
