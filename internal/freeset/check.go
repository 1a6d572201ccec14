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
	"fmt"

	"github.com/gomemlab/fitalloc/internal/arena"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// Check validates every structural invariant of the set: address order and
// coalescing of the list, ordering and membership of the index, and rover
// validity. It is for tests and debug builds; a healthy set returns nil.
func (s *Set) Check() error {
	members := make(map[xunsafe.Addr[byte]]bool)

	// Address list: strictly increasing, fully coalesced, consistent back
	// links, every member stamped free.
	var prev xunsafe.Addr[byte]
	for cur := s.head; cur != 0; cur = At(cur).Next {
		h := At(cur)
		if h.Magic != arena.MagicFree || !h.Free {
			return fmt.Errorf("list member %v is not stamped free", cur)
		}
		if h.Prev != prev {
			return fmt.Errorf("list member %v has back link %v, want %v", cur, h.Prev, prev)
		}
		if prev != 0 {
			ph := At(prev)
			if prev >= cur {
				return fmt.Errorf("list order violated: %v before %v", prev, cur)
			}
			if End(ph) >= cur {
				return fmt.Errorf("blocks %v and %v escaped coalescing", prev, cur)
			}
		}
		if members[cur] {
			return fmt.Errorf("list member %v appears twice", cur)
		}
		members[cur] = true
		prev = cur
	}

	if len(members) != s.count {
		return fmt.Errorf("list holds %d blocks, set counts %d", len(members), s.count)
	}

	// Size index: each level non-decreasing under (size, address), every
	// entry a list member participating only up to its height.
	indexed := make(map[xunsafe.Addr[byte]]bool)
	for l := SkipHeight - 1; l >= 0; l-- {
		var last *Header
		for cur := s.levels[l]; cur != 0; cur = At(cur).Fwd[l] {
			h := At(cur)
			if !members[cur] {
				return fmt.Errorf("index entry %v at level %d is not in the list", cur, l)
			}
			if int(h.Height) <= l {
				return fmt.Errorf("block %v of height %d appears at level %d", cur, h.Height, l)
			}
			if last != nil && !precedes(last, h.PayloadSize, cur) {
				return fmt.Errorf("index order violated at level %d before %v", l, cur)
			}
			if l == 0 {
				indexed[cur] = true
			}
			last = h
		}
	}

	for m := range members {
		if !indexed[m] {
			return fmt.Errorf("list member %v is missing from the index", m)
		}
		h := At(m)
		if h.Height < 1 || h.Height > SkipHeight {
			return fmt.Errorf("block %v has height %d", m, h.Height)
		}
		for l := int(h.Height); l < SkipHeight; l++ {
			if h.Fwd[l] != 0 {
				return fmt.Errorf("block %v has a link above its height at level %d", m, l)
			}
		}
	}

	// Rover: weak, but never dangling.
	if s.rover != 0 && !members[s.rover] {
		return fmt.Errorf("rover %v does not reference a list member", s.rover)
	}
	return nil
}
