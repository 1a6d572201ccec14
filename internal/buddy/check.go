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

package buddy

import (
	"fmt"

	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// FreeCounts returns the number of free blocks per order.
func (h *Heap) FreeCounts() [MaxOrder]int {
	var counts [MaxOrder]int
	for ord := range h.free {
		for cur := h.free[ord]; cur != 0; cur = At(cur).Next {
			counts[ord]++
		}
	}
	return counts
}

// TotalFree returns the number of free bytes, headers included.
func (h *Heap) TotalFree() int {
	total := 0
	for ord, n := range h.FreeCounts() {
		total += n << ord
	}
	return total
}

// CheckInvariants validates every free list: order agreement, size and
// alignment of each member, consistent back links, and that no block sits
// on two lists. A healthy heap returns nil.
func (h *Heap) CheckInvariants() error {
	if !h.arena.Mapped() {
		return nil
	}

	seen := make(map[xunsafe.Addr[byte]]bool)
	for ord := range h.free {
		var prev xunsafe.Addr[byte]
		for cur := h.free[ord]; cur != 0; cur = At(cur).Next {
			hd := At(cur)
			if !hd.isFree() {
				return fmt.Errorf("list %d member %v is not stamped free", ord, cur)
			}
			if int(hd.Order) != ord {
				return fmt.Errorf("block %v of order %d sits on list %d", cur, hd.Order, ord)
			}
			if hd.Size != 1<<hd.Order {
				return fmt.Errorf("block %v: size %d does not match order %d", cur, hd.Size, hd.Order)
			}
			if !h.arena.Contains(cur) || h.arena.Offset(cur)+int(hd.Size) > h.arena.Size() {
				return fmt.Errorf("block %v extends outside the arena", cur)
			}
			if h.arena.Offset(cur)%(1<<ord) != 0 {
				return fmt.Errorf("block %v is misaligned for order %d", cur, ord)
			}
			if hd.Prev != prev {
				return fmt.Errorf("list %d member %v has back link %v, want %v", ord, cur, hd.Prev, prev)
			}
			if seen[cur] {
				return fmt.Errorf("block %v appears on more than one list", cur)
			}
			seen[cur] = true
			prev = cur
		}
	}
	return nil
}
