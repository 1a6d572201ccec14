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

// Package buddy implements the power-of-two arena: per-order free lists,
// recursive halving on allocation, and XOR-buddy merging on free.
//
// The initial block is installed at order MaxOrder-1, which treats the
// arena as the lower half of a 1<<MaxOrder address range. The upper half
// of that range does not exist, so a top-order block never finds a merge
// partner; this mirrors the arrangement the allocator was built to study
// and is not to be "fixed".
package buddy

import (
	"math/bits"

	"github.com/gomemlab/fitalloc/internal/arena"
	"github.com/gomemlab/fitalloc/internal/debug"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// Heap is the buddy arena.
//
// The zero Heap is ready: the first allocation maps the arena and installs
// the initial top-order block. A Heap is not safe for concurrent use;
// callers serialize externally.
type Heap struct {
	_     xunsafe.NoCopy
	arena arena.Arena
	free  [MaxOrder]xunsafe.Addr[byte]
}

// Mapped reports whether the arena has been bootstrapped.
func (h *Heap) Mapped() bool {
	return h.arena.Mapped()
}

// Owns reports whether p points into this heap's arena. The free
// dispatcher uses this to route returned pointers.
func (h *Heap) Owns(p xunsafe.Addr[byte]) bool {
	return h.arena.Mapped() && h.arena.Contains(p)
}

func (h *Heap) bootstrap() {
	if h.arena.Mapped() {
		return
	}
	h.arena = arena.Map(arena.DefaultBytes)

	b := h.arena.Base()
	hd := At(b)
	*hd = Header{Size: 1 << (MaxOrder - 1), Order: MaxOrder - 1}
	hd.MarkFree()
	h.push(b)
	debug.Log(nil, "bootstrap", "buddy arena %v, order %d", b, MaxOrder-1)
}

// push prepends b onto the free list of its order.
func (h *Heap) push(b xunsafe.Addr[byte]) {
	hd := At(b)
	hd.Prev = 0
	hd.Next = h.free[hd.Order]
	if hd.Next != 0 {
		At(hd.Next).Prev = b
	}
	h.free[hd.Order] = b
}

// unlink detaches b from the free list of its order.
func (h *Heap) unlink(b xunsafe.Addr[byte]) {
	hd := At(b)
	if hd.Prev == 0 {
		h.free[hd.Order] = hd.Next
	} else {
		At(hd.Prev).Next = hd.Next
	}
	if hd.Next != 0 {
		At(hd.Next).Prev = hd.Prev
	}
	hd.Prev, hd.Next = 0, 0
}

// orderFor returns the smallest order whose block holds the given byte
// count.
func orderFor(bytes int) int {
	return bits.Len(uint(bytes - 1))
}

// Alloc rounds the request up to a power of two (header included) and
// splits the smallest adequate block down to size. Returns the payload
// address, or 0 when the request cannot be met.
func (h *Heap) Alloc(n int) xunsafe.Addr[byte] {
	if n <= 0 {
		return 0
	}
	h.bootstrap()

	k := orderFor(n + HeaderBytes)
	if k >= MaxOrder {
		return 0
	}

	j := k
	for j < MaxOrder && h.free[j] == 0 {
		j++
	}
	if j == MaxOrder {
		return 0
	}

	b := h.free[j]
	h.unlink(b)
	hd := At(b)

	// Halve down to the requested order: keep the left half, shelve the
	// right.
	for ; j > k; j-- {
		half := 1 << (j - 1)
		right := b.Add(half)
		rh := At(right)
		*rh = Header{Size: uint32(half), Order: uint32(j - 1)}
		rh.MarkFree()
		h.push(right)

		hd.Size = uint32(half)
		hd.Order = uint32(j - 1)
	}

	hd.MarkAllocated()
	debug.Log(nil, "alloc", "%v order %d for %d bytes", b, k, n)
	return b.Add(HeaderBytes)
}

// Free returns a buddy block and merges it with its buddy as far up the
// orders as the arena allows. Pointers without the allocated sentinel
// right before them are ignored.
func (h *Heap) Free(p xunsafe.Addr[byte]) {
	if !h.arena.Mapped() {
		return
	}

	b := p.Add(-HeaderBytes)
	if !h.arena.Contains(b) {
		return
	}
	hd := At(b)
	if !hd.IsAllocated() {
		return
	}

	hd.MarkFree()
	h.push(b)

	for int(At(b).Order) < MaxOrder-1 {
		cur := At(b)
		buddy := h.arena.Base().Add(h.arena.Offset(b) ^ (1 << cur.Order))
		if !h.arena.Contains(buddy) {
			break
		}
		bh := At(buddy)
		if !bh.isFree() || bh.Order != cur.Order {
			break
		}

		h.unlink(b)
		h.unlink(buddy)

		lo := min(b, buddy)
		lh := At(lo)
		lh.Order++
		lh.Size <<= 1
		h.push(lo)
		b = lo
	}
	debug.Log(nil, "free", "%v settles at order %d", b, At(b).Order)
}
