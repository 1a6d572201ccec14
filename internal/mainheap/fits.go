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

package mainheap

import (
	"github.com/gomemlab/fitalloc/internal/debug"
	"github.com/gomemlab/fitalloc/internal/freeset"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// The four placement policies. Each returns the payload address of the
// placed block, or 0 when the request cannot be met; failure mutates
// nothing.

// AllocFirst places n bytes in the lowest-addressed adequate block.
func (h *Heap) AllocFirst(n int) xunsafe.Addr[byte] {
	if n <= 0 {
		return 0
	}
	h.bootstrap()

	for cur := h.set.Head(); cur != 0; cur = freeset.At(cur).Next {
		if int(freeset.At(cur).PayloadSize) >= n {
			return h.take(cur, n, true)
		}
	}
	return 0
}

// AllocNext places n bytes in the first adequate block at or after the
// rover, wrapping through the head once before giving up.
func (h *Heap) AllocNext(n int) xunsafe.Addr[byte] {
	if n <= 0 {
		return 0
	}
	h.bootstrap()

	start := h.set.Rover()
	if start == 0 {
		start = h.set.Head()
	}
	if start == 0 {
		return 0
	}

	cur := start
	for {
		if int(freeset.At(cur).PayloadSize) >= n {
			return h.take(cur, n, true)
		}
		cur = freeset.At(cur).Next
		if cur == 0 {
			cur = h.set.Head()
		}
		if cur == start {
			return 0
		}
	}
}

// AllocBest places n bytes in the tightest adequate block, lowest address
// on ties.
func (h *Heap) AllocBest(n int) xunsafe.Addr[byte] {
	if n <= 0 {
		return 0
	}
	h.bootstrap()

	b := h.set.FirstGE(n)
	if b == 0 {
		return 0
	}
	return h.take(b, n, false)
}

// AllocWorst places n bytes in the largest free block, failing when even
// that one is too small.
func (h *Heap) AllocWorst(n int) xunsafe.Addr[byte] {
	if n <= 0 {
		return 0
	}
	h.bootstrap()

	b := h.set.Max()
	if b == 0 || int(freeset.At(b).PayloadSize) < n {
		return 0
	}
	return h.take(b, n, false)
}

// take detaches the chosen block, splits off a useful tail, and hands the
// prefix to the caller. first- and next-fit additionally move the rover:
// onto the tail when one was carved, otherwise past the departed block.
func (h *Heap) take(b xunsafe.Addr[byte], n int, moveRover bool) xunsafe.Addr[byte] {
	prev, next := h.set.Neighbors(b)
	h.set.Remove(b)

	tail, split := freeset.Split(b, n)
	if split {
		h.set.AddAfter(prev, tail)
	}

	if moveRover {
		switch {
		case split:
			h.set.SetRover(tail)
		case next != 0:
			h.set.SetRover(next)
		default:
			h.set.SetRover(h.set.Head())
		}
	}

	hd := freeset.At(b)
	hd.MarkAllocated()
	debug.Log(nil, "alloc", "%v+%d, split=%v", b, n, split)
	return b.Add(freeset.HeaderBytes)
}
