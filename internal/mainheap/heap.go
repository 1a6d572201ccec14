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

// Package mainheap implements the policy arena: a single fixed anonymous
// mapping whose free blocks are tracked by a dual-indexed free set and
// served to the first-, next-, best- and worst-fit placement policies.
package mainheap

import (
	"github.com/gomemlab/fitalloc/internal/arena"
	"github.com/gomemlab/fitalloc/internal/debug"
	"github.com/gomemlab/fitalloc/internal/freeset"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// Capacity is the payload of the single free block a freshly bootstrapped
// heap holds, and therefore the largest request that can ever succeed.
const Capacity = arena.DefaultBytes - freeset.HeaderBytes

// Heap is one policy arena.
//
// The zero Heap is ready: the first allocation maps the arena and installs
// the whole-arena free block. A Heap is not safe for concurrent use;
// callers serialize externally.
type Heap struct {
	_     xunsafe.NoCopy
	arena arena.Arena
	set   freeset.Set
}

// Mapped reports whether the arena has been bootstrapped.
func (h *Heap) Mapped() bool {
	return h.arena.Mapped()
}

// Owns reports whether p points into this heap's arena.
func (h *Heap) Owns(p xunsafe.Addr[byte]) bool {
	return h.arena.Mapped() && h.arena.Contains(p)
}

func (h *Heap) bootstrap() {
	if h.arena.Mapped() {
		return
	}
	h.arena = arena.Map(arena.DefaultBytes)
	h.set.Reset()

	b := h.arena.Base()
	hd := freeset.At(b)
	*hd = freeset.Header{PayloadSize: uint32(Capacity)}
	hd.MarkFree()
	h.set.AddAfter(0, b)
	debug.Log(nil, "bootstrap", "policy arena %v, capacity %d", b, Capacity)
}

// FreeSizes returns the payload sizes of all free blocks in address order.
func (h *Heap) FreeSizes() []int {
	var sizes []int
	for cur := h.set.Head(); cur != 0; cur = freeset.At(cur).Next {
		sizes = append(sizes, int(freeset.At(cur).PayloadSize))
	}
	return sizes
}

// TotalFree returns the number of free payload bytes.
func (h *Heap) TotalFree() int {
	total := 0
	for _, n := range h.FreeSizes() {
		total += n
	}
	return total
}

// LargestFree returns the largest free payload, 0 when nothing is free.
func (h *Heap) LargestFree() int {
	b := h.set.Max()
	if b == 0 {
		return 0
	}
	return int(freeset.At(b).PayloadSize)
}

// Rover returns the next-fit resumption point; 0 means "start at the
// head".
func (h *Heap) Rover() xunsafe.Addr[byte] {
	return h.set.Rover()
}

// FreeBlocks returns the number of free blocks.
func (h *Heap) FreeBlocks() int {
	return h.set.Len()
}

// CheckInvariants validates the free set and that every free block lies
// inside the arena. A healthy heap returns nil.
func (h *Heap) CheckInvariants() error {
	if !h.arena.Mapped() {
		return nil
	}
	for cur := h.set.Head(); cur != 0; cur = freeset.At(cur).Next {
		if !h.arena.Contains(cur) || freeset.End(freeset.At(cur)) > h.arena.End() {
			return errOutOfArena(cur)
		}
	}
	return h.set.Check()
}
