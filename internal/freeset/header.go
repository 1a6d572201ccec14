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
	"unsafe"

	"github.com/gomemlab/fitalloc/internal/arena"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

const (
	// SkipHeight is the maximum number of forward levels a block may
	// participate in within the size index.
	SkipHeight = 6

	// MinTail is the smallest residual payload that still justifies
	// carving a tail off a block instead of handing the whole block to
	// the caller.
	MinTail = 32
)

// Header sits at the base of every block in the policy arena, immediately
// before the payload bytes.
//
// While a block is free, the links thread it into both views of the free
// set. While it is allocated the links are meaningless; only PayloadSize
// and the magic tag are read, and the tag is what the free dispatcher uses
// to decide whether a raw pointer is one of ours.
//
// Header layout within the arena:
//
//	PayloadSize: uint32    // Usable bytes after the header.
//	Magic:       uint32    // arena.MagicFree or arena.MagicAlloc.
//	Free:        bool      // Mirror of Magic, kept for debug checks.
//	Height:      uint8     // Populated forward levels, 1..SkipHeight.
//	reserved:    6 bytes   // Padding for link alignment.
//	Prev, Next:  Addr      // Address-ordered list links.
//	Fwd:         Addr[6]   // Size-index forward links.
type Header struct {
	PayloadSize uint32
	Magic       uint32
	Free        bool
	Height      uint8
	_           [6]byte
	Prev, Next  xunsafe.Addr[byte]
	Fwd         [SkipHeight]xunsafe.Addr[byte]
}

// HeaderBytes is the per-block bookkeeping overhead.
const HeaderBytes = int(unsafe.Sizeof(Header{}))

// Compile-time checks to protect against unintended changes in the header's
// memory layout. Links must survive reinterpretation of raw arena bytes.
var (
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.PayloadSize) - 0]
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.Magic) - 4]
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.Free) - 8]
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.Height) - 9]
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.Prev) - 16]
)

// At reinterprets the bytes at a as a block header.
func At(a xunsafe.Addr[byte]) *Header {
	return xunsafe.Cast[Header](a.AssertValid())
}

// Base returns the address a header sits at.
func Base(h *Header) xunsafe.Addr[byte] {
	return xunsafe.Addr[byte](xunsafe.AddrOf(h))
}

// End returns the one-past-the-end address of a block: header, then
// payload.
func End(h *Header) xunsafe.Addr[byte] {
	return Base(h).Add(HeaderBytes + int(h.PayloadSize))
}

// adjacent reports whether b starts exactly where a ends. Two adjacent free
// blocks are a coalescing bug waiting to be observed.
func adjacent(a, b *Header) bool {
	return End(a) == Base(b)
}

// MarkFree stamps a header as free.
func (h *Header) MarkFree() {
	h.Magic = arena.MagicFree
	h.Free = true
}

// MarkAllocated stamps a header as handed out.
func (h *Header) MarkAllocated() {
	h.Magic = arena.MagicAlloc
	h.Free = false
}

// IsAllocated reports whether the magic tag marks this header as handed
// out.
func (h *Header) IsAllocated() bool {
	return h.Magic == arena.MagicAlloc && !h.Free
}
