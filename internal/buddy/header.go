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
	"unsafe"

	"github.com/gomemlab/fitalloc/internal/arena"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// MaxOrder bounds the block orders; the initial block sits at
// MaxOrder-1 and fills the arena.
const MaxOrder = 13

// Header sits at the base of every buddy block, free or allocated.
//
// Header layout within the arena:
//
//	Size:       uint32    // Block size in bytes, 1<<Order.
//	Order:      uint32    // Power-of-two order of the block.
//	Magic:      uint32    // arena.MagicFree or arena.MagicAlloc.
//	Free:       bool      // Mirror of Magic, kept for debug checks.
//	reserved:   3 bytes   // Padding for link alignment.
//	Prev, Next: Addr      // Links of the order's free list.
type Header struct {
	Size       uint32
	Order      uint32
	Magic      uint32
	Free       bool
	_          [3]byte
	Prev, Next xunsafe.Addr[byte]
}

// HeaderBytes is the per-block bookkeeping overhead.
const HeaderBytes = int(unsafe.Sizeof(Header{}))

// Compile-time checks to protect against unintended changes in the
// header's memory layout.
var (
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.Order) - 4]
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.Magic) - 8]
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.Free) - 12]
	_ = [1]struct{}{}[unsafe.Offsetof(Header{}.Prev) - 16]
)

// At reinterprets the bytes at a as a buddy header.
func At(a xunsafe.Addr[byte]) *Header {
	return xunsafe.Cast[Header](a.AssertValid())
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

// isFree reports whether the header is a live member of a free list.
func (h *Header) isFree() bool {
	return h.Magic == arena.MagicFree && h.Free
}
