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
	"fmt"

	"github.com/gomemlab/fitalloc/internal/debug"
	"github.com/gomemlab/fitalloc/internal/freeset"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// Free returns an allocated block to the free set, coalescing it with any
// address-adjacent free neighbor.
//
// Classification is by the magic tag alone: a pointer without the
// allocated sentinel right before it is ignored, which silently absorbs
// double frees (the first free already flipped the tag). A foreign pointer
// that happens to carry the sentinel is accepted; that hazard is inherent
// to any header-based scheme without an ownership table.
func (h *Heap) Free(p xunsafe.Addr[byte]) {
	if !h.arena.Mapped() {
		return
	}

	b := p.Add(-freeset.HeaderBytes)
	hd := freeset.At(b)
	if !hd.IsAllocated() {
		return
	}

	hd.MarkFree()
	h.set.Release(b)
	debug.Log(nil, "free", "%v, %d blocks free", b, h.set.Len())
}

func errOutOfArena(b xunsafe.Addr[byte]) error {
	return fmt.Errorf("free block %v extends outside the arena", b)
}
