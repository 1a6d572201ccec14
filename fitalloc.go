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

package fitalloc

import (
	"unsafe"

	"github.com/gomemlab/fitalloc/internal/arena"
	"github.com/gomemlab/fitalloc/internal/buddy"
	"github.com/gomemlab/fitalloc/internal/freeset"
	"github.com/gomemlab/fitalloc/internal/mainheap"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// Tuning constants, fixed at compile time so that identical allocation
// traces produce identical placements run over run.
const (
	// HeapBytes is the size of each arena; the policy arena and the buddy
	// arena are this large independently.
	HeapBytes = arena.DefaultBytes

	// MinTail is the smallest residual payload that still justifies a
	// split.
	MinTail = freeset.MinTail

	// SkipHeight is the maximum forward-link height of the size index.
	SkipHeight = freeset.SkipHeight

	// MaxOrder bounds the buddy block orders.
	MaxOrder = buddy.MaxOrder
)

// The sentinels stamped into every block header. Exposed for harnesses
// that inspect raw arena bytes.
const (
	MagicFree  = arena.MagicFree
	MagicAlloc = arena.MagicAlloc
)

// The process-wide arenas. Each is mapped lazily by the first allocation
// of its policy family and lives until process exit.
var (
	policyHeap mainheap.Heap
	buddyHeap  buddy.Heap
)

// AllocFirst places n bytes in the lowest-addressed adequate free block.
// Returns nil when the request cannot be met.
func AllocFirst(n int) unsafe.Pointer {
	record(StrategyFirst)
	return pointer(policyHeap.AllocFirst(n))
}

// AllocNext places n bytes in the first adequate block at or after the
// point where the previous first/next-fit allocation left off. Returns nil
// when the request cannot be met.
func AllocNext(n int) unsafe.Pointer {
	record(StrategyNext)
	return pointer(policyHeap.AllocNext(n))
}

// AllocBest places n bytes in the tightest adequate free block, lowest
// address on ties. Returns nil when the request cannot be met.
func AllocBest(n int) unsafe.Pointer {
	record(StrategyBest)
	return pointer(policyHeap.AllocBest(n))
}

// AllocWorst places n bytes in the largest free block. Returns nil when
// the request cannot be met.
func AllocWorst(n int) unsafe.Pointer {
	record(StrategyWorst)
	return pointer(policyHeap.AllocWorst(n))
}

// AllocBuddy places n bytes in the buddy arena, rounded up to a power of
// two. Returns nil when the request cannot be met.
func AllocBuddy(n int) unsafe.Pointer {
	record(StrategyBuddy)
	return pointer(buddyHeap.Alloc(n))
}

// Free returns a pointer obtained from any of the allocation entry points
// to its owning arena.
//
// Free routes by address: buddy-arena pointers take the buddy path, and
// everything else is offered to the policy arena, which accepts only
// pointers carrying the allocated sentinel. Null pointers, foreign
// pointers and double frees are ignored without diagnostics; noisy misuse
// reporting would contaminate the traces this allocator exists to
// produce.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	a := xunsafe.AddrOf((*byte)(p))
	if buddyHeap.Owns(a) {
		buddyHeap.Free(a)
		return
	}
	policyHeap.Free(a)
}

func pointer(a xunsafe.Addr[byte]) unsafe.Pointer {
	if a == 0 {
		return nil
	}
	return unsafe.Pointer(a.AssertValid())
}
