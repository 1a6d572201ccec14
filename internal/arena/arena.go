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

// Package arena obtains and describes the fixed anonymous mappings that back
// each heap.
//
// An arena is mapped once and never grows, never moves, and is never
// returned to the operating system. All block metadata lives inside the
// mapping; the Go heap holds only the pair of bounding addresses.
package arena

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/gomemlab/fitalloc/internal/debug"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

const (
	// DefaultBytes is the size of each arena's mapping.
	DefaultBytes = 4096

	// MagicFree and MagicAlloc tag the header of every block in every
	// arena. Beyond discriminating free from allocated, they act as soft
	// poison values: a freed pointer no longer carries MagicAlloc, so a
	// naive double free falls through the dispatcher.
	MagicFree  uint32 = 0xFEEDFACE
	MagicAlloc uint32 = 0xA110CA7E
)

// Arena is a single contiguous anonymous mapping.
//
// The zero Arena is unmapped; [Map] produces a mapped one.
type Arena struct {
	base, end xunsafe.Addr[byte]
}

// Map obtains a zero-initialized private anonymous mapping of the given
// size.
//
// Mapping failure is not recoverable: the process terminates with a
// diagnostic on stderr. Everything downstream may therefore assume a mapped
// arena without an error path.
func Map(bytes int) Arena {
	data, err := unix.Mmap(-1, 0, bytes,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitalloc: cannot map %d-byte arena: %v\n", bytes, err)
		os.Exit(1)
	}

	base := xunsafe.AddrOf(unsafe.SliceData(data))
	a := Arena{base: base, end: base.Add(bytes)}
	debug.Log(nil, "map", "%v:%v (%d bytes)", a.base, a.end, bytes)
	return a
}

// Mapped reports whether this arena has been mapped.
func (a *Arena) Mapped() bool {
	return a.base != 0
}

// Base returns the lowest address of the mapping.
func (a *Arena) Base() xunsafe.Addr[byte] {
	return a.base
}

// End returns the one-past-the-end address of the mapping.
func (a *Arena) End() xunsafe.Addr[byte] {
	return a.end
}

// Size returns the mapping size in bytes.
func (a *Arena) Size() int {
	return a.end.Sub(a.base)
}

// Contains reports whether p falls inside the mapping.
func (a *Arena) Contains(p xunsafe.Addr[byte]) bool {
	return p >= a.base && p < a.end
}

// Offset returns p's arena-relative offset.
//
// The XOR buddy computation is only meaningful on these offsets, never on
// raw addresses.
func (a *Arena) Offset(p xunsafe.Addr[byte]) int {
	debug.Assert(a.Contains(p), "offset of foreign address %v", p)
	return p.Sub(a.base)
}
