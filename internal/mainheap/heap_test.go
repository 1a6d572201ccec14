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

package mainheap_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomemlab/fitalloc/internal/freeset"
	"github.com/gomemlab/fitalloc/internal/mainheap"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// blockOf recovers a block's base address from its payload address.
func blockOf(p xunsafe.Addr[byte]) xunsafe.Addr[byte] {
	return p.Add(-freeset.HeaderBytes)
}

func TestZeroRequest(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	assert.Zero(t, h.AllocFirst(0))
	assert.Zero(t, h.AllocNext(0))
	assert.Zero(t, h.AllocBest(0))
	assert.Zero(t, h.AllocWorst(0))
	assert.Zero(t, h.AllocFirst(-1))

	// A request that cannot succeed maps nothing.
	assert.False(t, h.Mapped())
}

func TestOversizedRequest(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	assert.Zero(t, h.AllocFirst(mainheap.Capacity+1))
	assert.Zero(t, h.AllocNext(mainheap.Capacity+1))
	assert.Zero(t, h.AllocBest(mainheap.Capacity+1))
	assert.Zero(t, h.AllocWorst(mainheap.Capacity+1))

	// Failure leaves the bootstrapped arena untouched.
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, []int{mainheap.Capacity}, h.FreeSizes())
}

func TestFirstFitRoundTrip(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	a := h.AllocFirst(128)
	require.NotZero(t, a)
	b := h.AllocFirst(64)
	require.NotZero(t, b)
	require.NoError(t, h.CheckInvariants())

	// First-fit walks from the head, so the two blocks sit back to back
	// at the bottom of the arena.
	assert.Equal(t, a.Add(128+freeset.HeaderBytes), b)

	h.Free(a)
	require.NoError(t, h.CheckInvariants())
	h.Free(b)
	require.NoError(t, h.CheckInvariants())

	// Everything coalesced back into the single bootstrap block, with
	// the rover parked on it.
	assert.Equal(t, []int{mainheap.Capacity}, h.FreeSizes())
	assert.Equal(t, blockOf(a), h.Rover())
}

func TestWholeArenaRoundTrip(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	p := h.AllocFirst(mainheap.Capacity)
	require.NotZero(t, p)
	assert.Zero(t, h.FreeBlocks())
	assert.Zero(t, h.Rover(), "empty list nulls the rover")

	h.Free(p)
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, []int{mainheap.Capacity}, h.FreeSizes())
}

func TestNoSplinterSplit(t *testing.T) {
	t.Parallel()

	// The largest request that still splits leaves exactly a MinTail
	// payload behind; one byte more and the caller gets the whole block.
	splitMax := mainheap.Capacity - freeset.HeaderBytes - freeset.MinTail

	var h mainheap.Heap
	p := h.AllocFirst(splitMax)
	require.NotZero(t, p)
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, []int{freeset.MinTail}, h.FreeSizes())
	h.Free(p)

	var h2 mainheap.Heap
	p = h2.AllocFirst(splitMax + 1)
	require.NotZero(t, p)
	require.NoError(t, h2.CheckInvariants())
	assert.Zero(t, h2.FreeBlocks(), "splinter tails are not carved")
	h2.Free(p)
	assert.Equal(t, []int{mainheap.Capacity}, h2.FreeSizes())
}

func TestNextFitRoundTrip(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	p := h.AllocNext(128)
	require.NotZero(t, p)
	require.NoError(t, h.CheckInvariants())

	h.Free(p)
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, []int{mainheap.Capacity}, h.FreeSizes())
	assert.Equal(t, blockOf(p), h.Rover(), "rover follows the coalesced block")
}

func TestNextFitResumesAtRover(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	a := h.AllocFirst(100)
	b := h.AllocFirst(100)
	require.NotZero(t, b)
	h.Free(a)
	require.NoError(t, h.CheckInvariants())

	// The hole at a fits, but the rover sits past b; next-fit takes the
	// tail instead of circling back.
	p := h.AllocNext(80)
	require.NotZero(t, p)
	assert.NotEqual(t, a, p)
	assert.Greater(t, p, b)
	require.NoError(t, h.CheckInvariants())

	// Once the tail is exhausted the scan wraps and finds the hole.
	rest := h.AllocNext(mainheap.Capacity - 3*(100+freeset.HeaderBytes) - 80)
	require.NotZero(t, rest)
	q := h.AllocNext(100)
	require.NotZero(t, q)
	assert.Equal(t, a, q)
	require.NoError(t, h.CheckInvariants())
}

// carveFreePattern burns the whole arena into allocations and then frees
// three of them, leaving free payloads of exactly 200, 80 and 300 in
// address order.
func carveFreePattern(t *testing.T, h *mainheap.Heap) (a, b, c xunsafe.Addr[byte]) {
	t.Helper()

	hb := freeset.HeaderBytes
	a = h.AllocFirst(200)
	g1 := h.AllocFirst(16)
	b = h.AllocFirst(80)
	g2 := h.AllocFirst(16)
	c = h.AllocFirst(300)
	g3 := h.AllocFirst(16)
	rest := h.AllocFirst(mainheap.Capacity - (200 + 80 + 300 + 3*16 + 6*hb))
	for _, p := range []xunsafe.Addr[byte]{a, g1, b, g2, c, g3, rest} {
		require.NotZero(t, p)
	}
	assert.Zero(t, h.FreeBlocks())

	h.Free(a)
	h.Free(b)
	h.Free(c)
	require.NoError(t, h.CheckInvariants())
	require.Equal(t, []int{200, 80, 300}, h.FreeSizes())
	return a, b, c
}

func TestBestFitPicksTightest(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	_, b, _ := carveFreePattern(t, &h)

	p := h.AllocBest(64)
	assert.Equal(t, b, p, "best fit takes the 80-byte hole")
	require.NoError(t, h.CheckInvariants())
}

func TestWorstFitPicksLargest(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	_, _, c := carveFreePattern(t, &h)

	p := h.AllocWorst(64)
	assert.Equal(t, c, p, "worst fit takes the 300-byte hole")
	require.NoError(t, h.CheckInvariants())

	// Largest remaining hole is the 200-byte one; a larger request
	// fails without touching anything.
	free := h.FreeSizes()
	assert.Zero(t, h.AllocWorst(250))
	assert.Equal(t, free, h.FreeSizes())
}

func TestBestFitTieBreaksByAddress(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	hb := freeset.HeaderBytes
	a := h.AllocFirst(100)
	g1 := h.AllocFirst(16)
	b := h.AllocFirst(100)
	rest := h.AllocFirst(mainheap.Capacity - (2*100 + 16 + 4*hb))
	for _, p := range []xunsafe.Addr[byte]{a, g1, b, rest} {
		require.NotZero(t, p)
	}
	h.Free(a)
	h.Free(b)
	require.Equal(t, []int{100, 100}, h.FreeSizes())

	assert.Equal(t, a, h.AllocBest(100), "equal sizes resolve to the lower address")
}

func TestDoubleFreeIsIgnored(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	p := h.AllocFirst(100)
	require.NotZero(t, p)
	h.Free(p)
	total := h.TotalFree()

	h.Free(p)
	require.NoError(t, h.CheckInvariants())
	assert.Equal(t, total, h.TotalFree())
}

func TestForeignFreeIsIgnored(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	p := h.AllocFirst(100)
	require.NotZero(t, p)

	buf := make([]byte, 1024)
	h.Free(xunsafe.AddrOf(&buf[512]))
	require.NoError(t, h.CheckInvariants())

	h.Free(p)
	assert.Equal(t, []int{mainheap.Capacity}, h.FreeSizes())
}

func TestChurnKeepsInvariants(t *testing.T) {
	t.Parallel()

	var h mainheap.Heap
	prng := rand.New(rand.NewSource(42))

	type alloc struct {
		p xunsafe.Addr[byte]
		n int
	}
	var live []alloc

	for i := range 400 {
		if len(live) > 0 && prng.Intn(3) == 0 {
			k := prng.Intn(len(live))
			h.Free(live[k].p)
			live = append(live[:k], live[k+1:]...)
		} else {
			n := 1 + prng.Intn(600)
			var p xunsafe.Addr[byte]
			switch i % 4 {
			case 0:
				p = h.AllocFirst(n)
			case 1:
				p = h.AllocNext(n)
			case 2:
				p = h.AllocBest(n)
			case 3:
				p = h.AllocWorst(n)
			}
			if p != 0 {
				live = append(live, alloc{p, n})
			}
		}
		require.NoError(t, h.CheckInvariants(), "op %d", i)
	}

	for _, l := range live {
		h.Free(l.p)
		require.NoError(t, h.CheckInvariants())
	}
	assert.Equal(t, []int{mainheap.Capacity}, h.FreeSizes())
}
