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
	"github.com/gomemlab/fitalloc/internal/debug"
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// Split carves a free tail off b when enough would remain to satisfy some
// future request; a tail smaller than HeaderBytes+MinTail is a splinter
// nobody can use, so in that case the caller gets the whole block and its
// payload is left untouched.
//
// b must already be detached from the set. On a split, b's payload shrinks
// to exactly request and the residual comes back as a freshly stamped free
// header, ready for insertion.
func Split(b xunsafe.Addr[byte], request int) (tail xunsafe.Addr[byte], ok bool) {
	h := At(b)
	debug.Assert(int(h.PayloadSize) >= request, "splitting %v below request %d", b, request)

	total := HeaderBytes + int(h.PayloadSize)
	needed := HeaderBytes + request
	if total < needed+HeaderBytes+MinTail {
		return 0, false
	}

	tail = b.Add(needed)
	t := At(tail)
	*t = Header{PayloadSize: uint32(total - needed - HeaderBytes)}
	t.MarkFree()

	h.PayloadSize = uint32(request)
	return tail, true
}
