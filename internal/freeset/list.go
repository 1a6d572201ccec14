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
	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

// The address-ordered view: a doubly-linked list threaded through the block
// headers, sorted by block address. Constant-time neighbor lookup is what
// makes coalescing cheap; the one linear walk is locate, on the free path.

// locate returns the last list member whose address is below a, or 0 when a
// belongs at the head.
func (s *Set) locate(a xunsafe.Addr[byte]) xunsafe.Addr[byte] {
	var prev xunsafe.Addr[byte]
	for cur := s.head; cur != 0 && cur < a; cur = At(cur).Next {
		prev = cur
	}
	return prev
}

// linkAfter splices n into the list directly after prev, where prev == 0
// means the head position.
func (s *Set) linkAfter(prev, n xunsafe.Addr[byte]) {
	h := At(n)
	h.Prev = prev
	if prev == 0 {
		h.Next = s.head
		s.head = n
	} else {
		p := At(prev)
		h.Next = p.Next
		p.Next = n
	}
	if h.Next != 0 {
		At(h.Next).Prev = n
	}
}

// unlink detaches n from the list and clears its links.
func (s *Set) unlink(n xunsafe.Addr[byte]) {
	h := At(n)
	if h.Prev == 0 {
		s.head = h.Next
	} else {
		At(h.Prev).Next = h.Next
	}
	if h.Next != 0 {
		At(h.Next).Prev = h.Prev
	}
	h.Prev, h.Next = 0, 0
}
