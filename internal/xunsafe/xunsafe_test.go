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

package xunsafe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gomemlab/fitalloc/internal/xunsafe"
)

func TestAddrRoundTrip(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 64)
	a := xunsafe.AddrOf(&buf[0])

	assert.Same(t, &buf[0], a.AssertValid())
	assert.Same(t, &buf[8], a.Add(8).AssertValid())
	assert.Equal(t, 8, a.Add(8).Sub(a))
}

func TestAddrOrdering(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 64)
	lo := xunsafe.AddrOf(&buf[0])
	hi := xunsafe.AddrOf(&buf[32])

	assert.Less(t, lo, hi)
	assert.Equal(t, hi, lo.Add(32))
}

func TestByteLoadStore(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 16)
	xunsafe.ByteStore(&buf[0], 4, uint32(0xDEADBEEF))
	assert.Equal(t, uint32(0xDEADBEEF), xunsafe.ByteLoad[uint32](&buf[0], 4))
	assert.Equal(t, byte(0xEF), buf[4])
}

func TestCast(t *testing.T) {
	t.Parallel()

	v := uint64(0x0102030405060708)
	p := xunsafe.Cast[[8]byte](&v)
	assert.Equal(t, byte(0x08), p[0])
}
