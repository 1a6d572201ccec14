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

// Test hooks over the process-wide heaps. The arenas cannot be re-mapped,
// so the tests verify state through these instead of resetting anything.

// PolicyTotalFree returns the free payload bytes of the policy arena.
func PolicyTotalFree() int { return policyHeap.TotalFree() }

// PolicyInvariants validates the policy arena.
func PolicyInvariants() error { return policyHeap.CheckInvariants() }

// BuddyTotalFree returns the free bytes of the buddy arena, headers
// included.
func BuddyTotalFree() int { return buddyHeap.TotalFree() }

// BuddyInvariants validates the buddy arena.
func BuddyInvariants() error { return buddyHeap.CheckInvariants() }

// RecordStrategy drives the strategy register directly, range checks and
// all.
func RecordStrategy(s Strategy) { record(s) }
