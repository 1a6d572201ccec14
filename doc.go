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

// Package fitalloc is an experimental user-space allocator that models
// five classical block-placement policies side by side: first-fit,
// next-fit, best-fit, worst-fit, and binary buddy.
//
// Each policy has its own allocation entry point so that a benchmark
// harness or trace replayer can observe the fragmentation and placement
// behavior of one strategy in isolation; [Free] routes any returned
// pointer back to the arena that owns it. The first four policies share
// one arena whose free blocks are tracked under two orderings at once (by
// address for coalescing, by size for best/worst-fit queries); the buddy
// policy runs in a second, independent arena.
//
// Everything is deterministic by construction: arena sizes and thresholds
// are compile-time constants, and the probabilistic size index draws its
// shape from a fixed-seed generator, so identical allocation traces
// produce identical placements run over run.
//
// # Limits
//
// The allocator is a measurement instrument, not a general-purpose heap.
// It is single-threaded (callers serialize externally), arenas never grow
// and are never unmapped, allocation failure is an ordinary nil return,
// and misuse of [Free] (null, foreign, or doubled pointers) is silently
// ignored so that traces stay clean.
package fitalloc
