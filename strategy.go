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

// Strategy identifies the placement policy behind an allocation entry
// point.
type Strategy int32

const (
	StrategyFirst Strategy = iota
	StrategyNext
	StrategyBest
	StrategyWorst
	StrategyBuddy
)

var strategyNames = [...]string{
	StrategyFirst: "first",
	StrategyNext:  "next",
	StrategyBest:  "best",
	StrategyWorst: "worst",
	StrategyBuddy: "buddy",
}

// current is the policy of the most recent allocation attempt,
// process-wide like the arenas themselves.
var current Strategy

// record notes the policy of the entry point being executed, whether or
// not the allocation goes on to succeed.
func record(s Strategy) {
	current = s
}

// CurrentStrategy reports the policy of the most recent allocation
// attempt. Before any allocation it reports [StrategyFirst], by
// convention.
func CurrentStrategy() Strategy {
	if current < StrategyFirst || current > StrategyBuddy {
		return StrategyFirst
	}
	return current
}

// String returns the stable, human-readable name of the policy. Values
// outside the known range print as "first", matching [CurrentStrategy].
func (s Strategy) String() string {
	if s < StrategyFirst || s > StrategyBuddy {
		return strategyNames[StrategyFirst]
	}
	return strategyNames[s]
}
