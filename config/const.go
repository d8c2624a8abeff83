// Copyright (c) 2026 The SCFG Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config hosts non-user-configurable parameters of the restructuring
// engine --- these are internal tags and naming conventions, not runtime
// configuration.
package config

// Name-kind tags used by the name generator (package namegen) to stamp
// synthetic blocks, regions, and variables. The prefix alone identifies the
// purpose of a synthesized name; the suffix is a monotonically increasing
// per-kind counter.
const (
	KindSynthHead         = "synth_head"
	KindSynthExit         = "synth_exit"
	KindSynthLatch        = "synth_latch"
	KindSynthExitingLatch = "synth_exiting_latch"
	KindSynthFill         = "synth_fill"
	KindSynthAssign       = "synth_assign"
	KindSynthTail         = "synth_tail"
	KindSynthReturn       = "synth_return"
	KindSynthExitBranch   = "synth_exit_branch"

	KindLoopRegion   = "loop_region"
	KindBranchRegion = "branch_region"
	KindMetaRegion   = "meta_region"
)

// LoopContinuationVar is the base name (before the per-loop version suffix is
// appended by namegen) of the integer control variable a
// SyntheticExitingLatch dispatches on: it holds the index of the chosen
// latch successor, where the header's index means iterate and any other index
// names the exit taken. No separate boolean continuation variable is kept.
const LoopContinuationVar = "__loop_cont__"

// ControlVar is the base name of the integer control variable a SyntheticHead
// or SyntheticExitBranch dispatches on to select among several successors.
const ControlVar = "__ctrl__"

// MaxRestructurePasses bounds the number of times the top-level Restructure
// loop may re-run loop- and branch-restructuring before giving up and
// reporting an InvariantViolation. Each pass strictly reduces the number of
// non-structured SCCs or un-single-entry/exit branch regions (spec.md §4.7),
// so this is a generous ceiling meant only to catch a runaway bug, not a
// value callers should ever need to tune.
const MaxRestructurePasses = 10_000
