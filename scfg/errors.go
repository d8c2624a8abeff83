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

package scfg

import (
	"fmt"

	"github.com/scfg-project/scfg/block"
)

// MalformedInputError reports a caller mistake: a reference to an undefined
// block name, a duplicate block name, or multiple heads with no predecessor
// before join_returns has had a chance to run (spec.md §7).
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// InvariantViolationError reports that a transformation step produced a
// graph violating a structural invariant it was supposed to maintain (a
// region boundary that is not single-entry/single-exit, a closure violation,
// etc.) — always a bug in the engine, never a caller mistake (spec.md §7).
// Per spec.md §7's policy, the engine does not attempt recovery: callers
// that receive this error should treat it as fatal and report Blocks
// verbatim for debugging.
type InvariantViolationError struct {
	Reason string
	Blocks []block.Name
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s (blocks: %v)", e.Reason, e.Blocks)
}

// UnreachableBlockError reports that a block is present in the graph but
// unreachable from the head. Restructuring passes preserve this state (dead
// code is not auto-pruned) but analyses (package scfg/scfganalysis) surface
// it rather than silently ignoring it (spec.md §7).
type UnreachableBlockError struct {
	Blocks []block.Name
}

func (e *UnreachableBlockError) Error() string {
	return fmt.Sprintf("unreachable blocks: %v", e.Blocks)
}
