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

// Package simulate implements the Simulator collaborator named in spec.md
// §6.2 and §1 (the "block-level simulator used for property testing"): it
// walks a fully restructured *scfg.SCFG, dispatching on jump_targets[0] for
// ordinary fallthroughs and on a control variable for SyntheticHead,
// SyntheticExitingLatch, and SyntheticExitBranch blocks, and executing
// SyntheticAssignment blocks against an in-memory variable environment
// (spec.md §4.5's own description of what those control blocks are for).
// It never evaluates payload bodies — only structural dispatch, exactly the
// boundary spec.md §1 draws around this collaborator.
package simulate

import (
	"fmt"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/scfg"
	"github.com/scfg-project/scfg/scfg/scfganalysis"
)

// Env is the in-memory control-variable environment a simulation run
// accumulates: every SyntheticAssignment block it executes writes into it,
// and every dispatching block reads from it.
type Env map[string]int

// Run simulates g from its unique head (scfganalysis.FindHead) until it
// reaches a block with no jump targets at all, or until maxSteps blocks have
// been visited (a defensive bound against a restructuring bug leaving a
// dispatcher stuck reading a variable no predecessor ever set, which would
// otherwise loop forever). It returns the sequence of block names visited,
// in visitation order, flattened across any region boundaries crossed.
func Run(g *scfg.SCFG, maxSteps int) ([]block.Name, error) {
	head, err := scfganalysis.FindHead(g)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	env := make(Env)
	budget := maxSteps
	trace, _, halted, err := runLevel(g, head, env, &budget)
	if err != nil {
		return trace, err
	}
	if !halted {
		return trace, fmt.Errorf("simulate: exceeded %d steps without reaching a terminal block", maxSteps)
	}
	return trace, nil
}

// runLevel simulates g starting at start, returning the trace of names
// visited in this call (including names visited in any nested region it
// descended into), the name execution escaped to if it left g's own block
// set without halting (used by the caller, one level up, to keep going from
// there), and whether the simulation reached a genuinely terminal block
// (zero jump targets) rather than escaping or running out of budget.
func runLevel(g *scfg.SCFG, start block.Name, env Env, budget *int) (trace []block.Name, escaped block.Name, halted bool, err error) {
	cur := start
	for {
		if !g.Contains(cur) {
			return trace, cur, false, nil
		}
		if *budget <= 0 {
			return trace, "", false, nil
		}
		*budget--

		b := g.MustGet(cur)
		trace = append(trace, cur)

		switch {
		case len(b.JumpTargets()) == 0:
			return trace, "", true, nil

		case b.Kind() == block.KindRegion:
			sub, ok := b.Subregion().(*scfg.SCFG)
			if !ok {
				return trace, "", false, fmt.Errorf("simulate: region %q has no *scfg.SCFG subregion", cur)
			}
			subTrace, next, subHalted, err := runLevel(sub, b.Header(), env, budget)
			trace = append(trace, subTrace...)
			if err != nil {
				return trace, "", false, err
			}
			if subHalted {
				// The subregion's own exiting block was itself terminal
				// (no external continuation at all): the whole simulation
				// ends here too.
				return trace, "", true, nil
			}
			if next == "" {
				// The budget ran out inside the subregion.
				return trace, "", false, nil
			}
			cur = next

		case b.Kind() == block.KindSyntheticAssign:
			for _, a := range b.Assignment() {
				env[a.Var] = a.Value
			}
			cur = b.JumpTargets()[0]

		case isDispatcher(b.Kind()) && len(b.JumpTargets()) > 1:
			ctrlVar, ok := controlVarFor(g, cur)
			if !ok {
				return trace, "", false, fmt.Errorf("simulate: dispatcher %q has no control-assignment predecessor to learn its variable from", cur)
			}
			idx, ok := env[ctrlVar]
			if !ok {
				return trace, "", false, fmt.Errorf("simulate: control variable %q read by %q was never assigned", ctrlVar, cur)
			}
			targets := b.JumpTargets()
			if idx < 0 || idx >= len(targets) {
				return trace, "", false, fmt.Errorf("simulate: control variable %q holds out-of-range index %d for %q (%d targets)", ctrlVar, idx, cur, len(targets))
			}
			cur = targets[idx]

		default:
			cur = b.JumpTargets()[0]
		}
	}
}

func isDispatcher(k block.Kind) bool {
	return k == block.KindSyntheticHead || k == block.KindSyntheticExitingLatch || k == block.KindSyntheticExitBranch
}

// controlVarFor discovers the control variable a dispatcher reads by
// looking at its own predecessors within g for a SyntheticAssignment block:
// every predecessor insert_block_and_control_blocks wires to the same
// dispatcher shares one control variable name (spec.md §4.5), so any one
// assignment predecessor reveals it.
func controlVarFor(g *scfg.SCFG, dispatcher block.Name) (string, bool) {
	preds := g.Predecessors()
	for p := range preds[dispatcher] {
		pb, ok := g.Get(p)
		if !ok || pb.Kind() != block.KindSyntheticAssign {
			continue
		}
		assignments := pb.Assignment()
		if len(assignments) > 0 {
			return assignments[0].Var, true
		}
	}
	return "", false
}
