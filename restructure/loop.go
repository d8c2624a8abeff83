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

// Package restructure implements the two restructuring algorithms of Bahmann
// et al. (2015) §§4.1–4.2 — loop restructuring (C7) and branch restructuring
// (C8) — plus the region-wrapping they both rely on (C9) and the top-level
// orchestration that runs join-returns (C6) ahead of them (spec.md §6.1
// "restructure"). The ordered, numbered-step pass style is grounded on the
// teacher's own CFG construction entry point,
// assertion/function/preprocess/cfg.go's CFG(): a fixed sequence of named
// passes, each documented with what invariant it establishes before handing
// the graph to the next.
package restructure

import (
	"sort"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/config"
	"github.com/scfg-project/scfg/scfg"
	"github.com/scfg-project/scfg/scfg/scfganalysis"
	"github.com/scfg-project/scfg/scfg/scfgedit"
)

// RestructureLoops runs loop restructuring (spec.md §4.7, component C7) over
// g: every SCC compute_scc finds is normalized to a single header and single
// exiting latch, its backedge marked, and the result wrapped into a loop
// RegionBlock. Nested loops are restructured bottom-up by recursing into
// each freshly wrapped subregion (spec.md §4.7 step 7) — this terminates
// because a subregion's own compute_scc call excludes the backedge this
// call just marked (see DESIGN.md's compute_scc note), so it only ever finds
// strictly-nested cycles, a strictly decreasing quantity.
func RestructureLoops(g *scfg.SCFG) error {
	sccs := scfganalysis.ComputeSCC(g)
	for _, scc := range sccs {
		regionName, err := restructureOneLoop(g, []block.Name(scc))
		if err != nil {
			return err
		}
		region := g.MustGet(regionName)
		sub, ok := region.Subregion().(*scfg.SCFG)
		if !ok {
			return &scfg.InvariantViolationError{Reason: "wrap_region produced a subregion not of type *scfg.SCFG", Blocks: []block.Name{regionName}}
		}
		if err := RestructureLoops(sub); err != nil {
			return err
		}
	}
	return nil
}

// restructureOneLoop normalizes and wraps the single loop body named by
// members (spec.md §4.7 steps 1–6), returning the name of the RegionBlock it
// installed in g.
func restructureOneLoop(g *scfg.SCFG, body []block.Name) (block.Name, error) {
	headers, entries := scfganalysis.FindHeadersAndEntries(g, body)
	if len(headers) == 0 {
		return "", &scfg.InvariantViolationError{Reason: "loop body has no header (not reachable from outside itself)", Blocks: body}
	}

	allEntries := dedupValues(entries, headers)
	header := headers[0]
	members := append([]block.Name{}, body...)

	if len(headers) > 1 || len(allEntries) > 1 {
		newHeadName := block.Name(g.Generator().NewBlockName(config.KindSynthHead))
		newHead := block.NewSynthetic(block.KindSyntheticHead, newHeadName, append([]block.Name{}, headers...))
		g.MustAddBlock(newHead)
		ctrlVar := g.Generator().NewVarName(config.ControlVar)

		// Redirect every predecessor of any original header, not just
		// external entries: when two original headers each re-enter the
		// other internally (the Bahmann et al. fig. 3 shape, {B,C} both
		// headers and both mutually reachable), those internal re-entry
		// edges are just as ambiguous about which header to land on as an
		// external call is, and must go through the same dispatcher. Their
		// control blocks are interior loop machinery and join the body;
		// external entries' control blocks stay outside — they keep
		// reaching the loop only through the region boundary once C9 wraps
		// it, exactly like any other caller of a wrapped loop.
		headerBodyPreds, externalPreds := splitPredsByBody(g, headers, body)

		internalCtrl, err := scfgedit.WireControlBlocks(g, newHeadName, headerBodyPreds, headers, ctrlVar)
		if err != nil {
			return "", err
		}
		if _, err := scfgedit.WireControlBlocks(g, newHeadName, externalPreds, headers, ctrlVar); err != nil {
			return "", err
		}

		header = newHeadName
		members = append(members, newHeadName)
		members = append(members, internalCtrl...)
	}

	exiting, exits := scfganalysis.FindExitingAndExits(g, members)
	if len(exiting) == 0 {
		return "", &scfg.InvariantViolationError{Reason: "loop body has no exiting block (no edge leaves the loop)", Blocks: members}
	}

	allExits := dedupValues(exits, exiting)
	latch := exiting[0]

	if len(exiting) > 1 || len(allExits) > 1 {
		successorSet := make(map[block.Name]bool, len(allExits)+1)
		successorSet[header] = true
		for _, y := range allExits {
			successorSet[y] = true
		}
		successors := make([]block.Name, 0, len(successorSet))
		for n := range successorSet {
			successors = append(successors, n)
		}
		sort.Slice(successors, func(i, j int) bool { return successors[i] < successors[j] })

		newLatchName := block.Name(g.Generator().NewBlockName(config.KindSynthExitingLatch))
		newLatch := block.NewSynthetic(block.KindSyntheticExitingLatch, newLatchName, successors)
		// A single index control variable already discriminates both facts
		// spec.md §4.7 step 4 names (which exit, and whether to continue): the
		// index of header within successors means "continue", any other index
		// names the chosen exit. config.LoopContinuationVar names the
		// continue/leave reading a simulator gives this same variable; no
		// second assignment is written.
		ctrlVar := g.Generator().NewVarName(config.LoopContinuationVar)
		ctrlBlocks, err := scfgedit.InsertBlockAndControlBlocks(g, newLatch, exiting, successors, ctrlVar)
		if err != nil {
			return "", err
		}
		latch = newLatchName
		members = append(members, newLatchName)
		members = append(members, ctrlBlocks...)
	}

	// Mark every direct internal edge into header as a backedge — not just
	// the found latch's own edge. After a header merge, more than one member
	// can have a direct edge to the new head (e.g. each of the original
	// headers' own re-entry control blocks independently targets it); the
	// reducibility invariant ("removing all backedges yields a DAG") only
	// holds once every one of them is marked, or the unmarked survivor keeps
	// the body cyclic. In the common single-header, single-latch case this
	// finds exactly the one edge the latch contributes, matching C7 step 5
	// directly.
	if err := markBackedgesTo(g, members, header); err != nil {
		return "", err
	}

	return WrapRegion(g, members, block.RegionLoop, header, latch)
}

// splitPredsByBody splits every predecessor of any name in headers into
// those that are themselves members of body (internal re-entry edges, e.g.
// one original header jumping directly into another) and those that are not
// (external callers of the loop). Both slices are deduplicated and sorted
// for determinism.
func splitPredsByBody(g *scfg.SCFG, headers, body []block.Name) (bodyPreds, externalPreds []block.Name) {
	bodySet := make(map[block.Name]bool, len(body))
	for _, n := range body {
		bodySet[n] = true
	}

	preds := g.Predecessors()
	bodySeen := make(map[block.Name]bool)
	externalSeen := make(map[block.Name]bool)
	for _, h := range headers {
		for p := range preds[h] {
			if bodySet[p] {
				if !bodySeen[p] {
					bodySeen[p] = true
					bodyPreds = append(bodyPreds, p)
				}
			} else if !externalSeen[p] {
				externalSeen[p] = true
				externalPreds = append(externalPreds, p)
			}
		}
	}
	sort.Slice(bodyPreds, func(i, j int) bool { return bodyPreds[i] < bodyPreds[j] })
	sort.Slice(externalPreds, func(i, j int) bool { return externalPreds[i] < externalPreds[j] })
	return bodyPreds, externalPreds
}

// markBackedgesTo marks, as a backedge, every direct jump target equal to
// header among the named members.
func markBackedgesTo(g *scfg.SCFG, members []block.Name, header block.Name) error {
	found := false
	for _, n := range members {
		b, ok := g.Get(n)
		if !ok {
			continue
		}
		hasEdge := false
		for _, t := range b.JumpTargets() {
			if t == header {
				hasEdge = true
				break
			}
		}
		if hasEdge {
			g.ReplaceBlock(b.ReplaceBackedge(header))
			found = true
		}
	}
	if !found {
		return &scfg.InvariantViolationError{Reason: "loop body has no direct internal edge into its header to mark as a backedge", Blocks: members}
	}
	return nil
}

// dedupValues flattens the values of m (keyed by the members of keys, in
// that order) into a sorted slice of distinct names.
func dedupValues(m map[block.Name][]block.Name, keys []block.Name) []block.Name {
	seen := make(map[block.Name]bool)
	var out []block.Name
	for _, k := range keys {
		for _, v := range m[k] {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
