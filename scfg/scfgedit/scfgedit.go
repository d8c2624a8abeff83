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

// Package scfgedit implements the block-insertion primitives of the
// restructuring engine (spec.md §4.5, component C5): inserting a new block
// on the edges between a set of predecessors and a set of successors,
// rewriting jump-target lists consistently on both sides. The rewrite loop
// is grounded on the teacher's own block-splitting pass,
// hook/split_blocks_on.go, and its surrounding CFG preprocessing in
// assertion/function/assertiontree/preprocess_blocks.go: both operate by
// walking a block's existing edges and replacing them in place with edges to
// a freshly synthesized block, never mutating the blocks being pointed at.
package scfgedit

import (
	"fmt"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/config"
	"github.com/scfg-project/scfg/scfg"
)

// Retarget returns a copy of b with every jump target equal to from replaced
// by to, preserving any backedge mark on the replaced edge and the relative
// order of all other targets. Package restructure also calls this directly
// when rewiring region boundaries (C9 wrap_region).
func Retarget(b block.Block, from, to block.Name) block.Block {
	old := b.JumpTargets()
	wasBackedge := b.IsBackedge(from)
	newTargets := make([]block.Name, len(old))
	for i, t := range old {
		if t == from {
			newTargets[i] = to
		} else {
			newTargets[i] = t
		}
	}
	nb := b.ReplaceJumpTargets(newTargets)
	if wasBackedge {
		nb = nb.ReplaceBackedge(to)
	}
	return nb
}

// InsertBlock inserts newBlock into g and retargets every block named in
// preds so that any jump target equal to target instead points at
// newBlock.Name() (spec.md §4.5 "insert_block", single-successor case).
// newBlock must already carry target among its own jump targets; InsertBlock
// only rewires the predecessor side.
func InsertBlock(g *scfg.SCFG, newBlock block.Block, preds []block.Name, target block.Name) error {
	g.MustAddBlock(newBlock)
	for _, p := range preds {
		b, ok := g.Get(p)
		if !ok {
			return &scfg.MalformedInputError{Reason: fmt.Sprintf("insert_block: predecessor %q not present", p)}
		}
		g.ReplaceBlock(Retarget(b, target, newBlock.Name()))
	}
	return nil
}

// InsertBlockAndControlBlocks inserts newBlock as the dispatcher reached by
// every block in preds, additionally inserting one KindSyntheticAssign block
// per rewritten edge (spec.md §4.5 "insert_block_and_control_blocks"). A
// predecessor p may reach the blocks newBlock now stands in for through more
// than one of its own jump targets (the canonical irreducible-loop case,
// Bahmann et al. fig. 3, has a single external block with two separate edges
// into two different loop headers); every distinct jump target of p that is
// a member of successors gets its own control block, assigning ctrlVar to
// that target's index within successors, so newBlock can dispatch on ctrlVar
// to recover which of its own jump targets (== successors, in the same
// order) the edge originally meant. p must have at least one such edge. Used
// by loop restructuring to merge multiple headers or multiple exits (C7
// steps 3–4) and by branch restructuring to merge multiple exits of one
// branch body (C8 step 4).
// It returns the names of every control-assignment block it created, in
// creation order, so a caller that must track which new blocks belong inside
// a region being built (as opposed to outside it, e.g. an external caller's
// own dispatch stub) can do so — see WireControlBlocks, which this delegates
// to after inserting newBlock itself.
func InsertBlockAndControlBlocks(g *scfg.SCFG, newBlock block.Block, preds []block.Name, successors []block.Name, ctrlVar string) ([]block.Name, error) {
	g.MustAddBlock(newBlock)
	return WireControlBlocks(g, newBlock.Name(), preds, successors, ctrlVar)
}

// WireControlBlocks is InsertBlockAndControlBlocks's wiring half, factored
// out so a caller can insert the dispatcher once and then wire two distinct
// predecessor groups to it separately (package restructure's loop-header
// merge does exactly this: predecessors of the original headers split into
// those outside the loop body, whose control blocks stay outside the
// eventual region, and those inside it — another original header's own
// re-entry edge — whose control blocks must be swept into the region
// alongside the dispatcher itself). target must already be present in g.
func WireControlBlocks(g *scfg.SCFG, target block.Name, preds []block.Name, successors []block.Name, ctrlVar string) ([]block.Name, error) {
	succIndex := make(map[block.Name]int, len(successors))
	for i, s := range successors {
		succIndex[s] = i
	}

	var created []block.Name
	for _, p := range preds {
		b, ok := g.Get(p)
		if !ok {
			return nil, &scfg.MalformedInputError{Reason: fmt.Sprintf("insert_block_and_control_blocks: predecessor %q not present", p)}
		}

		seen := make(map[block.Name]bool)
		var matches []block.Name
		for _, t := range b.JumpTargets() {
			if _, ok := succIndex[t]; ok && !seen[t] {
				seen[t] = true
				matches = append(matches, t)
			}
		}
		if len(matches) == 0 {
			return nil, &scfg.MalformedInputError{Reason: fmt.Sprintf("insert_block_and_control_blocks: predecessor %q has no jump target among %v", p, successors)}
		}

		for _, t := range matches {
			ctrlName := block.Name(g.Generator().NewBlockName(config.KindSynthAssign))
			ctrl := block.NewAssignment(ctrlName, []block.Name{target}, []block.Assignment{{Var: ctrlVar, Value: succIndex[t]}})
			g.MustAddBlock(ctrl)
			b = Retarget(b, t, ctrlName)
			created = append(created, ctrlName)
		}
		g.ReplaceBlock(b)
	}
	return created, nil
}

// InsertSyntheticExit inserts a KindSyntheticExit block as the unique
// successor of every block in preds (spec.md §4.5; gives a closed graph its
// single terminal node, distinct from any user-visible exiting payload
// block).
func InsertSyntheticExit(g *scfg.SCFG, preds []block.Name) (block.Name, error) {
	return insertTerminalSynthetic(g, preds, config.KindSynthExit, block.KindSyntheticExit)
}

// InsertSyntheticTail inserts a KindSyntheticTail block as the single
// continuation every arm of a branch region rejoins at when no natural
// post-dominating continuation exists (C8 step 2).
func InsertSyntheticTail(g *scfg.SCFG, preds []block.Name) (block.Name, error) {
	return insertTerminalSynthetic(g, preds, config.KindSynthTail, block.KindSyntheticTail)
}

// InsertSyntheticReturn inserts a KindSyntheticReturn block as the graph's
// unique exiting block (C6 join_returns). scfg.JoinReturns does not call it:
// it has its own inline copy, since package scfg cannot import scfgedit.
func InsertSyntheticReturn(g *scfg.SCFG, preds []block.Name) (block.Name, error) {
	return insertTerminalSynthetic(g, preds, config.KindSynthReturn, block.KindSyntheticReturn)
}

// insertTerminalSynthetic inserts a no-successor synthetic block of kind as
// the new target every block in preds jumps to, appending the edge (a
// no-successor synthetic has nothing to disambiguate among, so there is no
// single prior "target" value to Retarget from — the new edge is simply
// appended to each predecessor's jump targets).
func insertTerminalSynthetic(g *scfg.SCFG, preds []block.Name, nameKind string, kind block.Kind) (block.Name, error) {
	name := block.Name(g.Generator().NewBlockName(nameKind))
	g.MustAddBlock(block.NewSynthetic(kind, name, nil))

	for _, p := range preds {
		b, ok := g.Get(p)
		if !ok {
			return "", &scfg.MalformedInputError{Reason: fmt.Sprintf("insert_terminal_synthetic: predecessor %q not present", p)}
		}
		g.ReplaceBlock(b.ReplaceJumpTargets(append(append([]block.Name{}, b.JumpTargets()...), name)))
	}
	return name, nil
}

// InsertSyntheticFill inserts a KindSyntheticFill block as the entire body
// of an empty branch arm, jumping straight on to continuation (spec.md §4.5;
// C8 step 3). The caller is responsible for retargeting the branching
// block's own arm to point at the returned name; InsertSyntheticFill only
// creates the filler node itself.
func InsertSyntheticFill(g *scfg.SCFG, continuation block.Name) block.Name {
	name := block.Name(g.Generator().NewBlockName(config.KindSynthFill))
	g.MustAddBlock(block.NewSynthetic(block.KindSyntheticFill, name, []block.Name{continuation}))
	return name
}
