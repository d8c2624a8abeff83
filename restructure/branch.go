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

package restructure

import (
	"sort"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/config"
	"github.com/scfg-project/scfg/scfg"
	"github.com/scfg-project/scfg/scfg/scfganalysis"
	"github.com/scfg-project/scfg/scfg/scfgedit"
	"gonum.org/v1/gonum/graph/flow"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// RestructureBranches runs branch restructuring (spec.md §4.8, component C8)
// over the acyclic skeleton remaining after loop restructuring (every cycle
// by that point is sealed inside a loop RegionBlock, so g itself is acyclic
// at this level). Every block with two or more effective successors is
// wrapped into a branch RegionBlock whose interior is single-entry/
// single-exit. Blocks are visited bottom-up in reverse topological order
// (spec.md §4.8 "Ordering") so inner branches wrap before the ones enclosing
// them; the order is computed once up front, which is safe because a freshly
// wrapped branch region always ends up with exactly one effective successor
// (its continuation) and so never itself needs treating as a further branch
// head at this level — only pre-existing RegionBlocks (installed by loop
// restructuring, whose own external successors may still number two or more
// when a loop has multiple distinct exits, spec.md §8 scenario 4) can, and
// those already exist when the order is computed.
func RestructureBranches(g *scfg.SCFG) error {
	order, err := reverseTopoOrder(g)
	if err != nil {
		return err
	}

	for _, h := range order {
		b, ok := g.Get(h)
		if !ok {
			continue
		}
		succ := b.EffectiveJumpTargets()
		if len(succ) < 2 {
			continue
		}

		regionName, err := restructureOneBranch(g, h, succ)
		if err != nil {
			return err
		}
		region := g.MustGet(regionName)
		if sub, ok := region.Subregion().(*scfg.SCFG); ok {
			if err := RestructureBranches(sub); err != nil {
				return err
			}
		}
	}

	for _, n := range g.Names() {
		b, ok := g.Get(n)
		if !ok || b.Kind() != block.KindRegion {
			continue
		}
		sub, ok := b.Subregion().(*scfg.SCFG)
		if !ok {
			continue
		}
		if err := RestructureBranches(sub); err != nil {
			return err
		}
	}
	return nil
}

// reverseTopoOrder returns g's block names in reverse topological order
// (successors before predecessors), using gonum/graph/topo.Sort over the
// effective-edge adapter graph. g must be acyclic at this level; Sort
// returns an Unorderable error otherwise, which is surfaced as an
// InvariantViolation (branch restructuring must never see an un-wrapped
// cycle — loop restructuring guarantees that).
func reverseTopoOrder(g *scfg.SCFG) ([]block.Name, error) {
	ids := scfganalysis.NewNodeIDs(g)
	dg := scfganalysis.BuildDirected(g, ids)
	sorted, err := topo.Sort(dg)
	if err != nil {
		return nil, &scfg.InvariantViolationError{Reason: "branch restructuring found a cycle not sealed inside a loop region: " + err.Error()}
	}
	out := make([]block.Name, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		name, ok := ids.Name(sorted[i].ID())
		if ok {
			out = append(out, name)
		}
	}
	return out, nil
}

// restructureOneBranch normalizes and wraps the branch headed by h (spec.md
// §4.8 steps 1–5), returning the name of the RegionBlock it installed in g.
func restructureOneBranch(g *scfg.SCFG, h block.Name, succ []block.Name) (block.Name, error) {
	continuation, hasNatural, err := findContinuation(g, h, succ)
	if err != nil {
		return "", err
	}

	sSet := make(map[block.Name]bool, len(succ))
	for _, s := range succ {
		sSet[s] = true
	}

	otherArms := func(self block.Name) map[block.Name]bool {
		m := make(map[block.Name]bool, len(succ))
		for _, s := range succ {
			if s != self {
				m[s] = true
			}
		}
		return m
	}

	var union []block.Name
	for _, s := range succ {
		if hasNatural && s == continuation {
			continue // empty arm, repaired below
		}
		stop := otherArms(s)
		stop[h] = true
		if hasNatural {
			stop[continuation] = true
		}
		union = append(union, reachableBody(g, s, stop)...)
	}
	union = dedupNames(union)

	// Step 3: empty-arm repair. A natural continuation equal to one of h's
	// literal jump-target values means that arm has no body at all.
	if hasNatural && sSet[continuation] {
		fillName := scfgedit.InsertSyntheticFill(g, continuation)
		hBlk := g.MustGet(h)
		g.ReplaceBlock(scfgedit.Retarget(hBlk, continuation, fillName))
		union = append(union, fillName)
	}

	var exitingName block.Name

	if !hasNatural {
		// No block post-dominates every arm: the branches never reconverge
		// within this graph. Synthesize a terminal SyntheticTail swallowing
		// every real exit of the combined body (spec.md §4.8 step 2); the
		// region built around it has no further external successor.
		exitingMembers, _ := scfganalysis.FindExitingAndExits(g, union)
		if len(exitingMembers) == 0 {
			exitingMembers = []block.Name{h}
		}
		tailName, err := scfgedit.InsertSyntheticTail(g, exitingMembers)
		if err != nil {
			return "", err
		}
		union = append(union, tailName)
		exitingName = tailName
	} else {
		// Step 4: multi-exit repair, applied to the combined interior
		// (⋃R_i), not per arm — the region's block model allows exactly one
		// interior `exiting` name, so two independently-exiting arms (the
		// diamond case, spec.md §8 scenario 2, has two: B and C) must merge
		// into one even though neither arm individually has more than one
		// exiting block.
		exitingMembers, exits := scfganalysis.FindExitingAndExits(g, union)
		if len(exitingMembers) == 0 {
			return "", &scfg.InvariantViolationError{Reason: "branch body has no exiting block", Blocks: union}
		}
		distinctTargets := dedupValues(exits, exitingMembers)

		if len(exitingMembers) > 1 || len(distinctTargets) > 1 {
			mergeName := block.Name(g.Generator().NewBlockName(config.KindSynthExitBranch))
			if len(distinctTargets) == 1 {
				merge := block.NewSynthetic(block.KindSyntheticExitBranch, mergeName, []block.Name{distinctTargets[0]})
				if err := scfgedit.InsertBlock(g, merge, exitingMembers, distinctTargets[0]); err != nil {
					return "", err
				}
			} else {
				merge := block.NewSynthetic(block.KindSyntheticExitBranch, mergeName, distinctTargets)
				ctrlVar := g.Generator().NewVarName(config.ControlVar)
				ctrlBlocks, err := scfgedit.InsertBlockAndControlBlocks(g, merge, exitingMembers, distinctTargets, ctrlVar)
				if err != nil {
					return "", err
				}
				union = append(union, ctrlBlocks...)
			}
			union = append(union, mergeName)
			exitingName = mergeName
		} else {
			exitingName = exitingMembers[0]
		}
	}

	members := append([]block.Name{h}, union...)
	return WrapRegion(g, members, block.RegionBranch, h, exitingName)
}

// reachableBody returns the (unsorted) set of names reachable from start
// over effective edges without crossing into any name in stop (start itself
// is never in stop by construction of its caller). A name not present in g
// at all — one of h's raw jump targets can point outside g's own member set
// once h has been copied into a region's subregion without its targets being
// rewritten (WrapRegion only rewrites references held by blocks staying
// behind in the parent, never the targets carried by blocks moving in) — is
// never added to the returned body: such a name is, by construction, not a
// block this graph can wrap into its own region, only something the region
// as a whole escapes to, one level up, via its own eventual exiting member.
func reachableBody(g *scfg.SCFG, start block.Name, stop map[block.Name]bool) []block.Name {
	if !g.Contains(start) {
		return nil
	}
	visited := map[block.Name]bool{start: true}
	var order []block.Name
	stack := []block.Name{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b, ok := g.Get(n)
		if !ok {
			continue
		}
		order = append(order, n)
		for _, t := range b.EffectiveJumpTargets() {
			if stop[t] || visited[t] || !g.Contains(t) {
				continue
			}
			visited[t] = true
			stack = append(stack, t)
		}
	}
	return order
}

// dedupNames returns names with duplicates removed, sorted for determinism.
func dedupNames(names []block.Name) []block.Name {
	seen := make(map[block.Name]bool, len(names))
	var out []block.Name
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// findContinuation locates the block that post-dominates every member of
// succ (spec.md §4.8 step 2), grounded directly on
// other_examples/584b4e91_graphism-exp__cfa-cfa.go.go's find2WayFollow: the
// node immediately dominated by h (in the forward dominator tree rooted at
// g's unique head) with two or more predecessors, generalized here from a
// strictly 2-way branch to an n-way one. It reports false if no such node
// exists (branches leave the enclosing region without reconverging).
//
// idom(n) == h and indegree(n) >= 2 alone are not sufficient once succ has
// three or more members: with h:[s1,s2,s3], s1->a, s2->a, s3->b, a->x, b->x,
// both a and x satisfy that filter (each is immediately dominated by h with
// two distinct predecessors), but only x is actually reachable from every
// member of succ — s3 never reaches a at all, so a is not a continuation of
// the s3 arm, let alone of all three. Candidates are therefore additionally
// required to lie in the intersection of the sets reachable (over effective
// edges) from every member of succ; in a well-formed dominator tree this
// leaves exactly one survivor (a node reachable from only some arms always
// has an immediate dominator other than h, namely the first point some
// subset of the arms already merged at, so it cannot also pass the idom==h
// test), but the result is still sorted by name for determinism in case of
// ties.
func findContinuation(g *scfg.SCFG, h block.Name, succ []block.Name) (block.Name, bool, error) {
	head, err := scfganalysis.FindHead(g)
	if err != nil {
		return "", false, err
	}

	ids := scfganalysis.NewNodeIDs(g)
	dg := scfganalysis.BuildDirected(g, ids)
	rootID, ok := ids.ID(head)
	if !ok {
		return "", false, &scfg.InvariantViolationError{Reason: "graph head not present in node-ID adapter", Blocks: []block.Name{head}}
	}
	hID, ok := ids.ID(h)
	if !ok {
		return "", false, &scfg.InvariantViolationError{Reason: "branch head not present in node-ID adapter", Blocks: []block.Name{h}}
	}

	domtree := flow.Dominators(simple.Node(rootID), dg)
	preds := g.Predecessors()

	reachableFromAll := reachableFromEvery(g, succ)

	var candidates []block.Name
	for _, n := range g.Names() {
		nID, ok := ids.ID(n)
		if !ok {
			continue
		}
		idom := domtree.DominatorOf(nID)
		if idom == nil || idom.ID() != hID {
			continue
		}
		if len(preds[n]) < 2 {
			continue
		}
		if !reachableFromAll[n] {
			continue
		}
		candidates = append(candidates, n)
	}
	if len(candidates) == 0 {
		return "", false, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	return candidates[0], true, nil
}

// reachableFromEvery returns the set of names reachable (over effective
// edges, including each starting name itself) from every member of starts.
func reachableFromEvery(g *scfg.SCFG, starts []block.Name) map[block.Name]bool {
	var result map[block.Name]bool
	for i, s := range starts {
		reached := forwardReachable(g, s)
		if i == 0 {
			result = reached
			continue
		}
		for n := range result {
			if !reached[n] {
				delete(result, n)
			}
		}
	}
	return result
}

// forwardReachable returns every name reachable from start (inclusive) over
// effective edges, never admitting a name absent from g itself (see
// reachableBody's doc comment for why that matters).
func forwardReachable(g *scfg.SCFG, start block.Name) map[block.Name]bool {
	visited := make(map[block.Name]bool)
	if !g.Contains(start) {
		return visited
	}
	visited[start] = true
	stack := []block.Name{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b, ok := g.Get(n)
		if !ok {
			continue
		}
		for _, t := range b.EffectiveJumpTargets() {
			if visited[t] || !g.Contains(t) {
				continue
			}
			visited[t] = true
			stack = append(stack, t)
		}
	}
	return visited
}
