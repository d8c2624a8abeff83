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

package restructure_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/restructure"
	"github.com/scfg-project/scfg/scfg"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestRestructureSimpleLoopWrapsSingleHeaderSingleLatch covers the ordinary
// case: one header, one latch, no merge machinery needed at all.
func TestRestructureSimpleLoopWrapsSingleHeaderSingleLatch(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("Entry", []block.Name{"H"}, nil))
	g.MustAddBlock(block.NewPayload("H", []block.Name{"Body", "Exit"}, nil))
	g.MustAddBlock(block.NewPayload("Body", []block.Name{"H"}, nil))
	g.MustAddBlock(block.NewPayload("Exit", nil, nil))

	require.NoError(t, restructure.Restructure(g))

	loopRegionName := findRegion(t, g, block.RegionLoop)
	region := g.MustGet(loopRegionName)
	require.Equal(t, block.Name("H"), region.Header())

	sub, ok := region.Subregion().(*scfg.SCFG)
	require.True(t, ok)
	require.True(t, sub.Contains("H"))
	require.True(t, sub.Contains("Body"))
}

// TestRestructureIrreducibleTwoEntryLoop covers the Bahmann et al. fig. 3
// shape: two headers B and C, each reachable from outside (A) and each
// re-entering the other directly, converging on a single exiting latch that
// leaves the loop entirely. This is the scenario that originally exposed the
// bug in header-merge predecessor splitting: without redirecting B and C's
// mutual re-entry edges through the new SyntheticHead, the latch's edge to
// the (old) header it actually targets would never get marked as a
// backedge, and the body would stay cyclic.
func TestRestructureIrreducibleTwoEntryLoop(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", []block.Name{"B", "C"}, nil))
	g.MustAddBlock(block.NewPayload("B", []block.Name{"C", "Latch"}, nil))
	g.MustAddBlock(block.NewPayload("C", []block.Name{"B", "Latch"}, nil))
	g.MustAddBlock(block.NewPayload("Latch", []block.Name{"B", "Exit"}, nil))
	g.MustAddBlock(block.NewPayload("Exit", nil, nil))

	require.NoError(t, restructure.Restructure(g))

	loopRegionName := findRegion(t, g, block.RegionLoop)
	region := g.MustGet(loopRegionName)

	sub, ok := region.Subregion().(*scfg.SCFG)
	require.True(t, ok)

	// The new dispatcher is the single header; both original headers and
	// the latch all moved into the subregion alongside it.
	require.NotEqual(t, block.Name("B"), region.Header())
	require.NotEqual(t, block.Name("C"), region.Header())
	require.True(t, sub.Contains("B"))
	require.True(t, sub.Contains("C"))
	require.True(t, sub.Contains("Latch"))
	require.True(t, sub.Contains(region.Header()))

	// The region's single external successor is Exit.
	require.Equal(t, []block.Name{"Exit"}, g.MustGet(loopRegionName).JumpTargets())
}

// TestRestructureMultiExitLoopMergesLatches covers Bahmann et al. fig. 4
// (spec.md §8 scenario 4): a loop with two distinct blocks each able to
// leave to a distinct external target, requiring a SyntheticExitingLatch
// merge.
func TestRestructureMultiExitLoopMergesLatches(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("Entry", []block.Name{"H"}, nil))
	g.MustAddBlock(block.NewPayload("H", []block.Name{"Left", "Right"}, nil))
	g.MustAddBlock(block.NewPayload("Left", []block.Name{"H", "ExitA"}, nil))
	g.MustAddBlock(block.NewPayload("Right", []block.Name{"H", "ExitB"}, nil))
	g.MustAddBlock(block.NewPayload("ExitA", nil, nil))
	g.MustAddBlock(block.NewPayload("ExitB", nil, nil))

	require.NoError(t, restructure.Restructure(g))

	loopRegionName := findRegion(t, g, block.RegionLoop)
	region := g.MustGet(loopRegionName)
	require.Equal(t, block.Name("H"), region.Header())

	exits := region.JumpTargets()
	require.Len(t, exits, 2)
	require.ElementsMatch(t, []block.Name{"ExitA", "ExitB"}, exits)
}

// TestRestructureDiamondBranchMergesExits covers spec.md §8 scenario 2: two
// independently-exiting arms (B and C) of one branch merge into a single
// interior exiting block even though neither arm alone has more than one.
func TestRestructureDiamondBranchMergesExits(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", []block.Name{"B", "C"}, nil))
	g.MustAddBlock(block.NewPayload("B", []block.Name{"D"}, nil))
	g.MustAddBlock(block.NewPayload("C", []block.Name{"D"}, nil))
	g.MustAddBlock(block.NewPayload("D", nil, nil))

	require.NoError(t, restructure.Restructure(g))

	branchRegionName := findRegion(t, g, block.RegionBranch)
	region := g.MustGet(branchRegionName)
	require.Equal(t, block.Name("A"), region.Header())

	sub, ok := region.Subregion().(*scfg.SCFG)
	require.True(t, ok)
	require.True(t, sub.Contains("B"))
	require.True(t, sub.Contains("C"))
}

// TestRestructureThreeWayBranchPicksTrueContinuation covers a 3-way branch
// where two arms (S1, S2) merge at an intermediate block (Mid) before any of
// the three arms reach the actual continuation (X): Mid is immediately
// dominated by H and has two predecessors, same as X, but S3 never reaches
// Mid at all, so Mid must not be picked as the continuation in its place.
func TestRestructureThreeWayBranchPicksTrueContinuation(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("H", []block.Name{"S1", "S2", "S3"}, nil))
	g.MustAddBlock(block.NewPayload("S1", []block.Name{"Mid"}, nil))
	g.MustAddBlock(block.NewPayload("S2", []block.Name{"Mid"}, nil))
	g.MustAddBlock(block.NewPayload("S3", []block.Name{"Tail"}, nil))
	g.MustAddBlock(block.NewPayload("Mid", []block.Name{"X"}, nil))
	g.MustAddBlock(block.NewPayload("Tail", []block.Name{"X"}, nil))
	g.MustAddBlock(block.NewPayload("X", nil, nil))

	require.NoError(t, restructure.Restructure(g))

	branchRegionName := findRegion(t, g, block.RegionBranch)
	region := g.MustGet(branchRegionName)
	require.Equal(t, block.Name("H"), region.Header())

	sub, ok := region.Subregion().(*scfg.SCFG)
	require.True(t, ok)
	require.True(t, sub.Contains("S1"))
	require.True(t, sub.Contains("S2"))
	require.True(t, sub.Contains("S3"))
	require.True(t, sub.Contains("Mid"))
	require.True(t, sub.Contains("Tail"))

	// X is the region's external continuation, never folded into the branch
	// body itself — the bug under test would have picked Mid as the
	// continuation instead, leaving S3's arm (which never reaches Mid)
	// unable to be wrapped into the same region at all.
	require.False(t, sub.Contains("X"))
	require.Equal(t, []block.Name{"X"}, region.JumpTargets())
}

// TestRestructureEmptyBranchArmGetsSyntheticFill covers step 3: a branch arm
// whose jump target is literally the natural continuation has no body of
// its own and gets a SyntheticFill inserted to stand in for it.
func TestRestructureEmptyBranchArmGetsSyntheticFill(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", []block.Name{"B", "Cont"}, nil))
	g.MustAddBlock(block.NewPayload("B", []block.Name{"Cont"}, nil))
	g.MustAddBlock(block.NewPayload("Cont", nil, nil))

	require.NoError(t, restructure.Restructure(g))

	branchRegionName := findRegion(t, g, block.RegionBranch)
	region := g.MustGet(branchRegionName)

	sub, ok := region.Subregion().(*scfg.SCFG)
	require.True(t, ok)

	foundFill := false
	for _, n := range sub.Names() {
		if sub.MustGet(n).Kind() == block.KindSyntheticFill {
			foundFill = true
		}
	}
	require.True(t, foundFill)
}

// TestRestructureForLoopWithEarlyBreak covers spec.md §8 scenario 5: a loop
// whose body contains a branch that either continues the loop or breaks out
// to a distinct exit, producing a branch region nested inside a loop region.
func TestRestructureForLoopWithEarlyBreak(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("Entry", []block.Name{"H"}, nil))
	g.MustAddBlock(block.NewPayload("H", []block.Name{"Check", "AfterLoop"}, nil))
	g.MustAddBlock(block.NewPayload("Check", []block.Name{"Body", "Break"}, nil))
	g.MustAddBlock(block.NewPayload("Body", []block.Name{"H"}, nil))
	g.MustAddBlock(block.NewPayload("Break", []block.Name{"AfterLoop"}, nil))
	g.MustAddBlock(block.NewPayload("AfterLoop", nil, nil))

	require.NoError(t, restructure.Restructure(g))

	loopRegionName := findRegion(t, g, block.RegionLoop)
	loopRegion := g.MustGet(loopRegionName)
	sub, ok := loopRegion.Subregion().(*scfg.SCFG)
	require.True(t, ok)

	foundNestedBranch := false
	for _, n := range sub.Names() {
		if sub.MustGet(n).Kind() == block.KindRegion && sub.MustGet(n).RegionKind() == block.RegionBranch {
			foundNestedBranch = true
		}
	}
	require.True(t, foundNestedBranch)
}

// TestRestructureConvergesOnAlreadyStructuredGraph covers the degenerate
// case Restructure's outer pass loop exists to guard: a graph that is
// already fully structured (a single block) should converge after one pass
// with no panics or spurious regions, exercising join_returns's single-
// block-no-edges case end to end.
func TestRestructureConvergesOnAlreadyStructuredGraph(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", nil, nil))

	require.NoError(t, restructure.Restructure(g))
	require.Equal(t, 2, g.Len())
}

// TestRestructureIsDeterministicAcrossIndependentRuns builds two separate
// *scfg.SCFG graphs from the same construction sequence (not the same
// object, so namegen counters, ordered-map insertion order, and the whole
// Restructure pipeline all run twice independently) and asserts their
// dict projections are structurally identical via cmp.Diff, rather than
// via testify's require.Equal — this is the property the go-cmp dependency
// exists for (SPEC_FULL.md §0's "deep structural comparisons of graphs in
// place of reflect.DeepEqual"): the same restructuring inputs must always
// produce the same synthetic names, region nesting, and edges, regardless
// of which *scfg.SCFG value ran them.
func TestRestructureIsDeterministicAcrossIndependentRuns(t *testing.T) {
	t.Parallel()

	build := func() *scfg.SCFG {
		g := scfg.New()
		g.MustAddBlock(block.NewPayload("A", []block.Name{"B", "C"}, nil))
		g.MustAddBlock(block.NewPayload("B", []block.Name{"Loop"}, nil))
		g.MustAddBlock(block.NewPayload("C", []block.Name{"Loop"}, nil))
		g.MustAddBlock(block.NewPayload("Loop", []block.Name{"Loop", "Exit"}, nil))
		g.MustAddBlock(block.NewPayload("Exit", nil, nil))
		return g
	}

	g1 := build()
	g2 := build()
	require.NoError(t, restructure.Restructure(g1))
	require.NoError(t, restructure.Restructure(g2))

	diff := cmp.Diff(g1.ToDict(), g2.ToDict())
	require.Empty(t, diff, "independent Restructure runs over the same input diverged:\n%s", diff)
}

// TestRestructureRejectsUnreachableBlock covers spec.md §7: a block present
// in the graph but unreachable from the head is surfaced as a
// scfg.UnreachableBlockError rather than silently ignored or allowed to
// confuse a later pass (e.g. compute_scc, which only reasons about the
// component containing the head).
func TestRestructureRejectsUnreachableBlock(t *testing.T) {
	t.Parallel()

	// Dead loops on itself, so it has a predecessor and is not a second head
	// (which would be malformed input instead).
	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", nil, nil))
	g.MustAddBlock(block.NewPayload("Dead", []block.Name{"Dead"}, nil))

	err := restructure.Restructure(g)
	require.Error(t, err)
	var unreachable *scfg.UnreachableBlockError
	require.ErrorAs(t, err, &unreachable)
	require.Equal(t, []block.Name{"Dead"}, unreachable.Blocks)
}

func findRegion(t *testing.T, g *scfg.SCFG, kind block.RegionKind) block.Name {
	t.Helper()
	for _, n := range g.Names() {
		b := g.MustGet(n)
		if b.Kind() == block.KindRegion && b.RegionKind() == kind {
			return n
		}
	}
	t.Fatalf("no region of kind %v found among top-level blocks %v", kind, g.Names())
	return ""
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
