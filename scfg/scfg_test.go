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

package scfg_test

import (
	"testing"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/scfg"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func diamond() *scfg.SCFG {
	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", []block.Name{"B", "C"}, nil))
	g.MustAddBlock(block.NewPayload("B", []block.Name{"D"}, nil))
	g.MustAddBlock(block.NewPayload("C", []block.Name{"D"}, nil))
	g.MustAddBlock(block.NewPayload("D", nil, nil))
	return g
}

func TestAddBlockRejectsDuplicates(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	require.NoError(t, g.AddBlock(block.NewPayload("A", nil, nil)))
	err := g.AddBlock(block.NewPayload("A", nil, nil))
	require.Error(t, err)
	require.IsType(t, &scfg.MalformedInputError{}, err)
}

func TestMustAddBlockPanicsOnDuplicate(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", nil, nil))
	require.Panics(t, func() { g.MustAddBlock(block.NewPayload("A", nil, nil)) })
}

func TestReplaceBlockPanicsIfAbsent(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	require.Panics(t, func() { g.ReplaceBlock(block.NewPayload("A", nil, nil)) })
}

func TestRemoveBlocksRequiresCallerToRetarget(t *testing.T) {
	t.Parallel()

	g := diamond()
	g.RemoveBlocks("C")
	require.False(t, g.Contains("C"))
	// A still jump-targets the now-absent C; RemoveBlocks never rewrites
	// incoming edges automatically (spec.md §4.3).
	a := g.MustGet("A")
	require.Equal(t, []block.Name{"B", "C"}, a.JumpTargets())
}

func TestIterateIsDeterministicBFS(t *testing.T) {
	t.Parallel()

	g := diamond()
	require.Equal(t, []block.Name{"A", "B", "C", "D"}, g.Iterate())
}

func TestIterateExcludesBackedges(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", []block.Name{"B"}, nil))
	loop := block.NewPayload("B", []block.Name{"A", "C"}, nil).ReplaceBackedge("A")
	g.MustAddBlock(loop)
	g.MustAddBlock(block.NewPayload("C", nil, nil))

	require.Equal(t, []block.Name{"A", "B", "C"}, g.Iterate())
}

func TestConcealedRegionViewMatchesIterate(t *testing.T) {
	t.Parallel()

	g := diamond()
	require.Equal(t, g.Iterate(), g.ConcealedRegionView())
}

func TestFlattenNamesDetectsCollisionAcrossRegions(t *testing.T) {
	t.Parallel()

	inner := scfg.New()
	inner.MustAddBlock(block.NewPayload("A", nil, nil))

	outer := scfg.New()
	outer.MustAddBlock(block.NewPayload("A", []block.Name{"R"}, nil))
	outer.MustAddBlock(block.NewRegion("R", block.RegionMeta, "A", inner, "A", nil))

	_, err := outer.FlattenNames()
	require.Error(t, err)
	require.IsType(t, &scfg.InvariantViolationError{}, err)
}

func TestFlattenNamesOkWhenDistinct(t *testing.T) {
	t.Parallel()

	inner := scfg.New()
	inner.MustAddBlock(block.NewPayload("Inner_A", nil, nil))

	outer := scfg.New()
	outer.MustAddBlock(block.NewPayload("Outer_A", []block.Name{"R"}, nil))
	outer.MustAddBlock(block.NewRegion("R", block.RegionMeta, "Inner_A", inner, "Inner_A", nil))

	names, err := outer.FlattenNames()
	require.NoError(t, err)
	require.ElementsMatch(t, []block.Name{"Outer_A", "R", "Inner_A"}, names)
}

func TestGeneratorSharedAcrossSubregions(t *testing.T) {
	t.Parallel()

	parent := scfg.New()
	child := scfg.NewWithGenerator(parent.Generator())
	require.Same(t, parent.Generator(), child.Generator())
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
