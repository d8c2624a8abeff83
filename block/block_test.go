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

package block_test

import (
	"testing"

	"github.com/scfg-project/scfg/block"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestIsExitingAndFallthrough(t *testing.T) {
	t.Parallel()

	noTargets := block.NewPayload("A", nil, nil)
	require.True(t, noTargets.IsExiting())
	require.False(t, noTargets.Fallthrough())

	oneTarget := block.NewPayload("A", []block.Name{"B"}, nil)
	require.False(t, oneTarget.IsExiting())
	require.True(t, oneTarget.Fallthrough())

	twoTargets := block.NewPayload("A", []block.Name{"B", "C"}, nil)
	require.False(t, twoTargets.IsExiting())
	require.False(t, twoTargets.Fallthrough())
}

func TestEffectiveJumpTargetsExcludesBackedges(t *testing.T) {
	t.Parallel()

	b := block.NewPayload("A", []block.Name{"B", "C"}, nil)
	b = b.ReplaceBackedge("B")

	require.Equal(t, []block.Name{"B", "C"}, b.JumpTargets())
	require.Equal(t, []block.Name{"C"}, b.EffectiveJumpTargets())
	require.True(t, b.IsBackedge("B"))
	require.False(t, b.IsBackedge("C"))
	require.True(t, b.Fallthrough())
}

func TestReplaceBackedgePanicsOnUnknownTarget(t *testing.T) {
	t.Parallel()

	b := block.NewPayload("A", []block.Name{"B"}, nil)
	require.Panics(t, func() { b.ReplaceBackedge("Z") })
}

func TestReplaceJumpTargetsDropsStaleBackedges(t *testing.T) {
	t.Parallel()

	b := block.NewPayload("A", []block.Name{"B", "C"}, nil)
	b = b.ReplaceBackedge("B")
	b = b.ReplaceJumpTargets([]block.Name{"C", "D"})

	require.False(t, b.IsBackedge("B"))
	require.Equal(t, []block.Name{"C", "D"}, b.EffectiveJumpTargets())
}

func TestReplaceJumpTargetsIsImmutable(t *testing.T) {
	t.Parallel()

	original := block.NewPayload("A", []block.Name{"B"}, nil)
	modified := original.ReplaceJumpTargets([]block.Name{"C"})

	require.Equal(t, []block.Name{"B"}, original.JumpTargets())
	require.Equal(t, []block.Name{"C"}, modified.JumpTargets())
}

func TestNewSyntheticRejectsNonSyntheticKind(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { block.NewSynthetic(block.KindPayload, "A", nil) })
	require.NotPanics(t, func() { block.NewSynthetic(block.KindSyntheticFill, "A", nil) })
}

func TestKindStringRoundTrip(t *testing.T) {
	t.Parallel()

	kinds := []block.Kind{
		block.KindPayload, block.KindSyntheticExit, block.KindSyntheticReturn,
		block.KindSyntheticTail, block.KindSyntheticFill, block.KindSyntheticHead,
		block.KindSyntheticExitBranch, block.KindSyntheticExitingLatch,
		block.KindSyntheticAssign, block.KindRegion,
	}
	for _, k := range kinds {
		parsed, ok := block.KindFromString(k.String())
		require.True(t, ok, k.String())
		require.Equal(t, k, parsed)
	}

	_, ok := block.KindFromString("NotARealKind")
	require.False(t, ok)
}

func TestRegionKindStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range []block.RegionKind{block.RegionLoop, block.RegionBranch, block.RegionMeta} {
		parsed, ok := block.RegionKindFromString(k.String())
		require.True(t, ok)
		require.Equal(t, k, parsed)
	}

	_, ok := block.RegionKindFromString("nope")
	require.False(t, ok)
}

func TestAssignmentBlock(t *testing.T) {
	t.Parallel()

	b := block.NewAssignment("synth_assign_0", []block.Name{"H"}, []block.Assignment{
		{Var: "__ctrl__", Value: 1},
	})
	require.Equal(t, block.KindSyntheticAssign, b.Kind())
	require.Equal(t, []block.Assignment{{Var: "__ctrl__", Value: 1}}, b.Assignment())
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
