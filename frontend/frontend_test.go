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

package frontend_test

import (
	"testing"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/frontend"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFromInstructionsBuildsPayloadBlocks(t *testing.T) {
	t.Parallel()

	g, err := frontend.FromInstructions([]frontend.Instruction{
		{Name: "A", Successors: []block.Name{"B"}, Begin: 0, End: 4},
		{Name: "B", Successors: nil, Begin: 4, End: 8, Payload: "return"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())

	a := g.MustGet("A")
	require.Equal(t, block.KindPayload, a.Kind())
	require.Equal(t, []block.Name{"B"}, a.JumpTargets())
	rangeA, ok := a.Payload().(frontend.Range)
	require.True(t, ok)
	require.Equal(t, 0, rangeA.Begin)
	require.Equal(t, 4, rangeA.End)

	b := g.MustGet("B")
	rangeB := b.Payload().(frontend.Range)
	require.Equal(t, "return", rangeB.Body)
}

func TestFromInstructionsRejectsDanglingSuccessor(t *testing.T) {
	t.Parallel()

	_, err := frontend.FromInstructions([]frontend.Instruction{
		{Name: "A", Successors: []block.Name{"Ghost"}},
	})
	require.Error(t, err)
}

func TestFromInstructionsRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	_, err := frontend.FromInstructions([]frontend.Instruction{
		{Name: "A"},
		{Name: "A"},
	})
	require.Error(t, err)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
