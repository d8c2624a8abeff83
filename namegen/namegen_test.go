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

package namegen_test

import (
	"testing"

	"github.com/scfg-project/scfg/namegen"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewBlockName(t *testing.T) {
	t.Parallel()

	g := namegen.New()
	require.Equal(t, "synth_head_0", g.NewBlockName("synth_head"))
	require.Equal(t, "synth_head_1", g.NewBlockName("synth_head"))
	require.Equal(t, "synth_latch_0", g.NewBlockName("synth_latch"))
	require.Equal(t, "synth_head_2", g.NewBlockName("synth_head"))
}

func TestNewRegionName(t *testing.T) {
	t.Parallel()

	g := namegen.New()
	require.Equal(t, "loop_region_0", g.NewRegionName("loop"))
	require.Equal(t, "branch_region_0", g.NewRegionName("branch"))
	require.Equal(t, "loop_region_1", g.NewRegionName("loop"))

	// Region names and block names for the same kind tag are tracked by
	// independent counters (the "_region" suffix is folded into the kind key).
	require.Equal(t, "loop_0", g.NewBlockName("loop"))
}

func TestNewVarName(t *testing.T) {
	t.Parallel()

	g := namegen.New()
	require.Equal(t, "__ctrl___var_0", g.NewVarName("__ctrl__"))
	require.Equal(t, "__ctrl___var_1", g.NewVarName("__ctrl__"))
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var g namegen.Generator
	require.Equal(t, "synth_fill_0", g.NewBlockName("synth_fill"))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
