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

package render_test

import (
	"strings"
	"testing"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/render"
	"github.com/scfg-project/scfg/restructure"
	"github.com/scfg-project/scfg/scfg"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRenderEmitsEveryBlockName(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("A", []block.Name{"B"}, nil))
	g.MustAddBlock(block.NewPayload("B", nil, nil))

	text, err := render.Render(g, "root")
	require.NoError(t, err)
	require.Contains(t, text, "A")
	require.Contains(t, text, "B")
}

func TestRenderAllDescendsIntoRegions(t *testing.T) {
	t.Parallel()

	g := scfg.New()
	g.MustAddBlock(block.NewPayload("Entry", []block.Name{"H"}, nil))
	g.MustAddBlock(block.NewPayload("H", []block.Name{"Body", "Exit"}, nil))
	g.MustAddBlock(block.NewPayload("Body", []block.Name{"H"}, nil))
	g.MustAddBlock(block.NewPayload("Exit", nil, nil))
	require.NoError(t, restructure.Restructure(g))

	docs, err := render.RenderAll(g)
	require.NoError(t, err)
	require.Contains(t, docs, "root")

	foundNested := false
	for path, text := range docs {
		if path != "root" && strings.Contains(text, "H") {
			foundNested = true
		}
	}
	require.True(t, foundNested)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
