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

package scfganalysis

import (
	"sort"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/scfg"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// SCC is one non-trivial strongly connected component: either more than one
// block, or a single block with a self-edge (spec.md §4.4 "compute_scc").
// Members are sorted for determinism.
type SCC []block.Name

// ComputeSCC returns every non-trivial SCC of g, computed over effective
// edges (DESIGN.md's "compute_scc" entry explains why raw edges, including
// backedges, are not used even though spec.md's prose suggests it).
// Components are ordered by their lexicographically smallest member.
func ComputeSCC(g *scfg.SCFG) []SCC {
	ids := NewNodeIDs(g)
	edgesOf := func(n block.Name) []block.Name {
		b, ok := g.Get(n)
		if !ok {
			return nil
		}
		return b.EffectiveJumpTargets()
	}
	return computeSCCOverEdges(ids, g.Names(), edgesOf)
}

// ComputeSCCSubgraph is ComputeSCC restricted to the named subset: edges
// leaving the subset are discarded, as though the subset had already been
// lifted into its own subregion, without having to materialize the
// wrap_region call first.
func ComputeSCCSubgraph(g *scfg.SCFG, names []block.Name) []SCC {
	set := make(map[block.Name]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	ids := NewNodeIDs(g)
	edgesOf := func(n block.Name) []block.Name {
		b, ok := g.Get(n)
		if !ok {
			return nil
		}
		var out []block.Name
		for _, t := range b.EffectiveJumpTargets() {
			if set[t] {
				out = append(out, t)
			}
		}
		return out
	}
	return computeSCCOverEdges(ids, names, edgesOf)
}

func computeSCCOverEdges(ids *NodeIDs, names []block.Name, edgesOf func(block.Name) []block.Name) []SCC {
	dg := simple.NewDirectedGraph()
	for _, n := range names {
		id, _ := ids.ID(n)
		dg.AddNode(simple.Node(id))
	}
	for _, n := range names {
		fromID, _ := ids.ID(n)
		from := simple.Node(fromID)
		for _, t := range edgesOf(n) {
			toID, ok := ids.ID(t)
			if !ok {
				continue
			}
			dg.SetEdge(dg.NewEdge(from, simple.Node(toID)))
		}
	}

	var out []SCC
	for _, comp := range topo.TarjanSCC(dg) {
		selfLoop := false
		if len(comp) == 1 {
			name, _ := ids.Name(comp[0].ID())
			for _, t := range edgesOf(name) {
				if t == name {
					selfLoop = true
					break
				}
			}
		}
		if len(comp) < 2 && !selfLoop {
			continue
		}
		members := make(SCC, len(comp))
		for i, node := range comp {
			members[i], _ = ids.Name(node.ID())
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
