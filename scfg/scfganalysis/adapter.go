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

// Package scfganalysis implements the read-only structural queries of the
// restructuring engine (spec.md §4.4, component C4): find_head, compute_scc,
// find_headers_and_entries, find_exiting_and_exits, is_reachable. SCFG's
// block.Name-keyed graph is domain-opaque, exactly the shape
// other_examples/584b4e91_graphism-exp__cfa-cfa.go.go builds its own custom
// node type around before handing it to gonum.org/v1/gonum/graph — so rather
// than hand-rolling Tarjan's algorithm again, this package builds the same
// kind of stable-ID adapter over *scfg.SCFG and calls graph/topo.TarjanSCC.
package scfganalysis

import (
	"sort"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/scfg"
	"gonum.org/v1/gonum/graph/simple"
)

// NodeIDs is a stable, sorted-by-name assignment of gonum node IDs to a
// graph's block names. Building it once and reusing it across a
// BuildDirected call and its callers keeps node-ID-to-name translation
// consistent for a given graph snapshot; two NodeIDs built from the same
// names always agree, since the assignment is purely a function of the
// sorted name list.
type NodeIDs struct {
	toID   map[block.Name]int64
	toName map[int64]block.Name
}

// NewNodeIDs assigns IDs 0..n-1 to g's block names in lexicographic order.
func NewNodeIDs(g *scfg.SCFG) *NodeIDs {
	names := append([]block.Name{}, g.Names()...)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	ids := &NodeIDs{
		toID:   make(map[block.Name]int64, len(names)),
		toName: make(map[int64]block.Name, len(names)),
	}
	for i, n := range names {
		ids.toID[n] = int64(i)
		ids.toName[int64(i)] = n
	}
	return ids
}

// ID returns the gonum node ID assigned to name, and whether name was known
// to this NodeIDs.
func (ids *NodeIDs) ID(name block.Name) (int64, bool) {
	id, ok := ids.toID[name]
	return id, ok
}

// Name returns the block name assigned to id, and whether id was known to
// this NodeIDs.
func (ids *NodeIDs) Name(id int64) (block.Name, bool) {
	name, ok := ids.toName[id]
	return name, ok
}

// BuildDirected builds a gonum simple.DirectedGraph mirroring g's effective
// edges (backedges excluded — see DESIGN.md's "compute_scc" discussion for
// why every consumer in this package uses effective edges uniformly, not
// just the nested case spec.md §4.4 calls out explicitly). Package
// restructure reuses this adapter for branch continuation discovery (C8),
// running graph/flow.Dominators over it exactly as
// other_examples/584b4e91_graphism-exp__cfa-cfa.go.go's struct2Way/
// find2WayFollow do.
func BuildDirected(g *scfg.SCFG, ids *NodeIDs) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for _, n := range g.Names() {
		id, _ := ids.ID(n)
		dg.AddNode(simple.Node(id))
	}
	for _, b := range g.Blocks() {
		fromID, _ := ids.ID(b.Name())
		from := simple.Node(fromID)
		for _, t := range b.EffectiveJumpTargets() {
			toID, ok := ids.ID(t)
			if !ok {
				continue
			}
			dg.SetEdge(dg.NewEdge(from, simple.Node(toID)))
		}
	}
	return dg
}
