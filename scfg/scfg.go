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

// Package scfg implements the graph container (spec.md §4.3), the
// join-returns pass (§4.6), and the textual/binary codecs (§6.1) of the
// restructuring engine. The container is a name→block mapping plus a name
// generator; structural edits (AddBlock, RemoveBlocks) never auto-rewrite
// incoming edges, matching the teacher's copy-then-mutate discipline
// (assertion/function/assertiontree/preprocess_blocks.go's copyGraph: a graph
// is handed over, a modified copy handed back, the original left alone).
package scfg

import (
	"fmt"
	"sort"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/namegen"
	"github.com/scfg-project/scfg/util/orderedmap"
)

// SCFG is a mapping from block.Name to block.Block, plus the name generator
// used to stamp any synthetic blocks/regions/variables created while editing
// this graph (spec.md §3 "Graph (SCFG)").
type SCFG struct {
	blocks *orderedmap.OrderedMap[block.Name, block.Block]
	gen    *namegen.Generator
}

// New returns an empty SCFG with a fresh name generator.
func New() *SCFG {
	return &SCFG{blocks: orderedmap.New[block.Name, block.Block](), gen: namegen.New()}
}

// NewWithGenerator returns an empty SCFG sharing gen. Subregions created
// while restructuring this graph share its generator so names stay globally
// unique across the whole nested hierarchy (package restructure relies on
// this: the generator travels down into every wrap_region call).
func NewWithGenerator(gen *namegen.Generator) *SCFG {
	if gen == nil {
		gen = namegen.New()
	}
	return &SCFG{blocks: orderedmap.New[block.Name, block.Block](), gen: gen}
}

// Generator returns the graph's name generator, for use by callers (package
// restructure, package frontend) that need to mint new block/region/variable
// names while editing this graph.
func (g *SCFG) Generator() *namegen.Generator { return g.gen }

// AddBlock inserts b, failing with a MalformedInputError if a block with the
// same name is already present (spec.md §4.3).
func (g *SCFG) AddBlock(b block.Block) error {
	if g.Contains(b.Name()) {
		return &MalformedInputError{Reason: fmt.Sprintf("duplicate block name %q", b.Name())}
	}
	g.blocks.Store(b.Name(), b)
	return nil
}

// MustAddBlock is AddBlock, panicking on error. Intended for call sites that
// have just minted a fresh name from the graph's own generator, where a
// collision would indicate an InvariantViolation (a generator bug), not a
// caller mistake.
func (g *SCFG) MustAddBlock(b block.Block) {
	if err := g.AddBlock(b); err != nil {
		panic(fmt.Sprintf("scfg: MustAddBlock: %v", err))
	}
}

// ReplaceBlock overwrites the stored block for b.Name(), which must already
// be present; it panics otherwise, since replacing a block that was never
// inserted indicates a bug in the caller's bookkeeping.
func (g *SCFG) ReplaceBlock(b block.Block) {
	if !g.Contains(b.Name()) {
		panic(fmt.Sprintf("scfg: ReplaceBlock: block %q not present", b.Name()))
	}
	g.blocks.Store(b.Name(), b)
}

// RemoveBlocks deletes the named entries. Callers must have retargeted any
// incoming edges first; there is no automatic rewrite (spec.md §4.3).
func (g *SCFG) RemoveBlocks(names ...block.Name) {
	for _, n := range names {
		g.blocks.Delete(n)
	}
}

// Get returns the block stored for name, and whether it was present.
func (g *SCFG) Get(name block.Name) (block.Block, bool) {
	return g.blocks.Load(name)
}

// MustGet is Get, panicking if name is absent.
func (g *SCFG) MustGet(name block.Name) block.Block {
	b, ok := g.blocks.Load(name)
	if !ok {
		panic(fmt.Sprintf("scfg: MustGet: block %q not present", name))
	}
	return b
}

// Contains reports whether name is present in the graph.
func (g *SCFG) Contains(name block.Name) bool {
	_, ok := g.blocks.Load(name)
	return ok
}

// Len returns the number of blocks in the graph.
func (g *SCFG) Len() int { return g.blocks.Len() }

// Names returns every block name present in the graph, in insertion order.
// It satisfies block.Graph, letting a RegionBlock carry *SCFG as its
// subregion.
func (g *SCFG) Names() []block.Name {
	out := make([]block.Name, 0, g.blocks.Len())
	for _, p := range g.blocks.Pairs {
		out = append(out, p.Key)
	}
	return out
}

// Blocks returns every block in the graph, in insertion order. Callers must
// not mutate blocks in place through the returned slice (Block is a value
// type, so this is safe by construction).
func (g *SCFG) Blocks() []block.Block {
	out := make([]block.Block, 0, g.blocks.Len())
	for _, p := range g.blocks.Pairs {
		out = append(out, p.Value)
	}
	return out
}

// Predecessors returns, for every block in the graph, the set of names that
// reference it via an effective jump target (backedges excluded). This is
// the basic building block for head/exit discovery.
func (g *SCFG) Predecessors() map[block.Name]map[block.Name]bool {
	preds := make(map[block.Name]map[block.Name]bool, g.blocks.Len())
	for _, p := range g.blocks.Pairs {
		if _, ok := preds[p.Key]; !ok {
			preds[p.Key] = make(map[block.Name]bool)
		}
	}
	for _, p := range g.blocks.Pairs {
		for _, t := range p.Value.EffectiveJumpTargets() {
			if preds[t] == nil {
				preds[t] = make(map[block.Name]bool)
			}
			preds[t][p.Key] = true
		}
	}
	return preds
}

// PredecessorsIncludingBackedges is Predecessors but counts every jump
// target, including ones marked as backedges. Used where the spec's
// invariant language is explicitly edge-based rather than effective-edge
// based (see scfg/scfganalysis.FindHead's doc comment).
func (g *SCFG) PredecessorsIncludingBackedges() map[block.Name]map[block.Name]bool {
	preds := make(map[block.Name]map[block.Name]bool, g.blocks.Len())
	for _, p := range g.blocks.Pairs {
		if _, ok := preds[p.Key]; !ok {
			preds[p.Key] = make(map[block.Name]bool)
		}
	}
	for _, p := range g.blocks.Pairs {
		for _, t := range p.Value.JumpTargets() {
			if preds[t] == nil {
				preds[t] = make(map[block.Name]bool)
			}
			preds[t][p.Key] = true
		}
	}
	return preds
}

// roots returns the names with zero predecessors (by Predecessors, i.e.
// effective edges), sorted for determinism. In a well-formed closed graph
// this is exactly the unique head; Iterate tolerates the general case (zero,
// one, or many roots) so it remains usable mid-construction, before
// join_returns has run.
func (g *SCFG) roots() []block.Name {
	preds := g.Predecessors()
	var roots []block.Name
	for _, p := range g.blocks.Pairs {
		if len(preds[p.Key]) == 0 {
			roots = append(roots, p.Key)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

// Iterate returns block names in breadth-first order starting from the
// graph's root(s), following effective jump targets in their declared order
// (spec.md §4.3). Blocks unreachable from any root are not yielded. When the
// graph is closed (single head), this is a single-source BFS from the head.
func (g *SCFG) Iterate() []block.Name {
	visited := make(map[block.Name]bool, g.blocks.Len())
	var order []block.Name
	var queue []block.Name

	for _, r := range g.roots() {
		if !visited[r] {
			visited[r] = true
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		b, ok := g.Get(n)
		if !ok {
			continue
		}
		for _, t := range b.EffectiveJumpTargets() {
			if !visited[t] {
				visited[t] = true
				queue = append(queue, t)
			}
		}
	}
	return order
}

// ConcealedRegionView returns block names in breadth-first order exactly as
// Iterate does, treating every RegionBlock as a single opaque node (spec.md
// §4.3). Because a region's subregion is a physically separate *SCFG (never
// merged into this graph's own block map — spec.md §9 "region ownership"),
// Iterate already never descends into it; ConcealedRegionView exists as a
// distinct, stable name for consumers (package render) that specifically
// want that non-descending contract documented at the call site, rather than
// relying on an implementation detail of Iterate.
func (g *SCFG) ConcealedRegionView() []block.Name {
	return g.Iterate()
}

// FlattenNames recursively collects every block name reachable by descending
// into region subregions, returning an error if the same name appears more
// than once across the whole hierarchy (spec.md §8 "Name uniqueness:
// flattening all subregions yields distinct names").
func (g *SCFG) FlattenNames() ([]block.Name, error) {
	seen := make(map[block.Name]bool)
	var out []block.Name
	var walk func(sub *SCFG) error
	walk = func(sub *SCFG) error {
		for _, p := range sub.blocks.Pairs {
			if seen[p.Key] {
				return &InvariantViolationError{
					Reason: fmt.Sprintf("name %q is not unique across the region hierarchy", p.Key),
					Blocks: []block.Name{p.Key},
				}
			}
			seen[p.Key] = true
			out = append(out, p.Key)
			if p.Value.Kind() == block.KindRegion {
				if sr, ok := p.Value.Subregion().(*SCFG); ok {
					if err := walk(sr); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	if err := walk(g); err != nil {
		return nil, err
	}
	return out, nil
}
