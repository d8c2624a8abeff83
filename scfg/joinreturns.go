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

package scfg

import (
	"sort"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/config"
)

// JoinReturns closes the graph with a unique exit (spec.md §4.6, component
// C6). If more than one block has no predecessor, the input is malformed (a
// well-formed input has exactly one entry) and an error is returned without
// modifying the graph; a non-empty graph in which every block has a
// predecessor is rejected the same way. If exactly one block has no
// effective successor and it is not the head, JoinReturns is a no-op. If no
// block is exiting, a MalformedInputError is returned. Otherwise (several
// exiting blocks, or a single block that is both head and exit) it installs
// a single SyntheticReturn block with predecessors equal to every exiting
// block and no successors of its own.
func (g *SCFG) JoinReturns() error {
	preds := g.PredecessorsIncludingBackedges()

	var heads []block.Name
	for _, n := range g.Names() {
		if len(preds[n]) == 0 {
			heads = append(heads, n)
		}
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i] < heads[j] })

	if len(heads) > 1 {
		return &MalformedInputError{Reason: "graph has more than one block with no predecessor: " + namesString(heads)}
	}
	if len(heads) == 0 && g.Len() > 0 {
		return &MalformedInputError{Reason: "graph has no block with zero predecessors (no entry)"}
	}

	var exiting []block.Name
	for _, b := range g.Blocks() {
		if b.IsExiting() {
			exiting = append(exiting, b.Name())
		}
	}
	sort.Slice(exiting, func(i, j int) bool { return exiting[i] < exiting[j] })

	if len(exiting) == 1 && (len(heads) == 0 || exiting[0] != heads[0]) {
		return nil
	}
	if len(exiting) == 0 {
		return &MalformedInputError{Reason: "graph has no exiting block (every block has a successor — unclosable cycle)"}
	}

	newName := block.Name(g.gen.NewBlockName(config.KindSynthReturn))
	g.MustAddBlock(block.NewSynthetic(block.KindSyntheticReturn, newName, nil))

	for _, e := range exiting {
		b := g.MustGet(e)
		targets := append(append([]block.Name{}, b.JumpTargets()...), newName)
		g.ReplaceBlock(b.ReplaceJumpTargets(targets))
	}
	return nil
}

func namesString(names []block.Name) string {
	s := "["
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += string(n)
	}
	return s + "]"
}
