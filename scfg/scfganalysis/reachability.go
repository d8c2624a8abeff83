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
)

// IsReachableDFS reports whether to is reachable from from, following
// effective jump targets (spec.md §4.4 "is_reachable"). This is a single
// yes/no membership query, not a shortest-path or all-pairs computation, so
// a direct stack-based DFS is used rather than reaching for gonum/graph/path
// here.
func IsReachableDFS(g *scfg.SCFG, from, to block.Name) bool {
	if from == to {
		return true
	}

	visited := make(map[block.Name]bool)
	stack := []block.Name{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true

		b, ok := g.Get(n)
		if !ok {
			continue
		}
		for _, t := range b.EffectiveJumpTargets() {
			if t == to {
				return true
			}
			if !visited[t] {
				stack = append(stack, t)
			}
		}
	}
	return false
}

// CheckReachability reports every block present in g but unreachable from
// its unique head (spec.md §7: "a block is present but unreachable from the
// head... analyses flag it"). Restructuring never auto-prunes dead blocks,
// so this is the analysis that surfaces them instead of silently ignoring
// them — a single DFS from the head (same traversal IsReachableDFS uses
// internally), reporting every name it never visits.
func CheckReachability(g *scfg.SCFG) error {
	head, err := FindHead(g)
	if err != nil {
		return err
	}

	visited := make(map[block.Name]bool)
	stack := []block.Name{head}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true

		b, ok := g.Get(n)
		if !ok {
			continue
		}
		for _, t := range b.EffectiveJumpTargets() {
			if !visited[t] {
				stack = append(stack, t)
			}
		}
	}

	var unreachable []block.Name
	for _, n := range g.Names() {
		if !visited[n] {
			unreachable = append(unreachable, n)
		}
	}
	if len(unreachable) == 0 {
		return nil
	}
	sort.Slice(unreachable, func(i, j int) bool { return unreachable[i] < unreachable[j] })
	return &scfg.UnreachableBlockError{Blocks: unreachable}
}
