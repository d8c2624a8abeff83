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

// FindHeadersAndEntries returns, for a block-name set body (typically one
// SCC returned by ComputeSCC), every member with at least one predecessor
// outside body — its "headers" — together with the external predecessors
// entering each one (spec.md §4.4 "find_headers_and_entries"). A single
// header already satisfies the invariant loop restructuring exists to
// establish; more than one header is exactly the case its header-merging
// step (C7 step 3) must fix.
func FindHeadersAndEntries(g *scfg.SCFG, body []block.Name) (headers []block.Name, entries map[block.Name][]block.Name) {
	set := make(map[block.Name]bool, len(body))
	for _, n := range body {
		set[n] = true
	}

	preds := g.Predecessors()
	entries = make(map[block.Name][]block.Name)
	for _, n := range body {
		var ext []block.Name
		for p := range preds[n] {
			if !set[p] {
				ext = append(ext, p)
			}
		}
		if len(ext) == 0 {
			continue
		}
		sort.Slice(ext, func(i, j int) bool { return ext[i] < ext[j] })
		entries[n] = ext
		headers = append(headers, n)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i] < headers[j] })
	return headers, entries
}

// FindExitingAndExits returns, for a block-name set body, every member with
// at least one successor outside body — its "exiting" blocks — together
// with the external successors each one jumps to (spec.md §4.4
// "find_exiting_and_exits"). A single exiting block with a single exit
// already satisfies the invariant loop restructuring establishes (C7 step
// 4); anything more is the case the synthetic-exiting-latch step must fix.
func FindExitingAndExits(g *scfg.SCFG, body []block.Name) (exiting []block.Name, exits map[block.Name][]block.Name) {
	set := make(map[block.Name]bool, len(body))
	for _, n := range body {
		set[n] = true
	}

	exits = make(map[block.Name][]block.Name)
	for _, n := range body {
		b, ok := g.Get(n)
		if !ok {
			continue
		}
		var ext []block.Name
		for _, t := range b.EffectiveJumpTargets() {
			if !set[t] {
				ext = append(ext, t)
			}
		}
		if len(ext) == 0 {
			continue
		}
		exits[n] = ext
		exiting = append(exiting, n)
	}
	sort.Slice(exiting, func(i, j int) bool { return exiting[i] < exiting[j] })
	return exiting, exits
}
