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

package restructure

import (
	"fmt"
	"sort"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/scfg"
	"github.com/scfg-project/scfg/scfg/scfgedit"
)

// WrapRegion materializes nodes as a fresh subregion owned by a single
// RegionBlock in parent (spec.md §4.9 "wrap_region", component C9): every
// block named in nodes moves out of parent into the returned region's
// subregion, preserving names and edges, and every remaining parent block
// that used to jump into nodes is rewritten to target the region instead.
// The region's own jump targets are exiting's external (outside-nodes)
// effective jump targets, in their existing relative order.
func WrapRegion(parent *scfg.SCFG, nodes []block.Name, kind block.RegionKind, header, exiting block.Name) (block.Name, error) {
	set := make(map[block.Name]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	if !set[header] {
		return "", &scfg.InvariantViolationError{Reason: fmt.Sprintf("wrap_region: header %q not a member of nodes", header), Blocks: nodes}
	}
	if !set[exiting] {
		return "", &scfg.InvariantViolationError{Reason: fmt.Sprintf("wrap_region: exiting %q not a member of nodes", exiting), Blocks: nodes}
	}

	exitBlk, ok := parent.Get(exiting)
	if !ok {
		return "", &scfg.MalformedInputError{Reason: fmt.Sprintf("wrap_region: exiting block %q not present", exiting)}
	}
	var external []block.Name
	for _, t := range exitBlk.EffectiveJumpTargets() {
		if !set[t] {
			external = append(external, t)
		}
	}

	sub := scfg.NewWithGenerator(parent.Generator())
	sorted := append([]block.Name{}, nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, n := range sorted {
		b, ok := parent.Get(n)
		if !ok {
			return "", &scfg.MalformedInputError{Reason: fmt.Sprintf("wrap_region: block %q not present", n)}
		}
		sub.MustAddBlock(b)
	}
	parent.RemoveBlocks(nodes...)

	regionName := block.Name(parent.Generator().NewRegionName(kind.String()))
	region := block.NewRegion(regionName, kind, header, sub, exiting, external)
	parent.MustAddBlock(region)

	for _, b := range parent.Blocks() {
		retargeted := b
		changed := false
		for _, t := range b.JumpTargets() {
			if set[t] {
				retargeted = scfgedit.Retarget(retargeted, t, regionName)
				changed = true
			}
		}
		if changed {
			parent.ReplaceBlock(retargeted)
		}
	}

	return regionName, nil
}
