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
	"fmt"
	"sort"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/scfg"
)

// FindHead returns the graph's unique head: the block with no incoming edge
// at all, counting backedges (spec.md §4.4 "find_head" — the head
// invariant, unlike the single-exit invariant, is stated in terms of raw
// edges). It errors if zero or more than one candidate exists.
func FindHead(g *scfg.SCFG) (block.Name, error) {
	preds := g.PredecessorsIncludingBackedges()

	var heads []block.Name
	for _, n := range g.Names() {
		if len(preds[n]) == 0 {
			heads = append(heads, n)
		}
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i] < heads[j] })

	switch len(heads) {
	case 0:
		return "", &scfg.MalformedInputError{Reason: "graph has no block with zero predecessors (no head)"}
	case 1:
		return heads[0], nil
	default:
		return "", &scfg.MalformedInputError{Reason: fmt.Sprintf("graph has more than one candidate head: %v", heads)}
	}
}
