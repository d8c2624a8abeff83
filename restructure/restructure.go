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
	"github.com/scfg-project/scfg/config"
	"github.com/scfg-project/scfg/scfg"
	"github.com/scfg-project/scfg/scfg/scfganalysis"
)

// Restructure is the engine's single public entry point (spec.md §6.1
// "restructure"): it closes g with a unique exit (C6 join_returns), then
// alternates loop restructuring (C7) and branch restructuring (C8) — each of
// which already recurses fully through the region hierarchy it produces — to
// a fixed point. One round of each suffices for any graph that was acyclic
// (aside from the loops C7 finds and seals) to begin with, since neither
// pass leaves work the other would need to pick up; the outer loop exists
// purely as a defensive ceiling (config.MaxRestructurePasses) against that
// invariant not holding, the same role `assertion/function/preprocess/
// cfg.go`'s `CFG()` gives its own fixed sequence of passes.
//
// Restructure requires every block to be reachable from the head (spec.md
// §7): compute_scc and the other scfganalysis passes it relies on are only
// meaningful over the component containing the head, and a block sitting
// outside that component would otherwise surface as a confusing failure
// much deeper in the pipeline (an SCC or branch head with no path back to
// anything), rather than the direct scfg.UnreachableBlockError
// scfganalysis.CheckReachability reports.
func Restructure(g *scfg.SCFG) error {
	if err := scfganalysis.CheckReachability(g); err != nil {
		return err
	}
	if err := g.JoinReturns(); err != nil {
		return err
	}

	prev := -1
	for pass := 0; pass < config.MaxRestructurePasses; pass++ {
		if err := RestructureLoops(g); err != nil {
			return err
		}
		if err := RestructureBranches(g); err != nil {
			return err
		}

		names, err := g.FlattenNames()
		if err != nil {
			return err
		}
		if len(names) == prev {
			return nil
		}
		prev = len(names)
	}
	return &scfg.InvariantViolationError{Reason: "restructure did not converge within the configured pass limit"}
}
