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

// Package namegen implements the process-unique, kind-stamped name generator
// used to stamp synthetic blocks, regions, and control variables (spec.md
// §4.1). Names are of the form "<kind>_<n>" ("<kind>_region_<n>",
// "<kind>_var_<n>"), where n is a monotonically increasing per-kind counter.
// Determinism (counters start at 0 and advance in request order) is what
// makes restructuring reproducible across runs on equal inputs.
package namegen

import "fmt"

// Generator holds one monotonic counter per kind tag. The zero value is ready
// to use.
type Generator struct {
	counters map[string]int
}

// New returns a ready-to-use Generator.
func New() *Generator {
	return &Generator{counters: make(map[string]int)}
}

// NewBlockName returns the next unique name for the given kind tag, of the
// form "<kind>_<n>".
func (g *Generator) NewBlockName(kind string) string {
	return fmt.Sprintf("%s_%d", kind, g.next(kind))
}

// NewRegionName returns the next unique name for a region of the given kind
// tag, of the form "<kind>_region_<n>".
func (g *Generator) NewRegionName(kind string) string {
	return fmt.Sprintf("%s_region_%d", kind, g.next(kind+"_region"))
}

// NewVarName returns the next unique name for a control variable of the given
// kind tag, of the form "<kind>_var_<n>".
func (g *Generator) NewVarName(kind string) string {
	return fmt.Sprintf("%s_var_%d", kind, g.next(kind+"_var"))
}

// next increments and returns the pre-increment counter value for kind.
func (g *Generator) next(kind string) int {
	if g.counters == nil {
		g.counters = make(map[string]int)
	}
	n := g.counters[kind]
	g.counters[kind] = n + 1
	return n
}
