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

// Package frontend hosts the collaborator contracts spec.md §6.2 names for
// building an initial *scfg.SCFG from some source representation
// (BytecodeSource, ASTSource), plus FromInstructions, a minimal, fully
// implemented builder that exercises those contracts without requiring a
// real bytecode decoder or AST walker — exactly the role preprocess.CFG
// plays for the teacher, translating a richer representation (go/ast,
// golang.org/x/tools/go/cfg) into the graph shape later passes operate on.
package frontend

import (
	"fmt"

	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/scfg"
)

// BytecodeSource is implemented by a decoder that can enumerate a function's
// basic blocks as (name, successor names, payload) tuples, each covering a
// bytecode offset range [Begin, End). A real implementation would
// wrap a bytecode format's own block-boundary analysis; the engine only
// depends on this interface, never a concrete decoder.
type BytecodeSource interface {
	// Blocks returns every basic block the source defines, in any order.
	Blocks() ([]Instruction, error)
}

// ASTSource is implemented by a decoder that can enumerate a function's
// basic blocks as derived from a language's abstract syntax tree (the
// teacher's own golang.org/x/tools/go/cfg.CFG is the canonical example of
// what sits behind this interface for Go source).
type ASTSource interface {
	// Blocks returns every basic block the source defines, in any order.
	Blocks() ([]Instruction, error)
}

// Instruction names one basic block discovered by a BytecodeSource or
// ASTSource: its name, the names of the blocks it falls through or branches
// to (in jump-target order), and the half-open offset range it covers in the
// original source. Payload carries whatever opaque body the collaborator
// wants threaded through to block.Block.Payload() — the engine never
// inspects it.
type Instruction struct {
	Name       block.Name
	Successors []block.Name
	Begin, End int
	Payload    any
}

// FromInstructions builds an initial *scfg.SCFG of payload blocks from a
// flat list of Instructions, enough to drive the boundary scenarios of
// spec.md §8 end to end without a real decoder. Every successor named by any
// instruction must itself appear as an instruction's Name; FromInstructions
// returns an error otherwise rather than silently producing a dangling edge.
func FromInstructions(instructions []Instruction) (*scfg.SCFG, error) {
	g := scfg.New()

	names := make(map[block.Name]bool, len(instructions))
	for _, in := range instructions {
		if names[in.Name] {
			return nil, fmt.Errorf("from_instructions: duplicate block name %q", in.Name)
		}
		names[in.Name] = true
	}

	for _, in := range instructions {
		for _, s := range in.Successors {
			if !names[s] {
				return nil, fmt.Errorf("from_instructions: block %q jumps to undefined block %q", in.Name, s)
			}
		}
		payload := Range{Begin: in.Begin, End: in.End, Body: in.Payload}
		g.MustAddBlock(block.NewPayload(in.Name, in.Successors, payload))
	}

	return g, nil
}

// Range is the payload FromInstructions attaches to every block it builds:
// the half-open offset range the source block covered, plus whatever opaque
// body the originating Instruction carried.
type Range struct {
	Begin, End int
	Body       any
}
