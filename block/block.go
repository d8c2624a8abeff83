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

// Package block implements the immutable, tagged-union block model of the
// restructuring engine (spec.md §3, §4.2). A Block is a value: every
// structural edit (ReplaceJumpTargets, ReplaceBackedge) returns a new Block
// record rather than mutating the receiver in place. The graph container
// (package scfg) owns the mutable name→Block mapping; Block values themselves
// are replaced wholesale on edit, exactly as golang.org/x/tools/go/cfg.Block
// is replaced wholesale by copyGraph-style passes rather than patched in
// place.
package block

import "fmt"

// Name is a process-unique string identifier of the form "<kind>_<n>"
// (spec.md §3). Names are opaque; the engine never parses them.
type Name string

// Kind discriminates the tagged union of block variants (spec.md §3).
type Kind int

const (
	// KindPayload carries an arbitrary opaque body the engine never inspects
	// (a bytecode range, an AST node list).
	KindPayload Kind = iota
	// KindSyntheticExit marks the unique synthesized exit of a closed graph.
	KindSyntheticExit
	// KindSyntheticReturn marks a synthesized unique-exit block installed by
	// join_returns (C6).
	KindSyntheticReturn
	// KindSyntheticTail marks a synthesized branch continuation (C8 step 2).
	KindSyntheticTail
	// KindSyntheticFill marks a synthesized body for an empty branch arm (C8
	// step 3).
	KindSyntheticFill
	// KindSyntheticHead marks a synthesized single loop header installed by
	// loop restructuring (C7 step 3).
	KindSyntheticHead
	// KindSyntheticExitBranch marks a synthesized merge point for a branch
	// body with more than one exit (C8 step 4).
	KindSyntheticExitBranch
	// KindSyntheticExitingLatch marks the synthesized single exiting latch of
	// a restructured loop (C7 step 4).
	KindSyntheticExitingLatch
	// KindSyntheticAssign carries an ordered mapping from control-variable
	// name to integer literal, executed on entry (spec.md §3 variant 3).
	KindSyntheticAssign
	// KindRegion wraps a subregion SCFG as a single node in its parent graph
	// (spec.md §3 variant 4).
	KindRegion
)

// String renders the Kind as the variant tag used in to_yaml/to_dict output
// and in error messages (spec.md §6.1: "type" key).
func (k Kind) String() string {
	switch k {
	case KindPayload:
		return "Payload"
	case KindSyntheticExit:
		return "SyntheticExit"
	case KindSyntheticReturn:
		return "SyntheticReturn"
	case KindSyntheticTail:
		return "SyntheticTail"
	case KindSyntheticFill:
		return "SyntheticFill"
	case KindSyntheticHead:
		return "SyntheticHead"
	case KindSyntheticExitBranch:
		return "SyntheticExitBranch"
	case KindSyntheticExitingLatch:
		return "SyntheticExitingLatch"
	case KindSyntheticAssign:
		return "SyntheticAssign"
	case KindRegion:
		return "Region"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsSynthetic reports whether the Kind is one of the empty-payload synthetic
// variants (i.e., neither Payload nor SyntheticAssign nor Region, each of
// which carries its own payload).
func (k Kind) IsSynthetic() bool {
	switch k {
	case KindSyntheticExit, KindSyntheticReturn, KindSyntheticTail, KindSyntheticFill,
		KindSyntheticHead, KindSyntheticExitBranch, KindSyntheticExitingLatch:
		return true
	default:
		return false
	}
}

// KindFromString parses the variant tag produced by Kind.String, for use by
// the YAML/dict decoders. It returns false if s does not name a known kind.
func KindFromString(s string) (Kind, bool) {
	for k := KindPayload; k <= KindRegion; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// RegionKind discriminates the three kinds of RegionBlock (spec.md §3).
type RegionKind int

const (
	RegionLoop RegionKind = iota
	RegionBranch
	RegionMeta
)

// String renders the RegionKind as used in to_yaml/to_dict output.
func (k RegionKind) String() string {
	switch k {
	case RegionLoop:
		return "loop"
	case RegionBranch:
		return "branch"
	case RegionMeta:
		return "meta"
	default:
		return fmt.Sprintf("RegionKind(%d)", int(k))
	}
}

// RegionKindFromString parses the region-kind tag produced by
// RegionKind.String.
func RegionKindFromString(s string) (RegionKind, bool) {
	switch s {
	case "loop":
		return RegionLoop, true
	case "branch":
		return RegionBranch, true
	case "meta":
		return RegionMeta, true
	default:
		return 0, false
	}
}

// Graph is the minimal view of a subregion's interior that a RegionBlock
// needs to carry (spec.md §3 variant 4). It is satisfied by *scfg.SCFG;
// block cannot import package scfg directly (scfg imports block), so the
// dependency is inverted through this interface.
type Graph interface {
	// Names returns every block name present in the subregion, in
	// insertion order.
	Names() []Name
}

// Block is an immutable value representing one node of an SCFG. The zero
// value is not meaningful; construct Blocks via the New* constructors.
type Block struct {
	name Name
	kind Kind

	// jumpTargets is the ordered sequence of successor names (spec.md §3).
	// Order is semantic: for a two-way block, index 0 is the taken branch.
	jumpTargets []Name

	// backedges records, per outgoing edge, whether that edge is a back-edge
	// of some enclosing loop (spec.md §9 open question: backedges are marked
	// per-block on an outgoing edge, not globally). Keyed by target name;
	// absent or false means "not a backedge".
	backedges map[Name]bool

	// payload is the opaque body of a KindPayload block. Never inspected by
	// the engine.
	payload any

	// assignment is the ordered variable=literal mapping of a
	// KindSyntheticAssign block.
	assignment []Assignment

	// region fields, valid only when kind == KindRegion.
	regionKind RegionKind
	header     Name
	subregion  Graph
	exiting    Name
}

// Assignment is one ordered (variable, literal) pair executed on entry to a
// KindSyntheticAssign block (spec.md §3 variant 3).
type Assignment struct {
	Var   string
	Value int
}

// NewPayload constructs a payload block carrying an opaque body.
func NewPayload(name Name, jumpTargets []Name, payload any) Block {
	return Block{name: name, kind: KindPayload, jumpTargets: cloneNames(jumpTargets), payload: payload}
}

// NewSynthetic constructs a block of one of the empty-payload synthetic
// variants. kind must satisfy Kind.IsSynthetic(); passing any other kind
// panics, since it would silently construct a malformed Block.
func NewSynthetic(kind Kind, name Name, jumpTargets []Name) Block {
	if !kind.IsSynthetic() {
		panic(fmt.Sprintf("block: NewSynthetic called with non-synthetic kind %s for block %q", kind, name))
	}
	return Block{name: name, kind: kind, jumpTargets: cloneNames(jumpTargets)}
}

// NewAssignment constructs a synthetic-assignment block (spec.md §3 variant
// 3). assignment is copied defensively.
func NewAssignment(name Name, jumpTargets []Name, assignment []Assignment) Block {
	a := make([]Assignment, len(assignment))
	copy(a, assignment)
	return Block{name: name, kind: KindSyntheticAssign, jumpTargets: cloneNames(jumpTargets), assignment: a}
}

// NewRegion constructs a region block (spec.md §3 variant 4). Its own jump
// targets are the external successors of exiting within subregion's parent,
// supplied by the caller (package restructure's WrapRegion, C9).
func NewRegion(name Name, regionKind RegionKind, header Name, subregion Graph, exiting Name, jumpTargets []Name) Block {
	return Block{
		name:        name,
		kind:        KindRegion,
		jumpTargets: cloneNames(jumpTargets),
		regionKind:  regionKind,
		header:      header,
		subregion:   subregion,
		exiting:     exiting,
	}
}

func cloneNames(names []Name) []Name {
	if names == nil {
		return nil
	}
	out := make([]Name, len(names))
	copy(out, names)
	return out
}

// Name returns the block's unique identifier.
func (b Block) Name() Name { return b.name }

// Kind returns the block's variant tag.
func (b Block) Kind() Kind { return b.kind }

// JumpTargets returns the ordered successor list, including any marked as
// backedges. Callers must not mutate the returned slice.
func (b Block) JumpTargets() []Name { return b.jumpTargets }

// EffectiveJumpTargets returns JumpTargets minus any marked as backedges
// (spec.md §3: "jump_targets \ backedges"), preserving relative order.
func (b Block) EffectiveJumpTargets() []Name {
	if len(b.backedges) == 0 {
		return b.jumpTargets
	}
	out := make([]Name, 0, len(b.jumpTargets))
	for _, t := range b.jumpTargets {
		if !b.backedges[t] {
			out = append(out, t)
		}
	}
	return out
}

// Backedges returns the set of jump targets marked as backedges of some
// enclosing loop.
func (b Block) Backedges() map[Name]bool {
	out := make(map[Name]bool, len(b.backedges))
	for k, v := range b.backedges {
		if v {
			out[k] = true
		}
	}
	return out
}

// IsBackedge reports whether the edge to target is marked as a backedge.
func (b Block) IsBackedge(target Name) bool { return b.backedges[target] }

// IsExiting reports whether the block has no effective jump targets (spec.md
// §4.2).
func (b Block) IsExiting() bool { return len(b.EffectiveJumpTargets()) == 0 }

// Fallthrough reports whether the block has exactly one effective jump
// target (spec.md §4.2).
func (b Block) Fallthrough() bool { return len(b.EffectiveJumpTargets()) == 1 }

// Payload returns the opaque body of a KindPayload block, or nil for any
// other variant.
func (b Block) Payload() any { return b.payload }

// Assignment returns the ordered variable=literal mapping of a
// KindSyntheticAssign block. Callers must not mutate the returned slice.
func (b Block) Assignment() []Assignment { return b.assignment }

// RegionKind returns the region's kind. Valid only when Kind() == KindRegion.
func (b Block) RegionKind() RegionKind { return b.regionKind }

// Header returns the region's unique header block name. Valid only when
// Kind() == KindRegion.
func (b Block) Header() Name { return b.header }

// Subregion returns the region's interior subgraph. Valid only when Kind()
// == KindRegion.
func (b Block) Subregion() Graph { return b.subregion }

// Exiting returns the name of the region's unique interior exiting block.
// Valid only when Kind() == KindRegion.
func (b Block) Exiting() Name { return b.exiting }

// ReplaceJumpTargets returns a new Block with its jump-target list replaced.
// Backedge markings on targets retained in newTargets are preserved; markings
// on targets no longer present are dropped.
func (b Block) ReplaceJumpTargets(newTargets []Name) Block {
	nb := b
	nb.jumpTargets = cloneNames(newTargets)
	if len(b.backedges) > 0 {
		present := make(map[Name]bool, len(newTargets))
		for _, t := range newTargets {
			present[t] = true
		}
		nb.backedges = make(map[Name]bool, len(b.backedges))
		for t, v := range b.backedges {
			if v && present[t] {
				nb.backedges[t] = true
			}
		}
	}
	return nb
}

// ReplaceBackedge returns a new Block with target marked as a backedge. It
// panics if target is not present in JumpTargets, since that would silently
// create a dangling backedge marking (an InvariantViolation per spec.md §7).
func (b Block) ReplaceBackedge(target Name) Block {
	found := false
	for _, t := range b.jumpTargets {
		if t == target {
			found = true
			break
		}
	}
	if !found {
		panic(fmt.Sprintf("block: ReplaceBackedge(%q) on block %q: target not present in jump targets %v", target, b.name, b.jumpTargets))
	}
	nb := b
	nb.backedges = make(map[Name]bool, len(b.backedges)+1)
	for t, v := range b.backedges {
		nb.backedges[t] = v
	}
	nb.backedges[target] = true
	return nb
}
