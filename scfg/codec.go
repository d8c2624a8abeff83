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
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/scfg-project/scfg/block"
	"github.com/scfg-project/scfg/namegen"
	"gopkg.in/yaml.v3"
)

// Dict is the in-memory equivalent of the textual YAML serialization (spec.md
// §6.1 "SCFG::from_dict / to_dict"). One Dict entry is produced per block, in
// the graph's insertion order; BlockDict.JT/BE preserve declared order.
type Dict struct {
	Order  []block.Name
	Blocks map[block.Name]BlockDict
}

// BlockDict is the dict/YAML-shaped projection of a single block. The fields
// Type, JT, and BE are the three keys spec.md §6.1 names explicitly; Payload,
// Assign, and the Region* fields are extensions needed so that
// SyntheticAssign and RegionBlock variants also round-trip.
type BlockDict struct {
	Type string       `yaml:"type"`
	JT   []string     `yaml:"jt,omitempty"`
	BE   []string     `yaml:"be,omitempty"`
	Payload any          `yaml:"payload,omitempty"`
	Assign  []AssignPair `yaml:"assign,omitempty"`

	RegionKind string `yaml:"region_kind,omitempty"`
	Header     string `yaml:"header,omitempty"`
	Exiting    string `yaml:"exiting,omitempty"`

	// Subregion is handled entirely outside yaml.v3's struct-tag codec (tag
	// "-"): its YAML shape is the same ordered name→BlockDict mapping as the
	// top-level document, not Dict's own {Order, Blocks} struct shape, so it
	// is spliced in/out of the node tree by hand in blockDictToYAMLNode and
	// yamlNodeToBlockDict below.
	Subregion *Dict `yaml:"-"`
}

// AssignPair is the dict/YAML shape of one block.Assignment entry.
type AssignPair struct {
	Var   string `yaml:"var"`
	Value int    `yaml:"value"`
}

// ToDict renders the graph to its in-memory dict form (spec.md §6.1).
func (g *SCFG) ToDict() *Dict {
	d := &Dict{Blocks: make(map[block.Name]BlockDict, g.blocks.Len())}
	for _, p := range g.blocks.Pairs {
		d.Order = append(d.Order, p.Key)
		d.Blocks[p.Key] = blockToDict(p.Value)
	}
	return d
}

func blockToDict(b block.Block) BlockDict {
	bd := BlockDict{Type: b.Kind().String()}
	for _, t := range b.JumpTargets() {
		bd.JT = append(bd.JT, string(t))
	}
	be := b.Backedges()
	for _, t := range b.JumpTargets() {
		if be[t] {
			bd.BE = append(bd.BE, string(t))
		}
	}
	switch b.Kind() {
	case block.KindPayload:
		bd.Payload = b.Payload()
	case block.KindSyntheticAssign:
		for _, a := range b.Assignment() {
			bd.Assign = append(bd.Assign, AssignPair{Var: a.Var, Value: a.Value})
		}
	case block.KindRegion:
		bd.RegionKind = b.RegionKind().String()
		bd.Header = string(b.Header())
		bd.Exiting = string(b.Exiting())
		if sub, ok := b.Subregion().(*SCFG); ok {
			bd.Subregion = sub.ToDict()
		}
	}
	return bd
}

// FromDict reconstructs a graph from its dict form, sharing gen as the
// resulting graph's name generator (pass namegen.New() for a fresh one).
func FromDict(d *Dict, gen *namegen.Generator) (*SCFG, error) {
	g := NewWithGenerator(gen)
	for _, name := range d.Order {
		bd, ok := d.Blocks[name]
		if !ok {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("dict order lists name %q with no corresponding block entry", name)}
		}
		b, err := dictToBlock(name, bd, gen)
		if err != nil {
			return nil, err
		}
		if err := g.AddBlock(b); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func dictToBlock(name block.Name, bd BlockDict, gen *namegen.Generator) (block.Block, error) {
	kind, ok := block.KindFromString(bd.Type)
	if !ok {
		return block.Block{}, &MalformedInputError{Reason: fmt.Sprintf("block %q has unknown type %q", name, bd.Type)}
	}
	jt := make([]block.Name, len(bd.JT))
	for i, t := range bd.JT {
		jt[i] = block.Name(t)
	}

	var b block.Block
	switch kind {
	case block.KindPayload:
		b = block.NewPayload(name, jt, bd.Payload)
	case block.KindSyntheticAssign:
		assign := make([]block.Assignment, len(bd.Assign))
		for i, a := range bd.Assign {
			assign[i] = block.Assignment{Var: a.Var, Value: a.Value}
		}
		b = block.NewAssignment(name, jt, assign)
	case block.KindRegion:
		rk, ok := block.RegionKindFromString(bd.RegionKind)
		if !ok {
			return block.Block{}, &MalformedInputError{Reason: fmt.Sprintf("region block %q has unknown region_kind %q", name, bd.RegionKind)}
		}
		var sub *SCFG
		var err error
		if bd.Subregion != nil {
			sub, err = FromDict(bd.Subregion, gen)
			if err != nil {
				return block.Block{}, err
			}
		} else {
			sub = NewWithGenerator(gen)
		}
		b = block.NewRegion(name, rk, block.Name(bd.Header), sub, block.Name(bd.Exiting), jt)
	default:
		b = block.NewSynthetic(kind, name, jt)
	}

	for _, be := range bd.BE {
		b = b.ReplaceBackedge(block.Name(be))
	}
	return b, nil
}

// ToYAML renders the graph as line-oriented YAML text (spec.md §6.1). Two
// graphs with the same names/edges produce byte-identical text: the
// encoding preserves insertion order throughout (block order, jt order, be
// order), never relying on Go map iteration order.
func (g *SCFG) ToYAML() (string, error) {
	node, err := dictToYAMLNode(g.ToDict())
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("marshal scfg to yaml: %w", err)
	}
	return string(out), nil
}

// FromYAML parses text produced by ToYAML (or an equivalently-shaped
// document) into a new graph with a fresh name generator.
func FromYAML(text string) (*SCFG, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, fmt.Errorf("unmarshal scfg yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return New(), nil
	}
	d, err := yamlNodeToDict(node.Content[0])
	if err != nil {
		return nil, err
	}
	return FromDict(d, namegen.New())
}

// dictToYAMLNode builds an ordered mapping node for d, preserving d.Order
// rather than letting yaml.v3 decide key order from a Go map.
func dictToYAMLNode(d *Dict) (*yaml.Node, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range d.Order {
		bd := d.Blocks[name]
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(name)}
		valNode, err := blockDictToYAMLNode(bd)
		if err != nil {
			return nil, err
		}
		mapping.Content = append(mapping.Content, keyNode, valNode)
	}
	return mapping, nil
}

func blockDictToYAMLNode(bd BlockDict) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(bd); err != nil {
		return nil, fmt.Errorf("encode block dict: %w", err)
	}
	if bd.Subregion != nil {
		sub, err := dictToYAMLNode(bd.Subregion)
		if err != nil {
			return nil, err
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "subregion"}
		n.Content = append(n.Content, keyNode, sub)
	}
	return &n, nil
}

func yamlNodeToDict(mapping *yaml.Node) (*Dict, error) {
	if mapping.Kind != yaml.MappingNode {
		return nil, &MalformedInputError{Reason: "expected a YAML mapping at document root"}
	}
	d := &Dict{Blocks: make(map[block.Name]BlockDict, len(mapping.Content)/2)}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		name := block.Name(mapping.Content[i].Value)
		bd, err := yamlNodeToBlockDict(mapping.Content[i+1])
		if err != nil {
			return nil, err
		}
		d.Order = append(d.Order, name)
		d.Blocks[name] = bd
	}
	return d, nil
}

func yamlNodeToBlockDict(n *yaml.Node) (BlockDict, error) {
	var bd BlockDict
	if err := n.Decode(&bd); err != nil {
		return BlockDict{}, fmt.Errorf("decode block dict: %w", err)
	}
	// bd.Subregion is tagged "-" (see BlockDict), so n.Decode left it nil;
	// splice it in by hand from the raw node mapping, which is shaped as the
	// same ordered name→BlockDict mapping as the top-level document.
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "subregion" {
			sub, err := yamlNodeToDict(n.Content[i+1])
			if err != nil {
				return BlockDict{}, err
			}
			bd.Subregion = sub
		}
	}
	return bd, nil
}

// GobEncode encodes the graph via gob, compressed with s2, following the
// same pattern as the teacher's inference.InferredMap.GobEncode
// (inference/inferred_map.go): wrap an s2.Writer around a gob.Encoder so
// large graphs serialize compactly.
func (g *SCFG) GobEncode() (b []byte, err error) {
	var buf bytes.Buffer
	writer := s2.NewWriter(&buf)
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := gob.NewEncoder(writer).Encode(g.ToDict()); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode decodes a graph encoded by GobEncode, with a fresh name
// generator.
func (g *SCFG) GobDecode(input []byte) error {
	var d Dict
	buf := bytes.NewBuffer(input)
	if err := gob.NewDecoder(s2.NewReader(buf)).Decode(&d); err != nil {
		return err
	}
	decoded, err := FromDict(&d, namegen.New())
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}
