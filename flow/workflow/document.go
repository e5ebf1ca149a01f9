// Package workflow parses the YAML workflow document format (spec.md §6)
// and resolves it into a flat flow/runtime.GraphDef ready for
// runtime.BuildDagSchema, including subgraph inlining (spec.md §4.5 step 1).
// Grounded on gopkg.in/yaml.v3, a teacher-pack dependency carried via
// alexisbeaulieu97-Streamy and rakunlabs-at's own YAML-configured workflows.
package workflow

import (
	"fmt"

	"github.com/reearth/reearth-flow-go/flow/types"
	"gopkg.in/yaml.v3"
)

// NodeType distinguishes a leaf action node from a subgraph reference.
type NodeType string

const (
	NodeTypeAction   NodeType = "action"
	NodeTypeSubGraph NodeType = "subGraph"
)

// Document is the root of a workflow YAML file (spec.md §6).
type Document struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	EntryGraphID string         `yaml:"entryGraphId"`
	With         map[string]any `yaml:"with"`
	Graphs       []Graph        `yaml:"graphs"`
}

// Graph is one `graphs[]` entry: a named node/edge set, possibly containing
// subGraph nodes that reference another Graph by id.
type Graph struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Nodes []Node `yaml:"nodes"`
	Edges []Edge `yaml:"edges"`
}

// Node is one `nodes[]` entry. Action is required when Type is "action";
// SubGraphID is required when Type is "subGraph".
type Node struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Type       NodeType       `yaml:"type"`
	Action     string         `yaml:"action"`
	With       map[string]any `yaml:"with"`
	SubGraphID string         `yaml:"subGraphId"`
}

// Edge is one `edges[]` entry: a directed, ported wire between two nodes.
type Edge struct {
	ID       string `yaml:"id"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	FromPort string `yaml:"fromPort"`
	ToPort   string `yaml:"toPort"`
}

// Parse decodes a YAML workflow document from raw bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("workflow: parsing document: %w", err)
	}
	return &doc, nil
}

// valueFromAny converts a YAML-decoded value (map[string]any/[]any/scalars,
// as produced by yaml.v3's default unmarshal into `any`) into a types.Value,
// reusing the same conversion flow/expr's goja bridge already performs for
// JSON-shaped data (types.FromAny).
func valueFromAny(v any) types.Value {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = val
		}
		return types.FromAny(normalizeYAML(m))
	default:
		return types.FromAny(normalizeYAML(v))
	}
}

// normalizeYAML recursively rewrites map[any]any nodes (which yaml.v3 can
// still produce for some decode paths) into map[string]any so types.FromAny
// (which expects JSON-shaped input) can walk it uniformly.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
