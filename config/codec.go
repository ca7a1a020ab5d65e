package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Format is a file serialization of a configuration tree.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses "yaml", "yml" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatYAML, fmt.Errorf("unsupported tree format %q", s)
	}
}

// FormatFromPath picks the format by file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// document is the serialized shape of one node.
type document struct {
	Name       string              `yaml:"name"                 json:"name"`
	Attributes map[string][]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Children   []document          `yaml:"children,omitempty"   json:"children,omitempty"`
}

// Marshal serializes the tree rooted at root. Every node must be able to
// list its attributes, as [TreeNode] does.
func Marshal(root Node, format Format) ([]byte, error) {
	doc, err := toDocument(root)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding yaml tree: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml tree: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// Unmarshal parses a serialized tree. Empty input yields an empty root
// called "definitions".
func Unmarshal(data []byte, format Format) (*TreeNode, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewNode(rootName), nil
	}

	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding json tree: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml tree: %w", err)
		}
	}
	return fromDocument(doc), nil
}

func toDocument(n Node) (document, error) {
	lister, ok := n.(attributeLister)
	if !ok {
		return document{}, fmt.Errorf("node %q of type %T cannot list its attributes", n.Name(), n)
	}

	doc := document{Name: n.Name()}
	if names := lister.AttributeNames(); len(names) > 0 {
		doc.Attributes = make(map[string][]string, len(names))
		for _, name := range names {
			doc.Attributes[name] = n.GetAttribute(name)
		}
	}
	for _, c := range n.Children() {
		cd, err := toDocument(c)
		if err != nil {
			return document{}, err
		}
		doc.Children = append(doc.Children, cd)
	}
	return doc, nil
}

func fromDocument(doc document) *TreeNode {
	n := NewNode(doc.Name)
	for name, values := range doc.Attributes {
		n.SetAttribute(name, values)
	}
	for _, cd := range doc.Children {
		n.AddChild(fromDocument(cd))
	}
	return n
}
